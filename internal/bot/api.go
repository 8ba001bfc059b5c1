package bot

import (
	"klondike/internal/domain"
)

// Action is what an assist move asks the table to do.
type Action uint8

const (
	ActionNone Action = iota
	ActionPlace
	ActionFlip
	ActionDraw
	ActionRecycle
)

func (a Action) String() string {
	switch a {
	case ActionPlace:
		return "place"
	case ActionFlip:
		return "flip"
	case ActionDraw:
		return "draw"
	case ActionRecycle:
		return "recycle"
	default:
		return "none"
	}
}

// Move is an assist decision. For ActionPlace, Card and every card above it
// in From go to To; for ActionFlip, Card is the face-down top of From.
type Move struct {
	Action Action
	Card   domain.SuitRank
	From   domain.PlayfieldSpot
	To     domain.PlayfieldSpot
}

// Brain is the interface every assist strategy implements. It only reads the
// game; the caller applies the move.
type Brain interface {
	NextMove(game *domain.Game) (Move, bool)
}
