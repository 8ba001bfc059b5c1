package app

import "klondike/internal/domain"

// EventKind identifies emitted table events for transport dispatch.
type EventKind string

const (
	EventGameDealt     EventKind = "game_dealt"
	EventCardsMoved    EventKind = "cards_moved"
	EventMoveCompleted EventKind = "move_completed"
	EventMoveRejected  EventKind = "move_rejected"
	EventWarning       EventKind = "warning"
	EventHint          EventKind = "hint"
	EventGameWon       EventKind = "game_won"
)

// Event is an app event. Payload is one of the *Payload types below.
type Event struct {
	Kind    EventKind
	Payload any
}

type GameDealtPayload struct {
	Placements []domain.Placement
	Counts     domain.PileCounts
}

// CardsMovedPayload carries the new (spot, face) pair of every card a call
// touched, so renderers can retarget their animations.
type CardsMovedPayload struct {
	Placements []domain.Placement
}

// MoveCompletedPayload is what the score keeper consumes.
type MoveCompletedPayload struct {
	Kind  domain.MoveKind
	From  domain.PlayfieldSpot
	To    domain.PlayfieldSpot
	Cards []domain.SuitRank
	Moves int
}

type MoveRejectedPayload struct {
	Cards  []domain.SuitRank
	To     domain.PlayfieldSpot
	Reason string
}

type WarningPayload struct {
	Spot   domain.PlayfieldSpot
	Reason string
}

// HintPayload describes a suggested action. Found is false when nothing is
// left to do.
type HintPayload struct {
	Action string
	Card   domain.SuitRank
	From   domain.PlayfieldSpot
	To     domain.PlayfieldSpot
	Found  bool
}

type GameWonPayload struct {
	Moves int
}
