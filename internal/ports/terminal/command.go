package terminal

import (
	"fmt"
	"strings"

	"klondike/internal/domain"
)

// Verb is a parsed terminal command.
type Verb int

const (
	VerbHelp Verb = iota
	VerbQuit
	VerbDeal
	VerbDraw
	VerbRecycle
	VerbClick
	VerbPlace
	VerbReturn
	VerbAuto
	VerbAutoComplete
	VerbHint
	VerbStatus
	VerbShow
)

// Command is one line of player input.
type Command struct {
	Verb Verb
	Card domain.SuitRank
	Spot domain.PlayfieldSpot
}

var verbs = map[string]Verb{
	"help": VerbHelp, "?": VerbHelp,
	"quit": VerbQuit, "q": VerbQuit, "exit": VerbQuit,
	"deal": VerbDeal, "new": VerbDeal,
	"draw": VerbDraw, "d": VerbDraw,
	"recycle": VerbRecycle, "r": VerbRecycle,
	"click": VerbClick, "c": VerbClick, "pick": VerbClick,
	"place": VerbPlace, "p": VerbPlace,
	"return": VerbReturn, "u": VerbReturn, "undo": VerbReturn,
	"auto": VerbAuto, "a": VerbAuto,
	"finish": VerbAutoComplete, "ac": VerbAutoComplete,
	"hint": VerbHint, "h": VerbHint,
	"status": VerbStatus, "st": VerbStatus,
	"show": VerbShow, "": VerbShow,
}

// Usage lists the commands ParseCommand accepts.
const Usage = `draw (d)            turn a stock card onto the waste
recycle (r)          put the waste back onto the stock
click (c) <card>     pick up a card (and the run above it), or flip it
place (p) <spot>     put the held cards on t0..t6 or f0..f3
return (u)           put the held cards back
auto (a) <card>      send a card wherever it fits
finish (ac)          send every playable card to the foundations
hint (h)             suggest a move
status (st)          pile counts, moves and score
deal (new)           start over with a fresh shuffle
quit (q)`

// ParseCommand reads one input line. Cards are codes such as "10h" or "QS";
// spots are "t3", "f0", "stock" or "waste".
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(strings.ToLower(line))
	word := ""
	if len(fields) > 0 {
		word = fields[0]
	}
	verb, ok := verbs[word]
	if !ok {
		return Command{}, fmt.Errorf("unknown command %q", word)
	}

	cmd := Command{Verb: verb}
	switch verb {
	case VerbClick, VerbAuto:
		if len(fields) != 2 {
			return Command{}, fmt.Errorf("%s needs a card, e.g. %q", word, word+" 7h")
		}
		sr, err := domain.ParseSuitRank(fields[1])
		if err != nil {
			return Command{}, err
		}
		cmd.Card = sr
	case VerbPlace:
		if len(fields) != 2 {
			return Command{}, fmt.Errorf("%s needs a spot, e.g. %q", word, word+" t3")
		}
		spot, err := domain.ParseSpot(fields[1])
		if err != nil {
			return Command{}, err
		}
		cmd.Spot = spot
	default:
		if len(fields) > 1 {
			return Command{}, fmt.Errorf("%s takes no arguments", word)
		}
	}
	return cmd, nil
}
