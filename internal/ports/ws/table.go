package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"klondike/internal/app"
	"klondike/internal/domain"
	"klondike/internal/ports/wire"
	"klondike/internal/scoring"

	"github.com/google/uuid"
)

// Request ops a client may send.
const (
	OpDeal         = "deal"
	OpClickCard    = "click_card"
	OpClickSpot    = "click_spot"
	OpDraw         = "draw"
	OpRecycle      = "recycle"
	OpReturnHand   = "return_hand"
	OpAutoMove     = "auto_move"
	OpAutoComplete = "auto_complete"
	OpHint         = "hint"
	OpSnapshot     = "snapshot"
	OpStatus       = "status"
)

// Message types the server sends besides the app event kinds.
const (
	TypeWelcome  = "welcome"
	TypeSnapshot = "snapshot"
	TypeStatus   = "status"
	TypeScore    = "score"
	TypeError    = "error"
)

// request is one client message.
type request struct {
	Op   string `json:"op"`
	Card string `json:"card,omitempty"`
	Spot string `json:"spot,omitempty"`
}

// message is one server message.
type message struct {
	Type    string      `json:"type"`
	Payload wire.Fields `json:"payload,omitempty"`
}

func errorMessage(code int, err error) message {
	return message{Type: TypeError, Payload: wire.Error(code, err.Error())}
}

// table is one dealt game and the client currently attached to it.
type table struct {
	id     uuid.UUID
	owner  string
	app    *app.Service
	game   *domain.Game
	keeper *scoring.Keeper

	mu       sync.Mutex
	client   *client
	lastSeen time.Time
}

// attach makes c the table's client, stopping any previous one.
func (t *table) attach(c *client) {
	t.mu.Lock()
	prev := t.client
	t.client = c
	t.lastSeen = time.Now()
	t.mu.Unlock()

	if prev != nil {
		prev.stop()
	}
}

func (t *table) detach(c *client) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client == c {
		t.client = nil
	}
	t.lastSeen = time.Now()
}

// idleSince reports when the table was last used, and false while a client is
// attached.
func (t *table) idleSince() (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastSeen, t.client == nil
}

func (t *table) snapshot() message {
	return message{Type: TypeSnapshot, Payload: wire.Snapshot(t.game.Snapshot(), t.keeper.Score())}
}

// handle runs one raw client message and returns the replies in order.
func (t *table) handle(data []byte) []message {
	var req request
	if err := json.Unmarshal(data, &req); err != nil {
		return []message{errorMessage(400, fmt.Errorf("invalid request: %w", err))}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastSeen = time.Now()

	var events []app.Event
	var err error
	switch req.Op {
	case OpDeal:
		events, err = t.app.Deal(t.game)
	case OpClickCard, OpAutoMove:
		sr, perr := domain.ParseSuitRank(req.Card)
		if perr != nil {
			return []message{errorMessage(400, perr)}
		}
		if req.Op == OpClickCard {
			events, err = t.app.ClickCard(t.game, sr)
		} else {
			events, err = t.app.AutoMove(t.game, sr)
		}
	case OpClickSpot:
		spot, perr := domain.ParseSpot(req.Spot)
		if perr != nil {
			return []message{errorMessage(400, perr)}
		}
		events, err = t.app.ClickSpot(t.game, spot)
	case OpDraw:
		events, err = t.app.Draw(t.game)
	case OpRecycle:
		events, err = t.app.RecycleWaste(t.game)
	case OpReturnHand:
		events, err = t.app.ReturnHand(t.game)
	case OpAutoComplete:
		events, err = t.app.AutoComplete(t.game)
	case OpHint:
		events, err = t.app.Hint(t.game)
	case OpSnapshot:
		return []message{t.snapshot()}
	case OpStatus:
		counts, serr := t.app.Status(t.game)
		if serr != nil {
			return []message{errorMessage(500, serr)}
		}
		status := wire.Counts(counts)
		status["score"] = t.keeper.Score()
		status["won"] = t.game.IsWon()
		return []message{{Type: TypeStatus, Payload: status}}
	default:
		return []message{errorMessage(400, fmt.Errorf("unknown op %q", req.Op))}
	}

	if err != nil {
		code := 400
		if errors.Is(err, app.ErrInvariant) {
			code = 500
		}
		return []message{errorMessage(code, err)}
	}

	out := make([]message, 0, len(events)+1)
	scoreChanged := false
	var delta int64
	for _, ev := range events {
		d := t.keeper.Apply([]app.Event{ev})
		delta += d
		if d != 0 || ev.Kind == app.EventGameDealt {
			scoreChanged = true
		}
		fields, ferr := wire.Event(ev)
		if ferr != nil {
			out = append(out, errorMessage(500, ferr))
			continue
		}
		out = append(out, message{Type: string(ev.Kind), Payload: fields})
	}
	if scoreChanged {
		out = append(out, message{Type: TypeScore, Payload: wire.Score(t.keeper.Score(), delta)})
	}
	return out
}
