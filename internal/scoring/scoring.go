// Package scoring is the score keeper: it turns completed moves into points.
// The engine only reports what happened; every point value lives here.
package scoring

import (
	"sync"

	"klondike/internal/app"
	"klondike/internal/config"
	"klondike/internal/domain"
)

// Rule names as they appear in the config file's scoring table.
const (
	RuleWasteToTableau      = "waste_to_tableau"
	RuleWasteToFoundation   = "waste_to_foundation"
	RuleTableauToFoundation = "tableau_to_foundation"
	RuleFlip                = "flip"
	RuleFoundationToTableau = "foundation_to_tableau"
	RuleRecycle             = "recycle"
	RuleDraw                = "draw"
)

// Table holds the points per move kind.
type Table struct {
	WasteToTableau      int64
	WasteToFoundation   int64
	TableauToFoundation int64
	Flip                int64
	FoundationToTableau int64
	Recycle             int64
	Draw                int64
}

// DefaultTable is standard Klondike scoring.
func DefaultTable() Table {
	return Table{
		WasteToTableau:      5,
		WasteToFoundation:   10,
		TableauToFoundation: 10,
		Flip:                5,
		FoundationToTableau: -15,
		Recycle:             -100,
		Draw:                0,
	}
}

// TableFromConfig overlays the config's scoring table on the defaults.
func TableFromConfig(c *config.GameConfig) Table {
	d := DefaultTable()
	return Table{
		WasteToTableau:      c.GetPoints(RuleWasteToTableau, d.WasteToTableau),
		WasteToFoundation:   c.GetPoints(RuleWasteToFoundation, d.WasteToFoundation),
		TableauToFoundation: c.GetPoints(RuleTableauToFoundation, d.TableauToFoundation),
		Flip:                c.GetPoints(RuleFlip, d.Flip),
		FoundationToTableau: c.GetPoints(RuleFoundationToTableau, d.FoundationToTableau),
		Recycle:             c.GetPoints(RuleRecycle, d.Recycle),
		Draw:                c.GetPoints(RuleDraw, d.Draw),
	}
}

// Points returns the raw value of one completed move.
func (t Table) Points(m app.MoveCompletedPayload) int64 {
	switch m.Kind {
	case domain.MoveFlip:
		return t.Flip
	case domain.MoveRecycle:
		return t.Recycle
	case domain.MoveDraw:
		return t.Draw
	case domain.MovePlace:
	default:
		return 0
	}

	from, to := m.From.Area, m.To.Area
	switch {
	case from == domain.AreaWaste && to == domain.AreaTableau:
		return t.WasteToTableau
	case from == domain.AreaWaste && to == domain.AreaFoundation:
		return t.WasteToFoundation
	case from == domain.AreaTableau && to == domain.AreaFoundation:
		return t.TableauToFoundation
	case from == domain.AreaFoundation && to == domain.AreaTableau:
		return t.FoundationToTableau
	default:
		return 0
	}
}

// Keeper accumulates a table's score. The score never drops below zero.
type Keeper struct {
	mu    sync.Mutex
	table Table
	score int64
}

func NewKeeper(t Table) *Keeper {
	return &Keeper{table: t}
}

// Apply consumes a batch of events and returns the change actually applied
// to the score after the zero floor. A deal resets the score.
func (k *Keeper) Apply(events []app.Event) int64 {
	k.mu.Lock()
	defer k.mu.Unlock()

	var delta int64
	for _, ev := range events {
		switch ev.Kind {
		case app.EventGameDealt:
			delta -= k.score
			k.score = 0
		case app.EventMoveCompleted:
			p, ok := ev.Payload.(app.MoveCompletedPayload)
			if !ok {
				continue
			}
			next := k.score + k.table.Points(p)
			if next < 0 {
				next = 0
			}
			delta += next - k.score
			k.score = next
		}
	}
	return delta
}

// Score returns the current total.
func (k *Keeper) Score() int64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.score
}
