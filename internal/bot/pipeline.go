package bot

import (
	"klondike/internal/domain"
)

// SelectionContext holds the candidate moves and their running scores while
// the selection rules run.
type SelectionContext struct {
	Game       *domain.Game
	Piles      *domain.Piles
	Candidates []Move
	Scores     []float64
}

func NewSelectionContext(game *domain.Game, p *domain.Piles, candidates []Move) *SelectionContext {
	return &SelectionContext{
		Game:       game,
		Piles:      p,
		Candidates: candidates,
		Scores:     make([]float64, len(candidates)),
	}
}

// Best returns the highest scoring candidate; ties go to the earlier one.
func (ctx *SelectionContext) Best() (Move, float64) {
	best := 0
	for i := 1; i < len(ctx.Scores); i++ {
		if ctx.Scores[i] > ctx.Scores[best] {
			best = i
		}
	}
	return ctx.Candidates[best], ctx.Scores[best]
}

// beneath returns the card under m.Card in its tableau column.
func (ctx *SelectionContext) beneath(m Move) (domain.SuitRank, bool) {
	if m.From.Area != domain.AreaTableau {
		return domain.SuitRank{}, false
	}
	column := ctx.Piles.Tableau[m.From.Index]
	k := column.IndexOf(m.Card)
	if k <= 0 {
		return domain.SuitRank{}, false
	}
	return column[k-1], true
}

// SelectionRule represents a logic unit that adjusts candidate scores.
type SelectionRule interface {
	Name() string
	Apply(ctx *SelectionContext)
}

// FoundationRule rewards sending a card home.
type FoundationRule struct{ Weight float64 }

func (r *FoundationRule) Name() string { return "Foundation" }

func (r *FoundationRule) Apply(ctx *SelectionContext) {
	for i, m := range ctx.Candidates {
		if m.Action == ActionPlace && m.To.Area == domain.AreaFoundation {
			ctx.Scores[i] += r.Weight
		}
	}
}

// RevealRule rewards flips and moves that uncover a face-down card.
type RevealRule struct {
	Weight     float64
	FlipWeight float64
}

func (r *RevealRule) Name() string { return "Reveal" }

func (r *RevealRule) Apply(ctx *SelectionContext) {
	for i, m := range ctx.Candidates {
		if m.Action == ActionFlip {
			ctx.Scores[i] += r.FlipWeight
			continue
		}
		if under, ok := ctx.beneath(m); ok && !faceUp(ctx.Game, under) {
			ctx.Scores[i] += r.Weight
		}
	}
}

// WasteRule rewards playing from the waste.
type WasteRule struct{ Weight float64 }

func (r *WasteRule) Name() string { return "Waste" }

func (r *WasteRule) Apply(ctx *SelectionContext) {
	for i, m := range ctx.Candidates {
		if m.From.Area == domain.AreaWaste {
			ctx.Scores[i] += r.Weight
		}
	}
}

// EmptyColumnRule rewards emptying a column.
type EmptyColumnRule struct{ Weight float64 }

func (r *EmptyColumnRule) Name() string { return "EmptyColumn" }

func (r *EmptyColumnRule) Apply(ctx *SelectionContext) {
	for i, m := range ctx.Candidates {
		if m.Action != ActionPlace || m.From.Area != domain.AreaTableau {
			continue
		}
		if column := ctx.Piles.Tableau[m.From.Index]; len(column) > 0 && column[0] == m.Card {
			ctx.Scores[i] += r.Weight
		}
	}
}

// IdleRule penalises tableau-to-tableau moves that leave a face-up card
// behind.
type IdleRule struct{ Penalty float64 }

func (r *IdleRule) Name() string { return "Idle" }

func (r *IdleRule) Apply(ctx *SelectionContext) {
	for i, m := range ctx.Candidates {
		if m.Action == ActionPlace && idle(ctx.Game, ctx.Piles, m) {
			ctx.Scores[i] += r.Penalty
		}
	}
}

// DefaultRules builds the rule set for t.
func DefaultRules(t Tuning) []SelectionRule {
	return []SelectionRule{
		&FoundationRule{Weight: t.FoundationWeight},
		&RevealRule{Weight: t.RevealWeight, FlipWeight: t.FlipWeight},
		&WasteRule{Weight: t.WasteWeight},
		&EmptyColumnRule{Weight: t.EmptyColumnWeight},
		&IdleRule{Penalty: t.IdlePenalty},
	}
}
