package bot

import (
	"klondike/internal/domain"
)

// FoundationBrain only sends waste and tableau tops to their foundation.
// Repeating it until it gives up is auto-complete.
type FoundationBrain struct{}

func (b *FoundationBrain) NextMove(game *domain.Game) (Move, bool) {
	if game == nil || game.Holding() {
		return Move{}, false
	}
	p := game.Piles()

	home := func(sr domain.SuitRank, from domain.PlayfieldSpot) (Move, bool) {
		spot, ok := domain.LegalSpot(&p, sr)
		if !ok || spot.Area != domain.AreaFoundation {
			return Move{}, false
		}
		return Move{Action: ActionPlace, Card: sr, From: from, To: spot}, true
	}

	if top, ok := p.Waste.Top(); ok {
		if m, ok := home(top, domain.WasteSpot()); ok {
			return m, true
		}
	}
	for i, column := range p.Tableau {
		top, ok := column.Top()
		if !ok || !faceUp(game, top) {
			continue
		}
		if m, ok := home(top, domain.TableauSpot(i)); ok {
			return m, true
		}
	}
	return Move{}, false
}

// HintBrain returns the first suggestion found scanning the waste top, then
// face-up tableau cards, then face-down tops to flip, then the stock. Tableau
// moves that neither uncover nor empty anything are skipped.
type HintBrain struct{}

func (b *HintBrain) NextMove(game *domain.Game) (Move, bool) {
	if game == nil || game.Holding() {
		return Move{}, false
	}
	p := game.Piles()

	try := func(group domain.Pile, from domain.PlayfieldSpot) (Move, bool) {
		spot, ok := domain.LegalGroupSpot(&p, group, from)
		if !ok {
			return Move{}, false
		}
		m := Move{Action: ActionPlace, Card: group[0], From: from, To: spot}
		if pointless(&p, m) || idle(game, &p, m) {
			return Move{}, false
		}
		return m, true
	}

	if top, ok := p.Waste.Top(); ok {
		if m, ok := try(domain.Pile{top}, domain.WasteSpot()); ok {
			return m, true
		}
	}
	for i, column := range p.Tableau {
		for k, sr := range column {
			if !faceUp(game, sr) {
				continue
			}
			if m, ok := try(column[k:], domain.TableauSpot(i)); ok {
				return m, true
			}
		}
	}
	if f := flips(game, &p); len(f) > 0 {
		return f[0], true
	}
	return stockMove(&p)
}

// RankedBrain scores every legal move with the selection pipeline and falls
// back to the stock when nothing scores above zero.
type RankedBrain struct {
	Tuning Tuning
	Rules  []SelectionRule
}

func (b *RankedBrain) NextMove(game *domain.Game) (Move, bool) {
	if game == nil || game.Holding() {
		return Move{}, false
	}
	p := game.Piles()

	candidates := append(legalMoves(game, &p), flips(game, &p)...)
	if len(candidates) == 0 {
		return stockMove(&p)
	}

	rules := b.Rules
	if rules == nil {
		rules = DefaultRules(b.Tuning)
	}
	ctx := NewSelectionContext(game, &p, candidates)
	for _, rule := range rules {
		rule.Apply(ctx)
	}
	best, score := ctx.Best()
	if score <= 0 {
		if m, ok := stockMove(&p); ok {
			return m, true
		}
	}
	return best, true
}
