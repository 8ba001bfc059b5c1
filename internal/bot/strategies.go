package bot

import (
	"klondike/internal/domain"
)

// faceUp reports whether the card is showing.
func faceUp(game *domain.Game, sr domain.SuitRank) bool {
	card, err := game.Card(sr)
	return err == nil && card.FaceUp
}

// pointless reports moves that only shuffle a whole column onto another
// empty column.
func pointless(p *domain.Piles, m Move) bool {
	if m.From.Area != domain.AreaTableau || m.To.Area != domain.AreaTableau {
		return false
	}
	column := p.Tableau[m.From.Index]
	return len(column) > 0 && column[0] == m.Card && len(p.Tableau[m.To.Index]) == 0
}

// idle reports a tableau-to-tableau move that leaves a face-up card behind;
// such moves can bounce between two columns forever.
func idle(game *domain.Game, p *domain.Piles, m Move) bool {
	if m.From.Area != domain.AreaTableau || m.To.Area != domain.AreaTableau {
		return false
	}
	column := p.Tableau[m.From.Index]
	k := column.IndexOf(m.Card)
	return k > 0 && faceUp(game, column[k-1])
}

// flips lists every face-down tableau top.
func flips(game *domain.Game, p *domain.Piles) []Move {
	var out []Move
	for i, column := range p.Tableau {
		if top, ok := column.Top(); ok && !faceUp(game, top) {
			spot := domain.TableauSpot(i)
			out = append(out, Move{Action: ActionFlip, Card: top, From: spot, To: spot})
		}
	}
	return out
}

// legalMoves enumerates every placement from the waste top or a face-up
// tableau card, in scan order: waste first, then columns left to right and
// bottom to top, destinations foundation first then columns left to right.
func legalMoves(game *domain.Game, p *domain.Piles) []Move {
	var out []Move
	add := func(group domain.Pile, from domain.PlayfieldSpot) {
		head := group[0]
		if len(group) == 1 {
			home := domain.FoundationSpot(int(head.Suit))
			if domain.IsLegal(p, head, home) {
				out = append(out, Move{Action: ActionPlace, Card: head, From: from, To: home})
			}
		}
		for i := 0; i < domain.NumTableaus; i++ {
			to := domain.TableauSpot(i)
			if to == from || !domain.IsLegal(p, head, to) {
				continue
			}
			m := Move{Action: ActionPlace, Card: head, From: from, To: to}
			if !pointless(p, m) {
				out = append(out, m)
			}
		}
	}

	if top, ok := p.Waste.Top(); ok {
		add(domain.Pile{top}, domain.WasteSpot())
	}
	for i, column := range p.Tableau {
		for k, sr := range column {
			if faceUp(game, sr) {
				add(column[k:], domain.TableauSpot(i))
			}
		}
	}
	return out
}

// stockMove is the fallback when no card can move: draw, or recycle an
// exhausted stock.
func stockMove(p *domain.Piles) (Move, bool) {
	switch {
	case len(p.Stock) > 0:
		return Move{Action: ActionDraw, Card: p.Stock[0], From: domain.StockSpot(), To: domain.WasteSpot()}, true
	case len(p.Waste) > 0:
		return Move{Action: ActionRecycle, From: domain.WasteSpot(), To: domain.StockSpot()}, true
	default:
		return Move{}, false
	}
}
