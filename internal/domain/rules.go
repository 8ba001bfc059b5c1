package domain

// IsLegal reports whether sr may be placed at dest given the current piles.
//
//   - Hand: only while the hand is empty.
//   - Stock: never.
//   - Tableau: a King onto an empty column, or one rank below the top card in
//     the opposite color bucket.
//   - Foundation: the Ace of the foundation's own suit onto an empty pile, or
//     the next rank of the top card's suit.
//   - Anything else: never.
func IsLegal(p *Piles, sr SuitRank, dest PlayfieldSpot) bool {
	switch dest.Area {
	case AreaHand:
		return len(p.Hand) == 0
	case AreaStock:
		return false
	case AreaTableau:
		pile := p.At(dest)
		if pile == nil {
			return false
		}
		top, ok := pile.Top()
		if !ok {
			return sr.Rank == King
		}
		return top.Rank == sr.Rank+1 && OppositeColor(top.Suit, sr.Suit)
	case AreaFoundation:
		pile := p.At(dest)
		if pile == nil {
			return false
		}
		top, ok := pile.Top()
		if !ok {
			return int(sr.Suit) == dest.Index && sr.Rank == Ace
		}
		return sr.Suit == top.Suit && sr.Rank == top.Rank+1
	default:
		return false
	}
}

// IsLegal checks sr against the game's current piles.
func (g *Game) IsLegal(sr SuitRank, dest PlayfieldSpot) bool {
	return IsLegal(&g.piles, sr, dest)
}

// canPlace extends the single-card check to a held group: only a lone card
// may go onto a foundation.
func canPlace(p *Piles, group Pile, dest PlayfieldSpot) bool {
	if len(group) == 0 {
		return false
	}
	if dest.Area == AreaFoundation && len(group) > 1 {
		return false
	}
	return IsLegal(p, group[0], dest)
}
