package domain

// SuggestSpot returns the first destination whose top card is one rank below
// sr, checking the card's own foundation first and then tableau columns 0..6.
// An empty foundation takes an Ace and an empty column takes a King. On the
// tableau the result is a card that could go onto sr, not a spot the
// validator would accept for sr; use LegalSpot for that. It never mutates.
func SuggestSpot(p *Piles, sr SuitRank) (PlayfieldSpot, bool) {
	if !sr.Valid() {
		return PlayfieldSpot{}, false
	}
	below := int(sr.Rank) - 1

	own := FoundationSpot(int(sr.Suit))
	if top, ok := p.Foundation[sr.Suit].Top(); !ok {
		if sr.Rank == Ace {
			return own, true
		}
	} else if int(top.Rank) == below {
		return own, true
	}

	for i, column := range p.Tableau {
		top, ok := column.Top()
		if !ok {
			if sr.Rank == King {
				return TableauSpot(i), true
			}
			continue
		}
		if int(top.Rank) == below && OppositeColor(top.Suit, sr.Suit) {
			return TableauSpot(i), true
		}
	}
	return PlayfieldSpot{}, false
}

// LegalSpot returns the first destination the validator accepts for sr, in
// the same scan order as SuggestSpot.
func LegalSpot(p *Piles, sr SuitRank) (PlayfieldSpot, bool) {
	return LegalGroupSpot(p, Pile{sr}, PlayfieldSpot{})
}

// LegalGroupSpot is LegalSpot for a group headed by group[0] that was lifted
// from origin. Foundations only take a single card and the origin pile is
// never returned.
func LegalGroupSpot(p *Piles, group Pile, origin PlayfieldSpot) (PlayfieldSpot, bool) {
	if len(group) == 0 || !group[0].Valid() {
		return PlayfieldSpot{}, false
	}
	origin = origin.Pile()

	candidates := make([]PlayfieldSpot, 0, 1+NumTableaus)
	candidates = append(candidates, FoundationSpot(int(group[0].Suit)))
	for i := 0; i < NumTableaus; i++ {
		candidates = append(candidates, TableauSpot(i))
	}
	for _, spot := range candidates {
		if spot != origin && canPlace(p, group, spot) {
			return spot, true
		}
	}
	return PlayfieldSpot{}, false
}

// SuggestSpot runs the suggestion search against the game's piles.
func (g *Game) SuggestSpot(sr SuitRank) (PlayfieldSpot, bool) {
	return SuggestSpot(&g.piles, sr)
}

// LegalSpot runs the legal-destination scan against the game's piles.
func (g *Game) LegalSpot(sr SuitRank) (PlayfieldSpot, bool) {
	return LegalSpot(&g.piles, sr)
}

// SuggestHeld returns a legal destination for the group currently in the
// hand, other than the pile it came from.
func (g *Game) SuggestHeld() (PlayfieldSpot, bool) {
	if !g.Holding() {
		return PlayfieldSpot{}, false
	}
	return LegalGroupSpot(&g.piles, g.piles.Hand, g.origin)
}
