package domain

// Pile is an ordered run of cards, bottom first: the last element is the top.
// The stock is the exception in reading order only: index 0 is the next card
// to draw.
type Pile []SuitRank

func (p Pile) Len() int { return len(p) }

// Top returns the last card, or false if the pile is empty.
func (p Pile) Top() (SuitRank, bool) {
	if len(p) == 0 {
		return SuitRank{}, false
	}
	return p[len(p)-1], true
}

// IndexOf returns the position of sr, or -1.
func (p Pile) IndexOf(sr SuitRank) int {
	for i, c := range p {
		if c == sr {
			return i
		}
	}
	return -1
}

// Clone returns a copy that does not alias p.
func (p Pile) Clone() Pile {
	if p == nil {
		return nil
	}
	return append(Pile{}, p...)
}

func (p *Pile) push(sr SuitRank) {
	*p = append(*p, sr)
}

func (p *Pile) remove(sr SuitRank) bool {
	i := p.IndexOf(sr)
	if i < 0 {
		return false
	}
	*p = append((*p)[:i], (*p)[i+1:]...)
	return true
}

// Piles is the exclusive owner of every card's membership. Each of the 52
// identities sits in exactly one of these piles at any time.
type Piles struct {
	Stock      Pile
	Waste      Pile
	Foundation [NumFoundations]Pile
	Tableau    [NumTableaus]Pile
	Hand       Pile
}

// At returns the pile addressed by spot, or nil for the deck area and
// out-of-range indices.
func (p *Piles) At(spot PlayfieldSpot) *Pile {
	switch spot.Area {
	case AreaStock:
		return &p.Stock
	case AreaWaste:
		return &p.Waste
	case AreaHand:
		return &p.Hand
	case AreaFoundation:
		if spot.Index >= 0 && spot.Index < NumFoundations {
			return &p.Foundation[spot.Index]
		}
	case AreaTableau:
		if spot.Index >= 0 && spot.Index < NumTableaus {
			return &p.Tableau[spot.Index]
		}
	}
	return nil
}

// Count is the total number of cards across all piles, hand included.
func (p *Piles) Count() int {
	n := len(p.Stock) + len(p.Waste) + len(p.Hand)
	for _, f := range p.Foundation {
		n += len(f)
	}
	for _, t := range p.Tableau {
		n += len(t)
	}
	return n
}

// Clone deep-copies every pile.
func (p *Piles) Clone() Piles {
	out := Piles{
		Stock: p.Stock.Clone(),
		Waste: p.Waste.Clone(),
		Hand:  p.Hand.Clone(),
	}
	for i := range p.Foundation {
		out.Foundation[i] = p.Foundation[i].Clone()
	}
	for i := range p.Tableau {
		out.Tableau[i] = p.Tableau[i].Clone()
	}
	return out
}

func (p *Piles) reset() {
	p.Stock = p.Stock[:0]
	p.Waste = p.Waste[:0]
	p.Hand = p.Hand[:0]
	for i := range p.Foundation {
		p.Foundation[i] = p.Foundation[i][:0]
	}
	for i := range p.Tableau {
		p.Tableau[i] = p.Tableau[i][:0]
	}
}

func (p *Piles) each(fn func(spot PlayfieldSpot, pile Pile)) {
	fn(StockSpot(), p.Stock)
	fn(WasteSpot(), p.Waste)
	fn(HandSpot(), p.Hand)
	for i, f := range p.Foundation {
		fn(FoundationSpot(i), f)
	}
	for i, t := range p.Tableau {
		fn(TableauSpot(i), t)
	}
}
