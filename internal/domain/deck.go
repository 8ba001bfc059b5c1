package domain

import "fmt"

// Registry owns the 52 card entities and the identity -> array index lookup.
// The array order is the deck order; swaps keep both in lockstep.
type Registry struct {
	cards [DeckSize]*Card
	index map[SuitRank]int
}

// NewRegistry builds the 52 cards suit-major, rank-minor with deck order 0..51.
func NewRegistry() *Registry {
	r := &Registry{index: make(map[SuitRank]int, DeckSize)}
	for i := 0; i < DeckSize; i++ {
		sr := SuitRankFromOrdinal(i)
		r.cards[i] = &Card{SuitRank: sr, Order: i, Spot: DeckSpot()}
		r.index[sr] = i
	}
	return r
}

// GetIndex returns the array position of sr. A miss means the registry is
// corrupt and panics with *InvariantError.
func (r *Registry) GetIndex(sr SuitRank) int {
	i, ok := r.index[sr]
	if !ok {
		invariant("lookup", sr, "card missing from identity lookup")
	}
	return i
}

// GetCard returns the entity for sr; see GetIndex for the miss behaviour.
func (r *Registry) GetCard(sr SuitRank) *Card {
	return r.cards[r.GetIndex(sr)]
}

// At returns the card at deck position i.
func (r *Registry) At(i int) *Card {
	return r.cards[i]
}

// Len is the number of identities the lookup knows about.
func (r *Registry) Len() int {
	return len(r.index)
}

func (r *Registry) swap(i, j int) {
	r.cards[i], r.cards[j] = r.cards[j], r.cards[i]
	r.cards[i].Order = i
	r.cards[j].Order = j
	r.index[r.cards[i].SuitRank] = i
	r.index[r.cards[j].SuitRank] = j
}

func (r *Registry) validate() error {
	if len(r.index) != DeckSize {
		return fmt.Errorf("registry knows %d cards, want %d", len(r.index), DeckSize)
	}
	for i, c := range r.cards {
		if c == nil {
			return fmt.Errorf("deck position %d is empty", i)
		}
		if !c.Valid() {
			return fmt.Errorf("deck position %d holds invalid card %v", i, c.SuitRank)
		}
		if got, ok := r.index[c.SuitRank]; !ok || got != i {
			return fmt.Errorf("lookup for %s points at %d, card sits at %d", c.SuitRank, got, i)
		}
	}
	return nil
}

// Shuffle runs iterations passes; each pass swaps every position j with a
// position drawn uniformly from the whole deck, not just the unvisited suffix.
// Deck order and the identity lookup follow every swap.
func (g *Game) Shuffle(iterations int) {
	for it := 0; it < iterations; it++ {
		for j := 0; j < DeckSize; j++ {
			g.registry.swap(j, g.rng.Intn(DeckSize))
		}
	}
}

// Deal resets every pile and lays out a fresh Klondike game: 28 cards over the
// seven tableau columns with only each column's last card face up, and the
// remaining 24 face down in the stock.
func (g *Game) Deal() ([]Placement, error) {
	if err := g.registry.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDealState, err)
	}

	g.beginOp()
	g.piles.reset()
	g.origin = PlayfieldSpot{}
	g.moves = 0

	// The stock is loaded in post-shuffle deck order, which is what loading
	// first and shuffling the deck and stock together produces.
	g.Shuffle(g.shuffleIterations)
	for i := 0; i < DeckSize; i++ {
		g.assign(g.registry.At(i).SuitRank, StockSpot(), false)
	}

	for round := 0; round < NumTableaus; round++ {
		for pile := round; pile < NumTableaus; pile++ {
			g.relocate(g.piles.Stock[0], StockSpot(), TableauSpot(pile), pile == round)
		}
	}

	rest := append(Pile(nil), g.piles.Stock...)
	g.piles.Stock = g.piles.Stock[:0]
	for i := len(rest) - 1; i >= 0; i-- {
		g.assign(rest[i], StockSpot(), false)
	}

	return g.endOp(), nil
}
