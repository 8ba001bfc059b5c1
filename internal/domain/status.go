package domain

import (
	"fmt"
	"strings"
)

// PileCounts is the pile-size summary shown by status displays.
type PileCounts struct {
	Stock      int                 `json:"stock"`
	Waste      int                 `json:"waste"`
	Hand       int                 `json:"hand"`
	Foundation [NumFoundations]int `json:"foundation"`
	Tableau    [NumTableaus]int    `json:"tableau"`
	Moves      int                 `json:"moves"`
}

// Total sums every pile including the hand; it is 52 in any reachable state.
func (c PileCounts) Total() int {
	n := c.Stock + c.Waste + c.Hand
	for _, f := range c.Foundation {
		n += f
	}
	for _, t := range c.Tableau {
		n += t
	}
	return n
}

func (c PileCounts) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "stock=%d waste=%d hand=%d foundation=%v tableau=%v moves=%d",
		c.Stock, c.Waste, c.Hand, c.Foundation, c.Tableau, c.Moves)
	return b.String()
}

// Counts returns the pile-count summary.
func (g *Game) Counts() PileCounts {
	c := PileCounts{
		Stock: len(g.piles.Stock),
		Waste: len(g.piles.Waste),
		Hand:  len(g.piles.Hand),
		Moves: g.moves,
	}
	for i, f := range g.piles.Foundation {
		c.Foundation[i] = len(f)
	}
	for i, t := range g.piles.Tableau {
		c.Tableau[i] = len(t)
	}
	return c
}

// CardView is a card as a client sees it.
type CardView struct {
	Card   SuitRank `json:"card"`
	FaceUp bool     `json:"face_up"`
}

// Snapshot is a read-only copy of the whole table.
type Snapshot struct {
	Stock      []CardView                 `json:"stock"`
	Waste      []CardView                 `json:"waste"`
	Hand       []CardView                 `json:"hand"`
	HandOrigin *PlayfieldSpot             `json:"hand_origin,omitempty"`
	Foundation [NumFoundations][]CardView `json:"foundation"`
	Tableau    [NumTableaus][]CardView    `json:"tableau"`
	Moves      int                        `json:"moves"`
	Won        bool                       `json:"won"`
}

// Snapshot copies every pile with face states.
func (g *Game) Snapshot() Snapshot {
	view := func(p Pile) []CardView {
		out := make([]CardView, len(p))
		for i, sr := range p {
			out[i] = CardView{Card: sr, FaceUp: g.registry.GetCard(sr).FaceUp}
		}
		return out
	}

	s := Snapshot{
		Stock: view(g.piles.Stock),
		Waste: view(g.piles.Waste),
		Hand:  view(g.piles.Hand),
		Moves: g.moves,
		Won:   g.IsWon(),
	}
	if origin, ok := g.HandOrigin(); ok {
		s.HandOrigin = &origin
	}
	for i, f := range g.piles.Foundation {
		s.Foundation[i] = view(f)
	}
	for i, t := range g.piles.Tableau {
		s.Tableau[i] = view(t)
	}
	return s
}

// CheckPartition verifies that every card sits in exactly one pile, that each
// card's spot agrees with that pile, and that foundations hold one suit in
// ascending order.
func (g *Game) CheckPartition() error {
	seen := make(map[SuitRank]PlayfieldSpot, DeckSize)
	var err error
	g.piles.each(func(spot PlayfieldSpot, pile Pile) {
		for _, sr := range pile {
			if err != nil {
				return
			}
			if prev, dup := seen[sr]; dup {
				err = fmt.Errorf("%s is in both %s and %s", sr, prev, spot)
				return
			}
			seen[sr] = spot
			if got := g.registry.GetCard(sr).Spot.Pile(); got != spot {
				err = fmt.Errorf("%s sits in %s but its spot says %s", sr, spot, got)
				return
			}
		}
	})
	if err != nil {
		return err
	}
	if len(seen) != DeckSize {
		return fmt.Errorf("piles hold %d distinct cards, want %d", len(seen), DeckSize)
	}

	for i, f := range g.piles.Foundation {
		for j, sr := range f {
			if int(sr.Suit) != i || int(sr.Rank) != j {
				return fmt.Errorf("foundation[%d] position %d holds %s", i, j, sr)
			}
		}
	}
	return nil
}
