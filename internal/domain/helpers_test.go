package domain

import (
	"math/rand"
	"testing"
)

func sr(code string) SuitRank {
	c, err := ParseSuitRank(code)
	if err != nil {
		panic(err)
	}
	return c
}

func cards(codes ...string) Pile {
	out := make(Pile, len(codes))
	for i, code := range codes {
		out[i] = sr(code)
	}
	return out
}

// fixedSource always returns the same index.
type fixedSource int

func (f fixedSource) Intn(n int) int { return int(f) % n }

func newTestGame() *Game {
	return NewGame(rand.New(rand.NewSource(7)), WithShuffleIterations(0))
}

// arrange replaces the game's piles with p. Cards p does not mention are
// appended to spare so the 52-card partition still holds. Every card outside
// the stock is face up unless listed in down.
func arrange(t *testing.T, g *Game, p Piles, spare PlayfieldSpot, down ...SuitRank) {
	t.Helper()

	present := make(map[SuitRank]bool, DeckSize)
	p.each(func(_ PlayfieldSpot, pile Pile) {
		for _, c := range pile {
			present[c] = true
		}
	})
	target := p.At(spare)
	if target == nil {
		t.Fatalf("arrange: bad spare spot %s", spare)
	}
	for i := 0; i < DeckSize; i++ {
		c := SuitRankFromOrdinal(i)
		if !present[c] {
			*target = append(*target, c)
		}
	}

	faceDown := make(map[SuitRank]bool, len(down))
	for _, c := range down {
		faceDown[c] = true
	}

	g.piles = p
	g.origin = PlayfieldSpot{}
	g.piles.each(func(spot PlayfieldSpot, pile Pile) {
		for i, c := range pile {
			card := g.registry.GetCard(c)
			card.Spot = spot
			if spot.Area == AreaStock || spot.Area == AreaWaste || spot.Area == AreaHand {
				card.Spot.Index = i
			}
			card.FaceUp = spot.Area != AreaStock && !faceDown[c]
		}
	})

	if err := g.CheckPartition(); err != nil {
		t.Fatalf("arrange produced a broken layout: %v", err)
	}
}

func mustPartition(t *testing.T, g *Game) {
	t.Helper()
	if err := g.CheckPartition(); err != nil {
		t.Fatalf("partition broken: %v", err)
	}
	if total := g.Counts().Total(); total != DeckSize {
		t.Fatalf("pile total = %d, want %d", total, DeckSize)
	}
}

func pileEqual(a, b Pile) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
