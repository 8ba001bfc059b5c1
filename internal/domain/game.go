package domain

import (
	"fmt"
	"math/rand"
	"time"
)

// RandomSource draws the shuffle's swap positions. *rand.Rand satisfies it.
type RandomSource interface {
	Intn(n int) int
}

// DefaultShuffleIterations is the number of passes Deal shuffles with.
const DefaultShuffleIterations = 3

// Placement tells the rendering layer where a card now logically sits.
type Placement struct {
	Card   SuitRank      `json:"card"`
	Spot   PlayfieldSpot `json:"spot"`
	FaceUp bool          `json:"face_up"`
}

// Game is the Klondike engine for one table: the registry, the piles and the
// pickup/place state. It is not safe for concurrent use; each exported
// mutating call is one complete turn.
type Game struct {
	registry *Registry
	piles    Piles
	origin   PlayfieldSpot // where the held group came from; meaningful while holding

	rng               RandomSource
	shuffleIterations int
	moves             int

	placements []Placement
}

// Option configures a Game.
type Option func(*Game)

// WithShuffleIterations overrides the number of shuffle passes per deal; 0
// deals the deck in canonical order.
func WithShuffleIterations(n int) Option {
	return func(g *Game) {
		if n >= 0 {
			g.shuffleIterations = n
		}
	}
}

// WithRegistry supplies a pre-built registry instead of a fresh one.
func WithRegistry(r *Registry) Option {
	return func(g *Game) {
		if r != nil {
			g.registry = r
		}
	}
}

// NewGame constructs the 52 cards once. rng may be nil to use a time-seeded
// default. Call Deal to lay out the table.
func NewGame(rng RandomSource, opts ...Option) *Game {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	g := &Game{
		registry:          NewRegistry(),
		rng:               rng,
		shuffleIterations: DefaultShuffleIterations,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Registry exposes the card registry (read-only by convention).
func (g *Game) Registry() *Registry { return g.registry }

// Card returns a copy of the entity for sr.
func (g *Game) Card(sr SuitRank) (Card, error) {
	if !sr.Valid() {
		return Card{}, fmt.Errorf("%w: %v", ErrUnknownCard, sr)
	}
	return *g.registry.GetCard(sr), nil
}

// Pile returns a copy of the pile addressed by spot.
func (g *Game) Pile(spot PlayfieldSpot) (Pile, error) {
	p := g.piles.At(spot)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSpot, spot)
	}
	return p.Clone(), nil
}

// Piles returns a deep copy of every pile.
func (g *Game) Piles() Piles { return g.piles.Clone() }

// Holding reports whether a group is currently in the hand.
func (g *Game) Holding() bool { return len(g.piles.Hand) > 0 }

// HandOrigin returns where the held group was picked up from.
func (g *Game) HandOrigin() (PlayfieldSpot, bool) {
	if !g.Holding() {
		return PlayfieldSpot{}, false
	}
	return g.origin, true
}

// Moves is the number of completed moves since the last deal.
func (g *Game) Moves() int { return g.moves }

// IsWon reports whether every foundation holds a full suit.
func (g *Game) IsWon() bool {
	for _, f := range g.piles.Foundation {
		if len(f) != NumRanks {
			return false
		}
	}
	return true
}

// AssignToSpot appends sr to the pile at dest and updates the card's spot and
// face flag. It applies area defaults only: the stock forces face down, the
// hand forces face up, other areas honour faceUp. It does not check legality
// and does not remove the card from its previous pile; the caller must do
// that in the same operation.
func (g *Game) AssignToSpot(sr SuitRank, dest PlayfieldSpot, faceUp bool) (Placement, error) {
	if !sr.Valid() {
		return Placement{}, fmt.Errorf("%w: %v", ErrUnknownCard, sr)
	}
	if g.piles.At(dest) == nil {
		return Placement{}, fmt.Errorf("%w: %s", ErrUnknownSpot, dest)
	}
	g.assign(sr, dest, faceUp)
	p := g.placements[len(g.placements)-1]
	return p, nil
}

func (g *Game) assign(sr SuitRank, dest PlayfieldSpot, faceUp bool) {
	pile := g.piles.At(dest)
	if pile == nil {
		invariant("assign", sr, "no pile at %s", dest)
	}

	switch dest.Area {
	case AreaStock:
		faceUp = false
	case AreaHand:
		faceUp = true
	}

	spot := dest.Pile()
	switch dest.Area {
	case AreaStock, AreaWaste, AreaHand:
		spot.Index = pile.Len()
	}

	card := g.registry.GetCard(sr)
	card.Spot = spot
	card.FaceUp = faceUp
	pile.push(sr)
	g.placements = append(g.placements, Placement{Card: sr, Spot: spot, FaceUp: faceUp})
}

// relocate is the only path that changes a card's owning pile: it removes sr
// from the pile at from and assigns it to to.
func (g *Game) relocate(sr SuitRank, from, to PlayfieldSpot, faceUp bool) {
	src := g.piles.At(from)
	if src == nil || !src.remove(sr) {
		invariant("relocate", sr, "card is not in %s", from)
	}
	g.assign(sr, to, faceUp)
}

func (g *Game) beginOp() {
	g.placements = g.placements[:0]
}

// endOp returns the placements recorded since beginOp, keeping only the last
// one per card in the order those last changes happened.
func (g *Game) endOp() []Placement {
	recorded := g.placements
	g.placements = nil

	seen := make(map[SuitRank]bool, len(recorded))
	out := make([]Placement, 0, len(recorded))
	for i := len(recorded) - 1; i >= 0; i-- {
		if seen[recorded[i].Card] {
			continue
		}
		seen[recorded[i].Card] = true
		out = append(out, recorded[i])
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
