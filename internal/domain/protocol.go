package domain

import "fmt"

// MoveKind classifies what a protocol call did.
type MoveKind uint8

const (
	MoveNone    MoveKind = iota // nothing changed
	MovePickup                  // a group entered the hand
	MovePlace                   // the held group was placed
	MoveFlip                    // a face-down tableau top was turned up
	MoveDraw                    // the stock's front card went to the waste
	MoveRecycle                 // the waste went back to the stock
	MoveReturn                  // the held group went back to its origin
)

func (k MoveKind) String() string {
	switch k {
	case MoveNone:
		return "none"
	case MovePickup:
		return "pickup"
	case MovePlace:
		return "place"
	case MoveFlip:
		return "flip"
	case MoveDraw:
		return "draw"
	case MoveRecycle:
		return "recycle"
	case MoveReturn:
		return "return"
	default:
		return "unknown"
	}
}

// Completed reports whether the kind counts as a finished move for scoring.
func (k MoveKind) Completed() bool {
	switch k {
	case MovePlace, MoveFlip, MoveDraw, MoveRecycle:
		return true
	}
	return false
}

// Result describes one protocol call. Placements lists every card whose spot
// or face state changed, in order.
type Result struct {
	Kind       MoveKind
	From       PlayfieldSpot
	To         PlayfieldSpot
	Cards      []SuitRank
	Placements []Placement
}

// OnClickCard picks up at the card's spot when the hand is empty, otherwise
// tries to place the held group there.
func (g *Game) OnClickCard(sr SuitRank) (Result, error) {
	if !sr.Valid() {
		return Result{}, fmt.Errorf("%w: %v", ErrUnknownCard, sr)
	}
	spot := g.registry.GetCard(sr).Spot
	if g.Holding() {
		return g.Place(spot)
	}
	return g.Pickup(spot, sr)
}

// OnClickEmptySpot tries to place the held group at spot; with an empty hand
// it does nothing.
func (g *Game) OnClickEmptySpot(spot PlayfieldSpot) (Result, error) {
	if !g.Holding() {
		return Result{}, nil
	}
	return g.Place(spot)
}

// Pickup starts a move from spot. Tableau clicks collect a run (or flip a
// face-down top), stock clicks draw to the waste, and waste/foundation clicks
// take the top card into the hand.
func (g *Game) Pickup(spot PlayfieldSpot, sr SuitRank) (Result, error) {
	if !g.IsLegal(sr, HandSpot()) {
		return Result{}, fmt.Errorf("%w: hand already holds %d card(s)", ErrIllegalMove, len(g.piles.Hand))
	}

	switch spot.Area {
	case AreaTableau:
		return g.CollectRun(sr)
	case AreaStock:
		return g.Draw()
	case AreaFoundation, AreaWaste:
		return g.takeTop(spot.Pile())
	default:
		return Result{}, fmt.Errorf("%w: nothing to pick up in %s", ErrIllegalMove, spot)
	}
}

// CollectRun handles a tableau pickup. A face-down card is flipped in place if
// it is its column's top and ignored otherwise. A face-up card is lifted into
// the hand together with everything above it.
func (g *Game) CollectRun(sr SuitRank) (Result, error) {
	if !sr.Valid() {
		return Result{}, fmt.Errorf("%w: %v", ErrUnknownCard, sr)
	}
	if g.Holding() {
		return Result{}, fmt.Errorf("%w: hand is not empty", ErrIllegalMove)
	}
	card := g.registry.GetCard(sr)
	if card.Spot.Area != AreaTableau {
		return Result{}, fmt.Errorf("%w: %s is not in the tableau", ErrIllegalMove, sr)
	}

	column := TableauSpot(card.Spot.Index)
	pile := g.piles.At(column)
	at := pile.IndexOf(sr)
	if at < 0 {
		invariant("collect", sr, "card claims %s but is not in it", column)
	}

	if !card.FaceUp {
		if at != pile.Len()-1 {
			return Result{}, nil
		}
		g.beginOp()
		card.FaceUp = true
		g.placements = append(g.placements, Placement{Card: sr, Spot: column, FaceUp: true})
		g.moves++
		return Result{Kind: MoveFlip, From: column, To: column, Cards: []SuitRank{sr}, Placements: g.endOp()}, nil
	}

	run := (*pile)[at:].Clone()
	g.beginOp()
	for _, c := range run {
		g.relocate(c, column, HandSpot(), true)
	}
	g.origin = column
	return Result{Kind: MovePickup, From: column, To: HandSpot(), Cards: run, Placements: g.endOp()}, nil
}

// Draw moves the stock's front card face up onto the waste. It never goes
// through the hand and is always legal while the stock has cards.
func (g *Game) Draw() (Result, error) {
	if g.Holding() {
		return Result{}, fmt.Errorf("%w: hand is not empty", ErrIllegalMove)
	}
	if len(g.piles.Stock) == 0 {
		return Result{}, fmt.Errorf("%w: %s", ErrEmptyPile, StockSpot())
	}

	front := g.piles.Stock[0]
	g.beginOp()
	g.relocate(front, StockSpot(), WasteSpot(), true)
	g.moves++
	return Result{Kind: MoveDraw, From: StockSpot(), To: WasteSpot(), Cards: []SuitRank{front}, Placements: g.endOp()}, nil
}

// takeTop lifts the top card of a waste or foundation pile into the hand. The
// card leaves its source pile at pickup time, so the hand owns it until the
// group is placed or returned.
func (g *Game) takeTop(spot PlayfieldSpot) (Result, error) {
	pile := g.piles.At(spot)
	if pile == nil {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownSpot, spot)
	}
	top, ok := pile.Top()
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrEmptyPile, spot)
	}

	g.beginOp()
	g.relocate(top, spot, HandSpot(), true)
	g.origin = spot
	return Result{Kind: MovePickup, From: spot, To: HandSpot(), Cards: []SuitRank{top}, Placements: g.endOp()}, nil
}

// Place puts the held group at dest if its first card is legal there. On
// rejection nothing changes and the hand keeps the group.
func (g *Game) Place(dest PlayfieldSpot) (Result, error) {
	if !g.Holding() {
		return Result{}, nil
	}
	dest = dest.Pile()
	group := g.piles.Hand.Clone()
	if !canPlace(&g.piles, group, dest) {
		return Result{}, fmt.Errorf("%w: %s onto %s", ErrIllegalMove, group[0], dest)
	}

	g.beginOp()
	for _, sr := range group {
		g.relocate(sr, HandSpot(), dest, g.registry.GetCard(sr).FaceUp)
	}
	from := g.origin
	g.origin = PlayfieldSpot{}
	g.moves++
	return Result{Kind: MovePlace, From: from, To: dest, Cards: group, Placements: g.endOp()}, nil
}

// ReturnHand puts the held group back on the pile it came from without
// validation and leaves the hand empty.
func (g *Game) ReturnHand() Result {
	if !g.Holding() {
		return Result{}
	}
	group := g.piles.Hand.Clone()
	origin := g.origin

	g.beginOp()
	for _, sr := range group {
		g.relocate(sr, HandSpot(), origin, true)
	}
	g.origin = PlayfieldSpot{}
	return Result{Kind: MoveReturn, From: HandSpot(), To: origin, Cards: group, Placements: g.endOp()}
}

// WasteToStock moves the whole waste back to the stock, last waste card
// first, so the most recently drawn card ends up nearest the draw position.
// Cards still in the stock stay behind the recycled ones. It ignores the
// hand. An empty waste is a no-op.
func (g *Game) WasteToStock() Result {
	if len(g.piles.Waste) == 0 {
		return Result{}
	}
	waste := g.piles.Waste.Clone()
	moved := make([]SuitRank, 0, len(waste))
	kept := len(g.piles.Stock)

	g.beginOp()
	for i := len(waste) - 1; i >= 0; i-- {
		g.relocate(waste[i], WasteSpot(), StockSpot(), false)
		moved = append(moved, waste[i])
	}
	if kept > 0 {
		stock := g.piles.Stock
		g.piles.Stock = append(stock[kept:].Clone(), stock[:kept]...)
		g.renumberStock()
	}
	g.moves++
	return Result{Kind: MoveRecycle, From: WasteSpot(), To: StockSpot(), Cards: moved, Placements: g.endOp()}
}

// renumberStock rewrites the bookkeeping index of every stock card, and of the
// placements recorded so far, to the card's current position.
func (g *Game) renumberStock() {
	for i, sr := range g.piles.Stock {
		g.registry.GetCard(sr).Spot.Index = i
	}
	for i, pl := range g.placements {
		if pl.Spot.Area == AreaStock {
			g.placements[i].Spot.Index = g.registry.GetCard(pl.Card).Spot.Index
		}
	}
}
