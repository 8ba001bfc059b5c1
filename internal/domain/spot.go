package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// PlayfieldArea names a region of the table. The zero value is AreaNone, so
// an unset PlayfieldSpot never names a real pile.
type PlayfieldArea uint8

const (
	AreaNone PlayfieldArea = iota
	AreaFoundation
	AreaTableau
	AreaStock
	AreaWaste
	AreaHand
	AreaDeck
)

func (a PlayfieldArea) String() string {
	switch a {
	case AreaNone:
		return "none"
	case AreaFoundation:
		return "foundation"
	case AreaTableau:
		return "tableau"
	case AreaStock:
		return "stock"
	case AreaWaste:
		return "waste"
	case AreaHand:
		return "hand"
	case AreaDeck:
		return "deck"
	default:
		return "unknown"
	}
}

// PlayfieldSpot is an (area, index) pair. For Foundation and Tableau the index
// is the pile identity (0..3 / 0..6). For Stock, Waste and Hand it only records
// the position the card was inserted at and is not a stable key.
type PlayfieldSpot struct {
	Area  PlayfieldArea `json:"area"`
	Index int           `json:"index"`
}

func FoundationSpot(i int) PlayfieldSpot { return PlayfieldSpot{Area: AreaFoundation, Index: i} }
func TableauSpot(i int) PlayfieldSpot    { return PlayfieldSpot{Area: AreaTableau, Index: i} }
func StockSpot() PlayfieldSpot           { return PlayfieldSpot{Area: AreaStock} }
func WasteSpot() PlayfieldSpot           { return PlayfieldSpot{Area: AreaWaste} }
func HandSpot() PlayfieldSpot            { return PlayfieldSpot{Area: AreaHand} }
func DeckSpot() PlayfieldSpot            { return PlayfieldSpot{Area: AreaDeck} }

// Pile drops the bookkeeping index of areas whose index is not a pile key.
func (s PlayfieldSpot) Pile() PlayfieldSpot {
	switch s.Area {
	case AreaFoundation, AreaTableau:
		return s
	default:
		return PlayfieldSpot{Area: s.Area}
	}
}

func (s PlayfieldSpot) String() string {
	switch s.Area {
	case AreaFoundation, AreaTableau:
		return fmt.Sprintf("%s[%d]", s.Area, s.Index)
	default:
		return s.Area.String()
	}
}

// ParseSpot accepts "stock", "waste", "hand", "f<n>"/"foundation<n>" and
// "t<n>"/"tableau<n>".
func ParseSpot(s string) (PlayfieldSpot, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "stock", "s":
		return StockSpot(), nil
	case "waste", "w":
		return WasteSpot(), nil
	case "hand":
		return HandSpot(), nil
	}

	var area PlayfieldArea
	var num string
	switch {
	case strings.HasPrefix(s, "foundation"):
		area, num = AreaFoundation, strings.TrimPrefix(s, "foundation")
	case strings.HasPrefix(s, "tableau"):
		area, num = AreaTableau, strings.TrimPrefix(s, "tableau")
	case strings.HasPrefix(s, "f"):
		area, num = AreaFoundation, s[1:]
	case strings.HasPrefix(s, "t"):
		area, num = AreaTableau, s[1:]
	default:
		return PlayfieldSpot{}, fmt.Errorf("%w: %q", ErrUnknownSpot, s)
	}

	num = strings.Trim(num, "[] ")
	i, err := strconv.Atoi(num)
	if err != nil {
		return PlayfieldSpot{}, fmt.Errorf("%w: %q", ErrUnknownSpot, s)
	}
	spot := PlayfieldSpot{Area: area, Index: i}
	if !spot.valid() {
		return PlayfieldSpot{}, fmt.Errorf("%w: %q", ErrUnknownSpot, s)
	}
	return spot, nil
}

func (s PlayfieldSpot) valid() bool {
	switch s.Area {
	case AreaFoundation:
		return s.Index >= 0 && s.Index < NumFoundations
	case AreaTableau:
		return s.Index >= 0 && s.Index < NumTableaus
	case AreaStock, AreaWaste, AreaHand, AreaDeck:
		return true
	default:
		return false
	}
}
