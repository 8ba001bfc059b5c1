package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Suit is one of the four card suits, ordinal 0..3.
type Suit uint8

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

// Rank is a card rank, ordinal 0 (Ace) .. 12 (King).
type Rank uint8

const (
	Ace Rank = iota
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
)

const (
	NumSuits       = 4
	NumRanks       = 13
	DeckSize       = NumSuits * NumRanks
	NumFoundations = NumSuits
	NumTableaus    = 7
)

var suitSymbols = [NumSuits]string{"♣", "♦", "♥", "♠"}
var suitLetters = [NumSuits]string{"C", "D", "H", "S"}
var suitNames = [NumSuits]string{"clubs", "diamonds", "hearts", "spades"}
var rankNames = [NumRanks]string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

// String returns the suit symbol.
func (s Suit) String() string {
	if s >= NumSuits {
		return "?"
	}
	return suitSymbols[s]
}

// Letter returns the single-letter suit code used by text clients.
func (s Suit) Letter() string {
	if s >= NumSuits {
		return "?"
	}
	return suitLetters[s]
}

// Name returns the lower-case suit name.
func (s Suit) Name() string {
	if s >= NumSuits {
		return "unknown"
	}
	return suitNames[s]
}

func (r Rank) String() string {
	if r >= NumRanks {
		return "?"
	}
	return rankNames[r]
}

// OppositeColor reports whether exactly one of a and b lies in the low bucket
// {Clubs, Diamonds}. This split is the only notion of color the rules use.
func OppositeColor(a, b Suit) bool {
	return (a < 2) != (b < 2)
}

// SuitRank is the value identity of one of the 52 cards. Every pile
// membership and lookup is keyed by it.
type SuitRank struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

// SuitRankFromOrdinal maps 0..51 onto suit-major, rank-minor identities.
func SuitRankFromOrdinal(i int) SuitRank {
	return SuitRank{Suit: Suit(i / NumRanks), Rank: Rank(i % NumRanks)}
}

// Ordinal is the canonical suit-major index of the card, 0..51.
func (sr SuitRank) Ordinal() int {
	return int(sr.Suit)*NumRanks + int(sr.Rank)
}

// Valid reports whether sr names one of the 52 cards.
func (sr SuitRank) Valid() bool {
	return sr.Suit < NumSuits && sr.Rank < NumRanks
}

func (sr SuitRank) String() string {
	return sr.Rank.String() + sr.Suit.String()
}

// Code is the ASCII form accepted by ParseSuitRank, e.g. "10H" or "QS".
func (sr SuitRank) Code() string {
	return sr.Rank.String() + sr.Suit.Letter()
}

// ParseSuitRank accepts rank-then-suit codes such as "AC", "10h", "q♠".
func ParseSuitRank(s string) (SuitRank, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return SuitRank{}, fmt.Errorf("%w: empty card code", ErrUnknownCard)
	}

	suit := -1
	var rankPart string
	for i := range suitLetters {
		if strings.HasSuffix(s, suitLetters[i]) {
			suit, rankPart = i, strings.TrimSuffix(s, suitLetters[i])
			break
		}
		if strings.HasSuffix(s, suitSymbols[i]) {
			suit, rankPart = i, strings.TrimSuffix(s, suitSymbols[i])
			break
		}
	}
	if suit < 0 {
		return SuitRank{}, fmt.Errorf("%w: bad suit in %q", ErrUnknownCard, s)
	}

	rank := -1
	switch rankPart {
	case "A", "1":
		rank = int(Ace)
	case "J":
		rank = int(Jack)
	case "Q":
		rank = int(Queen)
	case "K":
		rank = int(King)
	default:
		n, err := strconv.Atoi(rankPart)
		if err == nil && n >= 2 && n <= 10 {
			rank = n - 1
		}
	}
	if rank < 0 {
		return SuitRank{}, fmt.Errorf("%w: bad rank in %q", ErrUnknownCard, s)
	}

	return SuitRank{Suit: Suit(suit), Rank: Rank(rank)}, nil
}

// Card is the entity behind a SuitRank. Order is its deck-order ordinal
// (stacking/shuffle position only); Spot is the pile that currently owns it.
type Card struct {
	SuitRank
	Order  int
	FaceUp bool
	Spot   PlayfieldSpot
}
