package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrIllegalMove is returned when the validator rejects a placement. State is unchanged.
	ErrIllegalMove = errors.New("illegal move")
	// ErrEmptyPile is returned when a pickup targets an empty stock, waste or foundation.
	ErrEmptyPile = errors.New("empty pile")
	// ErrInvalidDealState is returned by Deal when the registry does not hold 52 distinct cards.
	ErrInvalidDealState = errors.New("invalid deal state")
	ErrUnknownCard      = errors.New("unknown card")
	ErrUnknownSpot      = errors.New("unknown playfield spot")
)

// InvariantError signals corrupted pile membership, e.g. a SuitRank missing
// from the identity lookup. The engine panics with it; callers at an
// operation boundary may recover it.
type InvariantError struct {
	Op     string
	Card   SuitRank
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated in %s (%s): %s", e.Op, e.Card, e.Detail)
}

func invariant(op string, sr SuitRank, format string, args ...any) {
	panic(&InvariantError{Op: op, Card: sr, Detail: fmt.Sprintf(format, args...)})
}
