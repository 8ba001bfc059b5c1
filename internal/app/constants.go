package app

import "klondike/internal/domain"

// MaxAutoCompleteMoves caps one auto-complete run; each card reaches a
// foundation at most once per run.
const MaxAutoCompleteMoves = domain.DeckSize
