package bot

import (
	"fmt"
)

// AssistLevel selects how much a brain is allowed to do.
type AssistLevel int

const (
	// AssistFoundation only sends cards home; used by auto-complete.
	AssistFoundation AssistLevel = iota
	// AssistHint returns the first useful move in scan order.
	AssistHint
	// AssistRanked scores every legal move and returns the best one.
	AssistRanked
)

// NewBrain creates a new assist brain for the specified level.
func NewBrain(level AssistLevel) (Brain, error) {
	switch level {
	case AssistFoundation:
		return &FoundationBrain{}, nil
	case AssistHint:
		return &HintBrain{}, nil
	case AssistRanked:
		return &RankedBrain{Tuning: DefaultTuning}, nil
	default:
		return nil, fmt.Errorf("unknown assist level: %d", level)
	}
}

// ParseAssistLevel maps a config or command string to a level.
func ParseAssistLevel(s string) (AssistLevel, error) {
	switch s {
	case "foundation":
		return AssistFoundation, nil
	case "hint", "":
		return AssistHint, nil
	case "ranked":
		return AssistRanked, nil
	default:
		return 0, fmt.Errorf("unknown assist level: %q", s)
	}
}
