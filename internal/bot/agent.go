package bot

import (
	"klondike/internal/domain"
)

// Agent wraps a brain with a display name for logs.
type Agent struct {
	Name     string
	Strategy Brain
}

// NewAgent builds an agent for level.
func NewAgent(name string, level AssistLevel) (*Agent, error) {
	brain, err := NewBrain(level)
	if err != nil {
		return nil, err
	}
	return &Agent{Name: name, Strategy: brain}, nil
}

// Play asks the agent for its next move. Agents only act from an empty hand.
func (a *Agent) Play(game *domain.Game) (Move, bool) {
	if a == nil || a.Strategy == nil || game == nil || game.Holding() {
		return Move{}, false
	}
	return a.Strategy.NextMove(game)
}
