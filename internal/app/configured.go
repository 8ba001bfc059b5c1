package app

import (
	"fmt"

	"klondike/internal/bot"
	"klondike/internal/config"
	"klondike/internal/entropy"
)

// NewServiceFromConfig builds a Service with the random source, shuffle passes
// and assist brain named by cfg. A nil cfg gives the defaults.
func NewServiceFromConfig(cfg *config.GameConfig) (*Service, error) {
	rng, err := entropy.New(cfg.GetEntropy(), cfg.GetSeed())
	if err != nil {
		return nil, err
	}

	level, err := bot.ParseAssistLevel(cfg.GetAssist())
	if err != nil {
		return nil, fmt.Errorf("assist: %w", err)
	}
	hinter, err := bot.NewAgent(cfg.GetAssist(), level)
	if err != nil {
		return nil, err
	}

	return NewService(rng,
		WithShuffleIterations(cfg.GetShuffleIterations()),
		WithAutoFoundation(cfg.GetAutoMoveToFoundation()),
		WithHintAgent(hinter),
	), nil
}
