package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Defaults used when no config file was loaded or a field is absent.
const (
	DefaultShuffleIterations = 3
	DefaultEntropy           = "math"
	DefaultAssist            = "hint"
	DefaultTokenIssuer       = "klondike"
	DefaultTokenTTL          = 24 * time.Hour
	DefaultListenAddr        = ":8080"
)

type GameConfig struct {
	// ShuffleIterations is a pointer so an explicit 0 (no shuffle) survives.
	ShuffleIterations *int   `json:"shuffle_iterations"`
	Seed              int64  `json:"seed"`
	Entropy           string `json:"entropy"`
	Assist            string `json:"assist"`
	// AutoMoveToFoundation sends every eligible card home after each move.
	AutoMoveToFoundation bool             `json:"auto_move_to_foundation"`
	TokenSecret          string           `json:"token_secret"`
	TokenIssuer          string           `json:"token_issuer"`
	TokenTTLSeconds      int              `json:"token_ttl_seconds"`
	ListenAddr           string           `json:"listen_addr"`
	Scoring              map[string]int64 `json:"scoring"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		c, err := Parse(data)
		if err != nil {
			loadErr = err
			return
		}
		cfg = c
	})
	return loadErr
}

// Parse decodes and validates a config document.
func Parse(data []byte) (*GameConfig, error) {
	var c GameConfig
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	if c.ShuffleIterations != nil && *c.ShuffleIterations < 0 {
		return nil, fmt.Errorf("shuffle_iterations must be >= 0, got %d", *c.ShuffleIterations)
	}
	switch c.Entropy {
	case "", "math", "crypto":
	default:
		return nil, fmt.Errorf("unknown entropy source %q", c.Entropy)
	}
	if c.TokenTTLSeconds < 0 {
		return nil, fmt.Errorf("token_ttl_seconds must be >= 0, got %d", c.TokenTTLSeconds)
	}
	return &c, nil
}

// GetGameConfig returns the global game configuration, or nil if none was loaded.
func GetGameConfig() *GameConfig {
	return cfg
}

// GetShuffleIterations returns the configured shuffle passes or the default.
func (c *GameConfig) GetShuffleIterations() int {
	if c == nil || c.ShuffleIterations == nil {
		return DefaultShuffleIterations
	}
	return *c.ShuffleIterations
}

// GetSeed returns the fixed seed; 0 means seed from the clock.
func (c *GameConfig) GetSeed() int64 {
	if c == nil {
		return 0
	}
	return c.Seed
}

func (c *GameConfig) GetEntropy() string {
	if c == nil || c.Entropy == "" {
		return DefaultEntropy
	}
	return c.Entropy
}

func (c *GameConfig) GetAssist() string {
	if c == nil || c.Assist == "" {
		return DefaultAssist
	}
	return c.Assist
}

func (c *GameConfig) GetAutoMoveToFoundation() bool {
	return c != nil && c.AutoMoveToFoundation
}

func (c *GameConfig) GetTokenSecret() string {
	if c == nil {
		return ""
	}
	return c.TokenSecret
}

func (c *GameConfig) GetTokenIssuer() string {
	if c == nil || c.TokenIssuer == "" {
		return DefaultTokenIssuer
	}
	return c.TokenIssuer
}

func (c *GameConfig) GetTokenTTL() time.Duration {
	if c == nil || c.TokenTTLSeconds == 0 {
		return DefaultTokenTTL
	}
	return time.Duration(c.TokenTTLSeconds) * time.Second
}

func (c *GameConfig) GetListenAddr() string {
	if c == nil || c.ListenAddr == "" {
		return DefaultListenAddr
	}
	return c.ListenAddr
}

// GetPoints returns the configured points for a scoring rule, or fallback.
func (c *GameConfig) GetPoints(rule string, fallback int64) int64 {
	if c == nil {
		return fallback
	}
	if v, ok := c.Scoring[rule]; ok {
		return v
	}
	return fallback
}
