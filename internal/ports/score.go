package ports

import "context"

// ScoreUpdate represents a single points change for a user.
type ScoreUpdate struct {
	UserID   string
	Delta    int64
	Metadata map[string]interface{}
}

// ScorePort defines the interface for persisting a player's solitaire points.
type ScorePort interface {
	// GetPoints retrieves the stored points total for a user.
	GetPoints(ctx context.Context, userID string) (int64, error)

	// CreditPoints applies point changes. Zero deltas are skipped.
	CreditPoints(ctx context.Context, updates []ScoreUpdate) error
}
