package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"klondike/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
)

// walletStore is the part of runtime.NakamaModule the score adapter needs.
type walletStore interface {
	AccountGetId(ctx context.Context, userID string) (*api.Account, error)
	WalletUpdate(ctx context.Context, userID string, changeset map[string]int64, metadata map[string]interface{}, updateLedger bool) (map[string]int64, map[string]int64, error)
}

// NakamaScoreAdapter implements ports.ScorePort on Nakama's wallet system.
type NakamaScoreAdapter struct {
	nk walletStore
}

var _ ports.ScorePort = (*NakamaScoreAdapter)(nil)

// NewNakamaScoreAdapter creates a new score adapter.
func NewNakamaScoreAdapter(nk walletStore) *NakamaScoreAdapter {
	return &NakamaScoreAdapter{nk: nk}
}

// GetPoints retrieves the stored points for a user.
func (a *NakamaScoreAdapter) GetPoints(ctx context.Context, userID string) (int64, error) {
	account, err := a.nk.AccountGetId(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get account: %w", err)
	}

	var wallet map[string]int64
	if account.GetWallet() != "" {
		if err := json.Unmarshal([]byte(account.GetWallet()), &wallet); err != nil {
			return 0, fmt.Errorf("failed to unmarshal wallet: %w", err)
		}
	}

	return wallet[WalletCurrencyPoints], nil
}

// CreditPoints applies every non-zero delta to the points currency.
func (a *NakamaScoreAdapter) CreditPoints(ctx context.Context, updates []ports.ScoreUpdate) error {
	for _, update := range updates {
		if update.Delta == 0 {
			continue
		}

		changes := map[string]int64{
			WalletCurrencyPoints: update.Delta,
		}

		_, _, err := a.nk.WalletUpdate(ctx, update.UserID, changes, update.Metadata, true)
		if err != nil {
			return fmt.Errorf("failed to update wallet for user %s: %w", update.UserID, err)
		}
	}
	return nil
}
