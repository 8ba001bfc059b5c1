package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"
)

// RpcResumeTableFn returns the caller's unfinished table, or creates one if
// there is none.
//
// Payload: unused.
// Returns: TableResponse JSON.
func RpcResumeTableFn(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", errNoUser
	}

	limit := 1
	authoritative := true
	minSize := 0
	maxSize := 1

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, ownerQuery(userID))
	if err != nil {
		logger.Error("RpcResumeTable [User:%s]: Failed to list tables: %v", userID, err)
		return "", err
	}

	if len(matches) > 0 {
		matchID := matches[0].GetMatchId()
		logger.Info("RpcResumeTable [User:%s]: Found table %s", userID, matchID)
		b, _ := json.Marshal(TableResponse{MatchID: matchID, IsNew: false})
		return string(b), nil
	}

	return RpcNewTableFn(ctx, logger, db, nk, payload)
}
