package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/heroiclabs/nakama-common/runtime"
)

var errNoUser = runtime.NewError("authenticated user required", 16)

// TableResponse is the payload returned to clients that open or resume a table.
type TableResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

// statusRequest is the klondike_status RPC payload.
type statusRequest struct {
	MatchID string `json:"match_id"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcNewTable, RpcNewTableFn); err != nil {
		return err
	}
	if err := initializer.RegisterRpc(RpcResumeTable, RpcResumeTableFn); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcTableStatus, RpcTableStatusFn)
}

// RpcNewTableFn deals a fresh table owned by the caller.
//
// Payload: unused.
// Returns: TableResponse JSON.
func RpcNewTableFn(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", errNoUser
	}

	matchID, err := nk.MatchCreate(ctx, MatchNameKlondike, map[string]interface{}{"owner": userID})
	if err != nil {
		logger.Error("RpcNewTable [User:%s]: Failed to create table: %v", userID, err)
		return "", err
	}

	logger.Info("RpcNewTable [User:%s]: Created table %s", userID, matchID)
	b, _ := json.Marshal(TableResponse{MatchID: matchID, IsNew: true})
	return string(b), nil
}

// RpcTableStatusFn returns the pile-count summary of a table.
//
// Payload: {"match_id": "..."}.
// Returns: the table status JSON produced by MatchSignal.
func RpcTableStatusFn(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req statusRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil || req.MatchID == "" {
		return "", runtime.NewError("payload must carry a match_id", 3)
	}

	status, err := nk.MatchSignal(ctx, req.MatchID, SignalStatus)
	if err != nil {
		logger.Warn("RpcTableStatus: Signal to %s failed: %v", req.MatchID, err)
		return "", err
	}
	if status == "" {
		return "", errors.New("table did not report a status")
	}
	return status, nil
}

// ownerQuery matches the caller's running tables.
func ownerQuery(userID string) string {
	return fmt.Sprintf(`+label.game:%s +label.owner:"%s" +label.state:playing`, GameLabel, userID)
}
