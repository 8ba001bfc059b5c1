package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"klondike/internal/app"
	"klondike/internal/config"
	"klondike/internal/domain"
	"klondike/internal/ports"
	"klondike/internal/ports/wire"
	"klondike/internal/scoring"

	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// DefaultIdleTimeoutSec is how long a table with nobody connected survives.
	DefaultIdleTimeoutSec = 120

	tickRate = 1
)

// MatchState holds the authoritative runtime state for one solitaire table.
type MatchState struct {
	OwnerID   string                      `json:"owner_id"`   // User ID of the only player allowed to act
	MatchID   string                      `json:"match_id"`   // Nakama match id, used as wallet metadata
	Tick      int64                       `json:"tick"`       // Current tick of the match
	IdleTicks int64                       `json:"idle_ticks"` // Consecutive ticks with no presences
	IdleLimit int64                       `json:"idle_limit"` // Idle ticks before the table is closed
	Presences map[string]runtime.Presence `json:"-"`          // Map UserId -> Presence for targeted messaging
	App       *app.Service                `json:"-"`          // Klondike app service
	Game      *domain.Game                `json:"-"`          // The table's game, dealt at init
	Keeper    *scoring.Keeper             `json:"-"`          // Score for the current deal
	Score     ports.ScorePort             `json:"-"`          // Interface to the Nakama wallet
}

// tableStatus is the MatchSignal reply for SignalStatus.
type tableStatus struct {
	MatchID   string            `json:"match_id"`
	OwnerID   string            `json:"owner_id"`
	Counts    domain.PileCounts `json:"counts"`
	Score     int64             `json:"score"`
	Won       bool              `json:"won"`
	Holding   bool              `json:"holding"`
	Partition string            `json:"partition"`
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// tableConfig copies the loaded config and applies the runtime env overrides.
func tableConfig(base *config.GameConfig, env map[string]string, logger runtime.Logger) config.GameConfig {
	var c config.GameConfig
	if base != nil {
		c = *base
	}
	if val, ok := env["klondike_shuffle_iterations"]; ok {
		if i, err := strconv.Atoi(val); err == nil && i >= 0 {
			c.ShuffleIterations = &i
		} else {
			logger.Warn("MatchInit: Ignoring klondike_shuffle_iterations=%q", val)
		}
	}
	if val, ok := env["klondike_seed"]; ok {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			c.Seed = i
		} else {
			logger.Warn("MatchInit: Ignoring klondike_seed=%q", val)
		}
	}
	if val, ok := env["klondike_entropy"]; ok {
		c.Entropy = val
	}
	return c
}

// MatchInit is called when the match is created. The table is dealt here.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing klondike table.")

	if err := config.LoadGameConfig(ConfigPath); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	cfg := tableConfig(config.GetGameConfig(), env, logger)

	svc, err := app.NewServiceFromConfig(&cfg)
	if err != nil {
		logger.Error("MatchInit: Invalid table configuration: %v", err)
		return nil, 0, ""
	}
	game, events, err := svc.StartGame()
	if err != nil {
		logger.Error("MatchInit: Failed to deal: %v", err)
		return nil, 0, ""
	}

	state := &MatchState{
		Tick:      time.Now().Unix(),
		IdleLimit: DefaultIdleTimeoutSec * tickRate,
		Presences: make(map[string]runtime.Presence),
		App:       svc,
		Game:      game,
		Keeper:    scoring.NewKeeper(scoring.TableFromConfig(&cfg)),
	}
	state.Keeper.Apply(events)
	if owner, ok := params["owner"].(string); ok {
		state.OwnerID = owner
	}
	if id, ok := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string); ok {
		state.MatchID = id
	}
	if nk != nil {
		state.Score = NewNakamaScoreAdapter(nk)
	}
	if val, ok := env["klondike_idle_timeout_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil && i > 0 {
			state.IdleLimit = int64(i * tickRate)
		}
	}

	label, err := matchLabel(state)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	logger.Info("MatchInit: Table dealt for owner %q (shuffle_iterations=%d).", state.OwnerID, cfg.GetShuffleIterations())
	return state, tickRate, label
}

// MatchJoinAttempt admits the table owner only. A table created without an
// owner is claimed by its first joiner.
func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	if matchState.OwnerID != "" && presence.GetUserId() != matchState.OwnerID {
		logger.Debug("MatchJoinAttempt: User %s refused, table belongs to %s.", presence.GetUserId(), matchState.OwnerID)
		return state, false, "Table is private"
	}
	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	ownerChanged := false
	for _, p := range presences {
		if matchState.OwnerID == "" {
			matchState.OwnerID = p.GetUserId()
			ownerChanged = true
			logger.Debug("MatchJoin: Owner set to %s.", p.GetUserId())
		}
		matchState.Presences[p.GetUserId()] = p
		matchState.IdleTicks = 0
	}
	if ownerChanged {
		mh.updateLabel(matchState, dispatcher, logger)
	}

	for _, p := range presences {
		mh.sendSnapshot(ctx, matchState, dispatcher, logger, p.GetUserId())
	}

	return matchState
}

// MatchLeave is called when one or more presences leave. The table stays up
// for IdleLimit ticks so the owner can resume.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())
		logger.Debug("MatchLeave: User %s left.", p.GetUserId())
	}
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	if len(matchState.Presences) == 0 {
		matchState.IdleTicks++
		if matchState.IdleTicks >= matchState.IdleLimit {
			logger.Info("MatchLoop: Closing table idle for %d ticks.", matchState.IdleTicks)
			return nil
		}
	} else {
		matchState.IdleTicks = 0
	}

	for _, msg := range messages {
		mh.handleMessage(ctx, matchState, dispatcher, logger, msg.GetUserId(), msg.GetOpCode(), msg.GetData())
	}

	return matchState
}

// handleMessage runs one client request against the table.
func (mh *matchHandler) handleMessage(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, senderID string, opCode int64, data []byte) {
	if senderID != state.OwnerID {
		logger.Warn("handleMessage: User %s is not the owner of this table.", senderID)
		mh.sendError(state, dispatcher, logger, senderID, 403, "not the table owner")
		return
	}

	req, err := decodeRequest(data)
	if err != nil {
		logger.Warn("handleMessage: Op %d from %s: %v", opCode, senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	var events []app.Event
	switch opCode {
	case OpDeal:
		events, err = state.App.Deal(state.Game)
	case OpClickCard, OpAutoMove:
		sr, perr := req.card()
		if perr != nil {
			logger.Warn("handleMessage: Op %d from %s: %v", opCode, senderID, perr)
			mh.sendError(state, dispatcher, logger, senderID, 400, perr.Error())
			return
		}
		if opCode == OpClickCard {
			events, err = state.App.ClickCard(state.Game, sr)
		} else {
			events, err = state.App.AutoMove(state.Game, sr)
		}
	case OpClickSpot:
		spot, perr := req.spot()
		if perr != nil {
			logger.Warn("handleMessage: Op %d from %s: %v", opCode, senderID, perr)
			mh.sendError(state, dispatcher, logger, senderID, 400, perr.Error())
			return
		}
		events, err = state.App.ClickSpot(state.Game, spot)
	case OpDraw:
		events, err = state.App.Draw(state.Game)
	case OpRecycle:
		events, err = state.App.RecycleWaste(state.Game)
	case OpReturnHand:
		events, err = state.App.ReturnHand(state.Game)
	case OpAutoComplete:
		events, err = state.App.AutoComplete(state.Game)
	case OpHint:
		events, err = state.App.Hint(state.Game)
	case OpSnapshot:
		mh.sendSnapshot(ctx, state, dispatcher, logger, senderID)
		return
	default:
		logger.Warn("handleMessage: Unknown opcode received: %d", opCode)
		return
	}

	if err != nil {
		code := 400
		if errors.Is(err, app.ErrInvariant) {
			code = 500
			logger.Error("handleMessage: Op %d from %s broke the table: %v", opCode, senderID, err)
		} else {
			logger.Warn("handleMessage: Op %d from %s failed: %v", opCode, senderID, err)
		}
		mh.sendError(state, dispatcher, logger, senderID, code, err.Error())
		return
	}

	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
}

// dispatchEvents scores a batch of app events and broadcasts each of them.
func (mh *matchHandler) dispatchEvents(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	var credited int64
	scoreChanged := false
	labelChanged := false

	for _, ev := range events {
		delta := state.Keeper.Apply([]app.Event{ev})
		if delta != 0 {
			scoreChanged = true
		}

		switch ev.Kind {
		case app.EventGameDealt:
			// A redeal resets the table score; the wallet keeps what was earned.
			labelChanged = true
			scoreChanged = true
			delta = 0
		case app.EventGameWon:
			labelChanged = true
			logger.Info("dispatchEvents: Table %s won in %d moves.", state.MatchID, state.Game.Moves())
		case app.EventMoveRejected:
			p := ev.Payload.(app.MoveRejectedPayload)
			logger.Debug("dispatchEvents: Rejected %v onto %s: %s", p.Cards, p.To, p.Reason)
		}
		credited += delta

		opCode, body, err := eventToStruct(ev)
		if err != nil {
			logger.Error("dispatchEvents: %v", err)
			continue
		}
		bytes, err := proto.Marshal(body)
		if err != nil {
			logger.Error("dispatchEvents: Failed to marshal event %s: %v", ev.Kind, err)
			continue
		}
		if err := dispatcher.BroadcastMessage(opCode, bytes, nil, nil, true); err != nil {
			logger.Error("dispatchEvents: Failed to broadcast %s: %v", ev.Kind, err)
		}
	}

	if credited != 0 && state.Score != nil && state.OwnerID != "" {
		update := ports.ScoreUpdate{
			UserID: state.OwnerID,
			Delta:  credited,
			Metadata: map[string]interface{}{
				"match_id": state.MatchID,
				"reason":   "klondike_move",
			},
		}
		if err := state.Score.CreditPoints(ctx, []ports.ScoreUpdate{update}); err != nil {
			logger.Error("dispatchEvents: Failed to credit %d points: %v", credited, err)
		}
	}
	if scoreChanged {
		mh.broadcastScore(state, dispatcher, logger, credited)
	}
	if labelChanged {
		mh.updateLabel(state, dispatcher, logger)
	}
}

func (mh *matchHandler) broadcastScore(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, delta int64) {
	body, err := structpb.NewStruct(wire.Score(state.Keeper.Score(), delta))
	if err != nil {
		logger.Error("broadcastScore: %v", err)
		return
	}
	bytes, err := proto.Marshal(body)
	if err != nil {
		logger.Error("broadcastScore: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpScoreChanged, bytes, nil, nil, true); err != nil {
		logger.Error("broadcastScore: Failed to broadcast: %v", err)
	}
}

// sendSnapshot sends the whole table to one user.
func (mh *matchHandler) sendSnapshot(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string) {
	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("sendSnapshot: Presence not found for %s", userID)
		return
	}

	snapshot, err := state.App.Snapshot(state.Game)
	if err != nil {
		logger.Error("sendSnapshot: %v", err)
		return
	}
	body, err := snapshotToStruct(snapshot, state.Keeper.Score())
	if err != nil {
		logger.Error("sendSnapshot: Failed to encode snapshot: %v", err)
		return
	}
	if state.Score != nil {
		if points, err := state.Score.GetPoints(ctx, userID); err == nil {
			body.Fields["wallet_points"] = structpb.NewNumberValue(float64(points))
		} else {
			logger.Warn("sendSnapshot: Could not read points for %s: %v", userID, err)
		}
	}

	bytes, err := proto.Marshal(body)
	if err != nil {
		logger.Error("sendSnapshot: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpTableSnapshot, bytes, []runtime.Presence{presence}, nil, true); err != nil {
		logger.Error("sendSnapshot: Failed to send to %s: %v", userID, err)
	}
}

// sendError sends a game error to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	body, err := structpb.NewStruct(wire.Error(code, message))
	if err != nil {
		logger.Error("Failed to encode game error: %v", err)
		return
	}
	bytes, err := proto.Marshal(body)
	if err != nil {
		logger.Error("Failed to marshal game error: %v", err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}

	if err := dispatcher.BroadcastMessage(OpGameError, bytes, []runtime.Presence{presence}, nil, true); err != nil {
		logger.Error("sendError: Failed to send to %s: %v", userID, err)
	}
}

// matchLabel renders the label RPCs search on.
func matchLabel(state *MatchState) (string, error) {
	phase := "playing"
	if state.Game != nil && state.Game.IsWon() {
		phase = "won"
	}
	label, err := structpb.NewStruct(map[string]interface{}{
		"game":  GameLabel,
		"owner": state.OwnerID,
		"state": phase,
	})
	if err != nil {
		return "", err
	}
	labelBytes, err := (&protojson.MarshalOptions{EmitUnpopulated: true}).Marshal(label)
	if err != nil {
		return "", err
	}
	return string(labelBytes), nil
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := matchLabel(state)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Table closing with %d seconds grace", graceSeconds)
	return state
}

// MatchSignal answers SignalStatus with the table's status as JSON.
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, ""
	}
	if data != SignalStatus {
		logger.Warn("MatchSignal: Unknown signal %q", data)
		return matchState, ""
	}

	counts, err := matchState.App.Status(matchState.Game)
	if err != nil {
		logger.Error("MatchSignal: %v", err)
		return matchState, ""
	}
	status := tableStatus{
		MatchID:   matchState.MatchID,
		OwnerID:   matchState.OwnerID,
		Counts:    counts,
		Score:     matchState.Keeper.Score(),
		Won:       matchState.Game.IsWon(),
		Holding:   matchState.Game.Holding(),
		Partition: "ok",
	}
	if err := matchState.Game.CheckPartition(); err != nil {
		logger.Error("MatchSignal: Table %s is inconsistent: %v", matchState.MatchID, err)
		status.Partition = err.Error()
	}

	b, err := json.Marshal(status)
	if err != nil {
		logger.Error("MatchSignal: Failed to marshal status: %v", err)
		return matchState, ""
	}
	return matchState, string(b)
}
