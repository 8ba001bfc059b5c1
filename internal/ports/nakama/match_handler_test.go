package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"klondike/internal/app"
	"klondike/internal/domain"
	"klondike/internal/scoring"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

type sentMessage struct {
	opCode    int64
	data      []byte
	presences []runtime.Presence
}

// errorLogger records Error lines and ignores the rest.
type errorLogger struct {
	noopLogger
	errors []string
}

func (l *errorLogger) Error(format string, v ...interface{}) {
	l.errors = append(l.errors, fmt.Sprintf(format, v...))
}

// mockDispatcher records match dispatcher calls for assertions. Op codes in
// failOn are refused with the mapped error.
type mockDispatcher struct {
	sent   []sentMessage
	labels []string
	failOn map[int64]error
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	if err := md.failOn[opCode]; err != nil {
		return err
	}
	md.sent = append(md.sent, sentMessage{opCode: opCode, data: append([]byte(nil), data...), presences: presences})
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return nil
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	return nil
}

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	md.labels = append(md.labels, label)
	return nil
}

func (md *mockDispatcher) opCodes() []int64 {
	out := make([]int64, len(md.sent))
	for i, m := range md.sent {
		out[i] = m.opCode
	}
	return out
}

// last returns the body of the most recent message with opCode.
func (md *mockDispatcher) last(t *testing.T, opCode int64) (*structpb.Struct, sentMessage) {
	t.Helper()
	for i := len(md.sent) - 1; i >= 0; i-- {
		if md.sent[i].opCode != opCode {
			continue
		}
		body := &structpb.Struct{}
		if err := proto.Unmarshal(md.sent[i].data, body); err != nil {
			t.Fatalf("unmarshal op %d: %v", opCode, err)
		}
		return body, md.sent[i]
	}
	t.Fatalf("no message with op %d in %v", opCode, md.opCodes())
	return nil, sentMessage{}
}

// fakePresence only answers the identity getters the handler uses.
type fakePresence struct {
	runtime.Presence
	userID string
}

func (p fakePresence) GetUserId() string    { return p.userID }
func (p fakePresence) GetUsername() string  { return p.userID }
func (p fakePresence) GetSessionId() string { return "session-" + p.userID }

type fakeMatchData struct {
	runtime.MatchData
	userID string
	opCode int64
	data   []byte
}

func (m fakeMatchData) GetUserId() string { return m.userID }
func (m fakeMatchData) GetOpCode() int64  { return m.opCode }
func (m fakeMatchData) GetData() []byte   { return m.data }

// fakeWallet implements walletStore over an in-memory map.
type fakeWallet struct {
	wallets map[string]map[string]int64
	updates int
}

func (w *fakeWallet) AccountGetId(ctx context.Context, userID string) (*api.Account, error) {
	b, _ := json.Marshal(w.wallets[userID])
	return &api.Account{Wallet: string(b)}, nil
}

func (w *fakeWallet) WalletUpdate(ctx context.Context, userID string, changeset map[string]int64, metadata map[string]interface{}, updateLedger bool) (map[string]int64, map[string]int64, error) {
	if w.wallets == nil {
		w.wallets = make(map[string]map[string]int64)
	}
	if _, ok := w.wallets[userID]; !ok {
		w.wallets[userID] = make(map[string]int64)
	}
	prev := make(map[string]int64)
	for k, v := range w.wallets[userID] {
		prev[k] = v
	}
	for k, v := range changeset {
		w.wallets[userID][k] += v
	}
	w.updates++
	return prev, w.wallets[userID], nil
}

const owner = "user-1"

// newTestState builds an unshuffled table owned by user-1, who is connected.
// Tableau[0] is the Ace of clubs alone.
func newTestState(t *testing.T) (*matchHandler, *MatchState, *mockDispatcher, *fakeWallet) {
	t.Helper()
	svc := app.NewService(rand.New(rand.NewSource(42)), app.WithShuffleIterations(0))
	game, events, err := svc.StartGame()
	if err != nil {
		t.Fatalf("start game error: %v", err)
	}
	keeper := scoring.NewKeeper(scoring.DefaultTable())
	keeper.Apply(events)

	wallet := &fakeWallet{}
	state := &MatchState{
		OwnerID:   owner,
		MatchID:   "match-1",
		IdleLimit: 3,
		Presences: map[string]runtime.Presence{owner: fakePresence{userID: owner}},
		App:       svc,
		Game:      game,
		Keeper:    keeper,
		Score:     NewNakamaScoreAdapter(wallet),
	}
	return &matchHandler{}, state, &mockDispatcher{}, wallet
}

func mustRequest(t *testing.T, fields map[string]interface{}) []byte {
	t.Helper()
	b, err := encodeRequest(fields)
	if err != nil {
		t.Fatalf("encode request: %v", err)
	}
	return b
}

func TestTableConfig(t *testing.T) {
	tests := []struct {
		name       string
		env        map[string]string
		wantShuf   int
		wantSeed   int64
		wantSource string
	}{
		{
			name:       "NoEnv",
			env:        nil,
			wantShuf:   3,
			wantSource: "math",
		},
		{
			name:       "Overrides",
			env:        map[string]string{"klondike_shuffle_iterations": "0", "klondike_seed": "99", "klondike_entropy": "crypto"},
			wantShuf:   0,
			wantSeed:   99,
			wantSource: "crypto",
		},
		{
			name:       "BadValuesIgnored",
			env:        map[string]string{"klondike_shuffle_iterations": "-2", "klondike_seed": "abc"},
			wantShuf:   3,
			wantSource: "math",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := tableConfig(nil, test.env, noopLogger{})
			if got := c.GetShuffleIterations(); got != test.wantShuf {
				t.Fatalf("shuffle iterations = %d, want %d", got, test.wantShuf)
			}
			if got := c.GetSeed(); got != test.wantSeed {
				t.Fatalf("seed = %d, want %d", got, test.wantSeed)
			}
			if got := c.GetEntropy(); got != test.wantSource {
				t.Fatalf("entropy = %q, want %q", got, test.wantSource)
			}
		})
	}
}

func TestMatchInit(t *testing.T) {
	ctx := context.WithValue(context.Background(), runtime.RUNTIME_CTX_ENV, map[string]string{
		"klondike_shuffle_iterations": "0",
		"klondike_idle_timeout_sec":   "30",
	})
	ctx = context.WithValue(ctx, runtime.RUNTIME_CTX_MATCH_ID, "match-9")

	handler := &matchHandler{}
	raw, rate, label := handler.MatchInit(ctx, noopLogger{}, nil, nil, map[string]interface{}{"owner": owner})
	state, ok := raw.(*MatchState)
	if !ok {
		t.Fatalf("MatchInit returned %T", raw)
	}
	if rate != 1 {
		t.Fatalf("tick rate = %d, want 1", rate)
	}
	if state.OwnerID != owner || state.MatchID != "match-9" || state.IdleLimit != 30 {
		t.Fatalf("state = owner %q match %q idle %d", state.OwnerID, state.MatchID, state.IdleLimit)
	}
	if state.Score != nil {
		t.Fatalf("score port set without a nakama module")
	}

	column, _ := state.Game.Pile(domain.TableauSpot(0))
	if top, _ := column.Top(); top.Code() != "AC" {
		t.Fatalf("unshuffled table has %s on tableau[0]", top)
	}

	var decoded map[string]string
	if err := json.Unmarshal([]byte(label), &decoded); err != nil {
		t.Fatalf("label %q is not JSON: %v", label, err)
	}
	if decoded["game"] != GameLabel || decoded["owner"] != owner || decoded["state"] != "playing" {
		t.Fatalf("label = %v", decoded)
	}
}

func TestMatchJoinAttempt(t *testing.T) {
	handler, state, dispatcher, _ := newTestState(t)

	tests := []struct {
		name  string
		owner string
		user  string
		want  bool
	}{
		{name: "Owner", owner: owner, user: owner, want: true},
		{name: "Stranger", owner: owner, user: "user-2", want: false},
		{name: "Unclaimed", owner: "", user: "user-2", want: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			state.OwnerID = test.owner
			_, ok, reason := handler.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, fakePresence{userID: test.user}, nil)
			if ok != test.want {
				t.Fatalf("join allowed = %t (%q), want %t", ok, reason, test.want)
			}
		})
	}
}

func TestMatchJoinClaimsAndSendsSnapshot(t *testing.T) {
	handler, state, dispatcher, wallet := newTestState(t)
	state.OwnerID = ""
	state.Presences = make(map[string]runtime.Presence)
	wallet.wallets = map[string]map[string]int64{"user-7": {WalletCurrencyPoints: 40}}

	handler.MatchJoin(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, []runtime.Presence{fakePresence{userID: "user-7"}})

	if state.OwnerID != "user-7" {
		t.Fatalf("owner = %q, want user-7", state.OwnerID)
	}
	if len(dispatcher.labels) != 1 {
		t.Fatalf("label updates = %d, want 1", len(dispatcher.labels))
	}

	body, msg := dispatcher.last(t, OpTableSnapshot)
	if len(msg.presences) != 1 || msg.presences[0].GetUserId() != "user-7" {
		t.Fatalf("snapshot was not sent privately")
	}
	if n := len(body.Fields["tableau"].GetListValue().GetValues()); n != domain.NumTableaus {
		t.Fatalf("snapshot tableau columns = %d", n)
	}
	if n := len(body.Fields["stock"].GetListValue().GetValues()); n != 24 {
		t.Fatalf("snapshot stock = %d, want 24", n)
	}
	if got := body.Fields["wallet_points"].GetNumberValue(); got != 40 {
		t.Fatalf("wallet points = %v, want 40", got)
	}
}

func TestHandleMessageScoresAndCredits(t *testing.T) {
	handler, state, dispatcher, wallet := newTestState(t)
	ctx := context.Background()

	handler.handleMessage(ctx, state, dispatcher, noopLogger{}, owner, OpClickCard, mustRequest(t, map[string]interface{}{"card": "AC"}))
	handler.handleMessage(ctx, state, dispatcher, noopLogger{}, owner, OpClickSpot, mustRequest(t, map[string]interface{}{"spot": "f0"}))

	want := []int64{OpCardsMoved, OpCardsMoved, OpMoveCompleted, OpScoreChanged}
	got := dispatcher.opCodes()
	if len(got) != len(want) {
		t.Fatalf("op codes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("op codes = %v, want %v", got, want)
		}
	}

	completed, _ := dispatcher.last(t, OpMoveCompleted)
	if completed.Fields["kind"].GetStringValue() != domain.MovePlace.String() {
		t.Fatalf("completed kind = %v", completed.Fields["kind"])
	}
	score, _ := dispatcher.last(t, OpScoreChanged)
	if score.Fields["score"].GetNumberValue() != 10 || score.Fields["delta"].GetNumberValue() != 10 {
		t.Fatalf("score event = %v", score.AsMap())
	}
	if wallet.wallets[owner][WalletCurrencyPoints] != 10 {
		t.Fatalf("wallet = %v, want 10 points", wallet.wallets[owner])
	}
}

func TestBroadcastFailuresAreLogged(t *testing.T) {
	tests := []struct {
		name   string
		opCode int64
		run    func(h *matchHandler, state *MatchState, d *mockDispatcher, l *errorLogger)
		want   string
	}{
		{"Score", OpScoreChanged, func(h *matchHandler, state *MatchState, d *mockDispatcher, l *errorLogger) {
			h.broadcastScore(state, d, l, 10)
		}, "broadcastScore"},
		{"Snapshot", OpTableSnapshot, func(h *matchHandler, state *MatchState, d *mockDispatcher, l *errorLogger) {
			h.sendSnapshot(context.Background(), state, d, l, owner)
		}, "sendSnapshot"},
		{"Error", OpGameError, func(h *matchHandler, state *MatchState, d *mockDispatcher, l *errorLogger) {
			h.sendError(state, d, l, owner, 400, "bad request")
		}, "sendError"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, state, dispatcher, _ := newTestState(t)
			dispatcher.failOn = map[int64]error{tt.opCode: errors.New("presence gone")}
			logger := &errorLogger{}

			tt.run(handler, state, dispatcher, logger)

			if len(logger.errors) != 1 {
				t.Fatalf("logged errors = %v, want one", logger.errors)
			}
			if got := logger.errors[0]; !strings.Contains(got, tt.want) || !strings.Contains(got, "presence gone") {
				t.Fatalf("logged %q, want a %s failure", got, tt.want)
			}
		})
	}
}

func TestDealResetsScoreButKeepsWallet(t *testing.T) {
	handler, state, dispatcher, wallet := newTestState(t)
	ctx := context.Background()

	handler.handleMessage(ctx, state, dispatcher, noopLogger{}, owner, OpAutoMove, mustRequest(t, map[string]interface{}{"card": "AC"}))
	if state.Keeper.Score() != 10 {
		t.Fatalf("score after auto move = %d, want 10", state.Keeper.Score())
	}

	handler.handleMessage(ctx, state, dispatcher, noopLogger{}, owner, OpDeal, nil)
	if state.Keeper.Score() != 0 {
		t.Fatalf("score after redeal = %d, want 0", state.Keeper.Score())
	}
	if wallet.wallets[owner][WalletCurrencyPoints] != 10 || wallet.updates != 1 {
		t.Fatalf("wallet = %v after %d updates", wallet.wallets[owner], wallet.updates)
	}
	if len(dispatcher.labels) != 1 {
		t.Fatalf("label updates = %d, want 1", len(dispatcher.labels))
	}
	dealt, _ := dispatcher.last(t, OpGameDealt)
	if n := len(dealt.Fields["placements"].GetListValue().GetValues()); n != domain.DeckSize {
		t.Fatalf("deal placements = %d", n)
	}
}

func TestHandleMessageRejections(t *testing.T) {
	tests := []struct {
		name     string
		sender   string
		opCode   int64
		data     map[string]interface{}
		wantOps  []int64
		wantCode float64
	}{
		{name: "Stranger", sender: "user-2", opCode: OpDraw},
		{name: "BadCard", sender: owner, opCode: OpClickCard, data: map[string]interface{}{"card": "ZZ"}, wantOps: []int64{OpGameError}, wantCode: 400},
		{name: "BadSpot", sender: owner, opCode: OpClickSpot, data: map[string]interface{}{"spot": "t9"}, wantOps: []int64{OpGameError}, wantCode: 400},
		{name: "UnknownOp", sender: owner, opCode: 77},
		{name: "EmptySpotWithoutHand", sender: owner, opCode: OpClickSpot, data: map[string]interface{}{"spot": "f1"}},
		{name: "EmptyRecycle", sender: owner, opCode: OpRecycle, wantOps: []int64{OpWarning}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			handler, state, dispatcher, _ := newTestState(t)
			var data []byte
			if test.data != nil {
				data = mustRequest(t, test.data)
			}
			handler.handleMessage(context.Background(), state, dispatcher, noopLogger{}, test.sender, test.opCode, data)

			got := dispatcher.opCodes()
			if len(got) != len(test.wantOps) {
				t.Fatalf("op codes = %v, want %v", got, test.wantOps)
			}
			for i := range got {
				if got[i] != test.wantOps[i] {
					t.Fatalf("op codes = %v, want %v", got, test.wantOps)
				}
			}
			if test.wantCode != 0 {
				body, _ := dispatcher.last(t, OpGameError)
				if body.Fields["code"].GetNumberValue() != test.wantCode {
					t.Fatalf("error code = %v", body.Fields["code"])
				}
			}
			if state.Game.Moves() != 0 {
				t.Fatalf("rejected request changed the table")
			}
		})
	}
}

func TestMatchLoopDispatchesMessages(t *testing.T) {
	handler, state, dispatcher, _ := newTestState(t)

	messages := []runtime.MatchData{
		fakeMatchData{userID: owner, opCode: OpDraw},
		fakeMatchData{userID: owner, opCode: OpHint},
	}
	out := handler.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 5, state, messages)
	if out == nil {
		t.Fatalf("loop closed a table with a connected owner")
	}
	if state.Tick != 5 || state.Game.Moves() != 1 {
		t.Fatalf("tick = %d, moves = %d", state.Tick, state.Game.Moves())
	}
	hint, _ := dispatcher.last(t, OpHintResult)
	if !hint.Fields["found"].GetBoolValue() {
		t.Fatalf("hint found nothing on a fresh table")
	}
}

func TestMatchLoopIdleTimeout(t *testing.T) {
	handler, state, dispatcher, _ := newTestState(t)
	handler.MatchLeave(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, []runtime.Presence{fakePresence{userID: owner}})

	for tick := int64(1); tick < state.IdleLimit; tick++ {
		if out := handler.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, tick, state, nil); out == nil {
			t.Fatalf("table closed at tick %d", tick)
		}
	}
	if out := handler.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, state.IdleLimit, state, nil); out != nil {
		t.Fatalf("idle table was not closed")
	}
}

func TestMatchSignalStatus(t *testing.T) {
	handler, state, dispatcher, _ := newTestState(t)

	_, reply := handler.MatchSignal(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, SignalStatus)
	var status tableStatus
	if err := json.Unmarshal([]byte(reply), &status); err != nil {
		t.Fatalf("status %q: %v", reply, err)
	}
	if status.Counts.Stock != 24 || status.Counts.Total() != domain.DeckSize {
		t.Fatalf("counts = %s", status.Counts)
	}
	if status.Partition != "ok" || status.OwnerID != owner || status.Won {
		t.Fatalf("status = %+v", status)
	}

	if _, reply := handler.MatchSignal(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, "reboot"); reply != "" {
		t.Fatalf("unknown signal answered %q", reply)
	}
}

func TestMatchLabel(t *testing.T) {
	_, state, _, _ := newTestState(t)

	label, err := matchLabel(state)
	if err != nil {
		t.Fatalf("matchLabel error: %v", err)
	}
	var decoded map[string]string
	if err := json.Unmarshal([]byte(label), &decoded); err != nil {
		t.Fatalf("label %q: %v", label, err)
	}
	want := map[string]string{"game": "klondike", "owner": owner, "state": "playing"}
	for k, v := range want {
		if decoded[k] != v {
			t.Fatalf("label[%s] = %q, want %q", k, decoded[k], v)
		}
	}
}
