package ws

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"klondike/internal/app"
	"klondike/internal/config"

	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T, tokens *app.TokenService) (*Server, *httptest.Server) {
	t.Helper()
	zero := 0
	cfg := &config.GameConfig{ShuffleIterations: &zero, Seed: 42}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewServer(cfg, tokens, logger)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func dial(t *testing.T, ts *httptest.Server, query string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/table" + query
	return websocket.DefaultDialer.Dial(url, nil)
}

func readMessage(t *testing.T, conn *websocket.Conn) message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func expectTypes(t *testing.T, conn *websocket.Conn, want ...string) []message {
	t.Helper()
	got := make([]message, 0, len(want))
	for _, w := range want {
		msg := readMessage(t, conn)
		if msg.Type != w {
			t.Fatalf("message type = %q, want %q (payload %v)", msg.Type, w, msg.Payload)
		}
		got = append(got, msg)
	}
	return got
}

func send(t *testing.T, conn *websocket.Conn, req request) {
	t.Helper()
	if err := conn.WriteJSON(req); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestNewTablePlayAndResume(t *testing.T) {
	tokens := app.NewTokenService("secret", "klondike-test", time.Hour)
	s, ts := newTestServer(t, tokens)

	conn, _, err := dial(t, ts, "")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	msgs := expectTypes(t, conn, TypeWelcome, TypeSnapshot)
	tableID, _ := msgs[0].Payload["table_id"].(string)
	token, _ := msgs[0].Payload["token"].(string)
	if tableID == "" || token == "" {
		t.Fatalf("welcome = %v", msgs[0].Payload)
	}
	if s.Tables() != 1 {
		t.Fatalf("tables = %d, want 1", s.Tables())
	}

	send(t, conn, request{Op: OpClickCard, Card: "AC"})
	expectTypes(t, conn, string(app.EventCardsMoved))
	send(t, conn, request{Op: OpClickSpot, Spot: "f0"})
	msgs = expectTypes(t, conn, string(app.EventCardsMoved), string(app.EventMoveCompleted), TypeScore)
	if score := msgs[2].Payload["score"]; score != float64(10) {
		t.Fatalf("score = %v, want 10", score)
	}
	conn.Close()

	resumed, _, err := dial(t, ts, "?token="+token)
	if err != nil {
		t.Fatalf("resume dial: %v", err)
	}
	defer resumed.Close()
	msgs = expectTypes(t, resumed, TypeWelcome, TypeSnapshot)
	if msgs[0].Payload["table_id"] != tableID {
		t.Fatalf("resumed table %v, want %s", msgs[0].Payload["table_id"], tableID)
	}
	snap := msgs[1].Payload
	if snap["moves"] != float64(1) || snap["score"] != float64(10) {
		t.Fatalf("resumed snapshot moves=%v score=%v", snap["moves"], snap["score"])
	}
	foundation := snap["foundation"].([]interface{})
	if clubs := foundation[0].([]interface{}); len(clubs) != 1 {
		t.Fatalf("clubs foundation = %v", clubs)
	}

	send(t, resumed, request{Op: OpStatus})
	status := expectTypes(t, resumed, TypeStatus)[0].Payload
	if status["stock"] != float64(24) || status["won"] != false {
		t.Fatalf("status = %v", status)
	}
}

func TestResumeRefused(t *testing.T) {
	tokens := app.NewTokenService("secret", "klondike-test", time.Hour)
	_, ts := newTestServer(t, tokens)

	orphan, err := tokens.Issue("someone", "6f1c1f4e-0000-4000-8000-000000000000")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	other := app.NewTokenService("other-secret", "klondike-test", time.Hour)
	forged, err := other.Issue("someone", "6f1c1f4e-0000-4000-8000-000000000000")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{name: "Garbage", token: "not-a-token", status: http.StatusUnauthorized},
		{name: "WrongKey", token: forged, status: http.StatusUnauthorized},
		{name: "UnknownTable", token: orphan, status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, resp, err := dial(t, ts, "?token="+tt.token)
			if err == nil {
				conn.Close()
				t.Fatalf("dial succeeded")
			}
			if resp == nil || resp.StatusCode != tt.status {
				t.Fatalf("response = %v, want status %d", resp, tt.status)
			}
		})
	}
}

func TestNoTokensWithoutSecret(t *testing.T) {
	_, ts := newTestServer(t, nil)

	conn, _, err := dial(t, ts, "")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	welcome := expectTypes(t, conn, TypeWelcome, TypeSnapshot)[0]
	if _, ok := welcome.Payload["token"]; ok {
		t.Fatalf("token issued without a token service")
	}

	if _, resp, err := dial(t, ts, "?token=anything"); err == nil || resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("resume without token service was not refused")
	}
}

func TestSweep(t *testing.T) {
	s, _ := newTestServer(t, nil)
	idle, _, err := s.deal()
	if err != nil {
		t.Fatalf("deal: %v", err)
	}
	busy, _, err := s.deal()
	if err != nil {
		t.Fatalf("deal: %v", err)
	}
	busy.attach(&client{send: make(chan []byte, 1)})

	later := idle.lastSeen.Add(time.Hour)
	if n := s.Sweep(later, time.Minute); n != 1 {
		t.Fatalf("swept %d tables, want 1", n)
	}
	if s.Tables() != 1 {
		t.Fatalf("tables = %d, want 1", s.Tables())
	}
	if _, ok := s.tables[busy.id]; !ok {
		t.Fatalf("attached table was swept")
	}
}

func TestHandleRejectsBadRequests(t *testing.T) {
	s, _ := newTestServer(t, nil)
	tbl, _, err := s.deal()
	if err != nil {
		t.Fatalf("deal: %v", err)
	}

	tests := []struct {
		name string
		data string
	}{
		{name: "NotJSON", data: "draw"},
		{name: "UnknownOp", data: `{"op":"cheat"}`},
		{name: "BadCard", data: `{"op":"click_card","card":"1Z"}`},
		{name: "BadSpot", data: `{"op":"click_spot","spot":"t7"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			replies := tbl.handle([]byte(tt.data))
			if len(replies) != 1 || replies[0].Type != TypeError {
				t.Fatalf("replies = %+v", replies)
			}
			b, _ := json.Marshal(replies[0])
			if !strings.Contains(string(b), `"code":400`) {
				t.Fatalf("error body = %s", b)
			}
		})
	}
	if tbl.game.Moves() != 0 {
		t.Fatalf("bad requests changed the table")
	}
}

func TestHandleHintAndDraw(t *testing.T) {
	s, _ := newTestServer(t, nil)
	tbl, _, err := s.deal()
	if err != nil {
		t.Fatalf("deal: %v", err)
	}

	replies := tbl.handle([]byte(`{"op":"hint"}`))
	if len(replies) != 1 || replies[0].Type != string(app.EventHint) || replies[0].Payload["card"] != "AC" {
		t.Fatalf("hint replies = %+v", replies)
	}

	replies = tbl.handle([]byte(`{"op":"draw"}`))
	if len(replies) != 2 || replies[1].Type != string(app.EventMoveCompleted) {
		t.Fatalf("draw replies = %+v", replies)
	}
}
