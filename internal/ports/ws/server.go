// Package ws serves one Klondike table per WebSocket connection. A new
// connection deals a table and receives a signed token; reconnecting with
// ?token= resumes that table while it is still held by the server.
package ws

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"klondike/internal/app"
	"klondike/internal/config"
	"klondike/internal/scoring"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var (
	ErrTableGone  = errors.New("table no longer exists")
	ErrNotOwner   = errors.New("token does not own this table")
	ErrNoResuming = errors.New("server issues no resume tokens")
)

// Server owns every live table.
type Server struct {
	upgrader websocket.Upgrader
	cfg      *config.GameConfig
	tokens   *app.TokenService
	logger   *slog.Logger

	mu     sync.RWMutex
	tables map[uuid.UUID]*table
}

// NewServer builds a server. tokens may be nil, in which case tables cannot be
// resumed after a disconnect.
func NewServer(cfg *config.GameConfig, tokens *app.TokenService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		cfg:    cfg,
		tokens: tokens,
		logger: logger,
		tables: make(map[uuid.UUID]*table),
	}
}

// Handler mounts the table endpoint and a health check.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/table", s)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

// Tables returns the number of live tables.
func (s *Server) Tables() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables)
}

// ServeHTTP upgrades the request and attaches it to a new or resumed table.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var (
		t     *table
		token string
		err   error
	)
	if token = r.URL.Query().Get("token"); token != "" {
		t, err = s.resume(token)
	} else {
		t, token, err = s.deal()
	}
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, app.ErrTokenInvalid), errors.Is(err, ErrNoResuming):
			status = http.StatusUnauthorized
		case errors.Is(err, ErrNotOwner):
			status = http.StatusForbidden
		case errors.Is(err, ErrTableGone):
			status = http.StatusNotFound
		}
		s.logger.Warn("table request refused", "status", status, "err", err)
		http.Error(w, err.Error(), status)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		s.logger.Debug("failed to upgrade connection", "err", err)
		return
	}

	c := newClient(conn, t, s.logger)
	t.attach(c)
	welcome := message{Type: TypeWelcome, Payload: map[string]interface{}{"table_id": t.id.String()}}
	if token != "" {
		welcome.Payload["token"] = token
	}
	c.queue(welcome)
	t.mu.Lock()
	c.queue(t.snapshot())
	t.mu.Unlock()

	s.logger.Info("client attached", "table", t.id, "owner", t.owner)
	go c.readPump()
	go c.writePump()
}

// deal opens a new table and its resume token.
func (s *Server) deal() (*table, string, error) {
	svc, err := app.NewServiceFromConfig(s.cfg)
	if err != nil {
		return nil, "", err
	}
	game, events, err := svc.StartGame()
	if err != nil {
		return nil, "", err
	}
	t := &table{
		id:       uuid.New(),
		owner:    uuid.NewString(),
		app:      svc,
		game:     game,
		keeper:   scoring.NewKeeper(scoring.TableFromConfig(s.cfg)),
		lastSeen: time.Now(),
	}
	t.keeper.Apply(events)

	var token string
	if s.tokens != nil {
		if token, err = s.tokens.Issue(t.owner, t.id.String()); err != nil {
			return nil, "", err
		}
	}

	s.mu.Lock()
	s.tables[t.id] = t
	s.mu.Unlock()
	s.logger.Info("table dealt", "table", t.id)
	return t, token, nil
}

// resume finds the table a token was issued for.
func (s *Server) resume(token string) (*table, error) {
	if s.tokens == nil {
		return nil, ErrNoResuming
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(claims.TableID)
	if err != nil {
		return nil, app.ErrTokenInvalid
	}

	s.mu.RLock()
	t, ok := s.tables[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrTableGone
	}
	if t.owner != claims.Subject {
		return nil, ErrNotOwner
	}
	return t, nil
}

// Sweep drops tables with no client that have been idle longer than maxIdle
// and returns how many went.
func (s *Server) Sweep(now time.Time, maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, t := range s.tables {
		since, idle := t.idleSince()
		if idle && now.Sub(since) > maxIdle {
			delete(s.tables, id)
			n++
		}
	}
	if n > 0 {
		s.logger.Info("swept idle tables", "count", n, "remaining", len(s.tables))
	}
	return n
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *Server) RunSweeper(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Sweep(now, maxIdle)
		}
	}
}
