package terminal

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"klondike/internal/app"
	"klondike/internal/domain"
	"klondike/internal/scoring"

	"github.com/pterm/pterm"
)

// Session is one player at one table.
type Session struct {
	app    *app.Service
	game   *domain.Game
	keeper *scoring.Keeper
	logger *slog.Logger
}

// NewSession deals a table.
func NewSession(svc *app.Service, table scoring.Table, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	game, events, err := svc.StartGame()
	if err != nil {
		return nil, err
	}
	s := &Session{app: svc, game: game, keeper: scoring.NewKeeper(table), logger: logger}
	s.keeper.Apply(events)
	return s, nil
}

// Game exposes the table, mainly for tests.
func (s *Session) Game() *domain.Game { return s.game }

// Score returns the current deal's score.
func (s *Session) Score() int64 { return s.keeper.Score() }

// Board renders the current table.
func (s *Session) Board() string {
	snap, err := s.app.Snapshot(s.game)
	if err != nil {
		return pterm.Error.Sprintfln("%v", err)
	}
	out, err := RenderBoard(snap, s.keeper.Score())
	if err != nil {
		s.logger.Error("render board", "err", err)
		return ""
	}
	return out
}

// Step runs one input line and returns what to print. quit is true once the
// player asked to leave.
func (s *Session) Step(line string) (out string, quit bool) {
	cmd, err := ParseCommand(line)
	if err != nil {
		return pterm.Error.Sprintfln("%v", err), false
	}

	var events []app.Event
	switch cmd.Verb {
	case VerbQuit:
		return pterm.Info.Sprintfln("Final score %d after %d moves.", s.keeper.Score(), s.game.Moves()), true
	case VerbHelp:
		return Usage + "\n", false
	case VerbShow:
		return s.Board(), false
	case VerbStatus:
		counts, err := s.app.Status(s.game)
		if err != nil {
			return pterm.Error.Sprintfln("%v", err), false
		}
		return pterm.Info.Sprintfln("%s score=%d", counts, s.keeper.Score()), false
	case VerbDeal:
		events, err = s.app.Deal(s.game)
	case VerbDraw:
		events, err = s.app.Draw(s.game)
	case VerbRecycle:
		events, err = s.app.RecycleWaste(s.game)
	case VerbClick:
		events, err = s.app.ClickCard(s.game, cmd.Card)
	case VerbPlace:
		events, err = s.app.ClickSpot(s.game, cmd.Spot)
	case VerbReturn:
		events, err = s.app.ReturnHand(s.game)
	case VerbAuto:
		events, err = s.app.AutoMove(s.game, cmd.Card)
	case VerbAutoComplete:
		events, err = s.app.AutoComplete(s.game)
	case VerbHint:
		events, err = s.app.Hint(s.game)
	default:
		return pterm.Error.Sprintfln("unhandled command %d", cmd.Verb), false
	}
	if err != nil {
		if errors.Is(err, app.ErrInvariant) {
			s.logger.Error("table invariant broken", "command", line, "err", err)
		}
		return pterm.Error.Sprintfln("%v", err), false
	}

	delta := s.keeper.Apply(events)
	s.logger.Debug("command applied", "command", strings.TrimSpace(line), "events", len(events), "delta", delta)

	var b strings.Builder
	changed := false
	for _, ev := range events {
		b.WriteString(Describe(ev))
		if ev.Kind == app.EventCardsMoved || ev.Kind == app.EventGameDealt {
			changed = true
		}
	}
	if delta != 0 {
		b.WriteString(pterm.Info.Sprintfln("Score %+d, now %d.", delta, s.keeper.Score()))
	}
	if changed {
		b.WriteString(s.Board())
		b.WriteString("\n")
	}
	return b.String(), false
}

// Banner is the greeting printed before the first board.
func Banner() string {
	return fmt.Sprintf("Klondike. Type %s for commands.\n", pterm.LightCyan("help"))
}
