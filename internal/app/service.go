package app

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"klondike/internal/bot"
	"klondike/internal/domain"
)

// Service contains Klondike use-cases operating on one table's domain state.
// It holds no table state itself; every method takes the game it acts on.
type Service struct {
	rng               domain.RandomSource
	shuffleIterations int
	autoFoundation    bool
	hinter            *bot.Agent
	finisher          bot.Brain
}

// Option configures a Service.
type Option func(*Service)

// WithShuffleIterations sets the shuffle passes for games this service creates.
func WithShuffleIterations(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.shuffleIterations = n
		}
	}
}

// WithAutoFoundation sends every card that can go home to its foundation
// after each completed move.
func WithAutoFoundation(on bool) Option {
	return func(s *Service) { s.autoFoundation = on }
}

// WithHintBrain replaces the brain used by Hint.
func WithHintBrain(b bot.Brain) Option {
	return func(s *Service) {
		if b != nil {
			s.hinter = &bot.Agent{Name: "hint", Strategy: b}
		}
	}
}

// WithHintAgent replaces the agent used by Hint.
func WithHintAgent(a *bot.Agent) Option {
	return func(s *Service) {
		if a != nil && a.Strategy != nil {
			s.hinter = a
		}
	}
}

// NewService constructs a Service with provided rng or a time-seeded default.
func NewService(rng domain.RandomSource, opts ...Option) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s := &Service{
		rng:               rng,
		shuffleIterations: domain.DefaultShuffleIterations,
		hinter:            &bot.Agent{Name: "hint", Strategy: &bot.HintBrain{}},
		finisher:          &bot.FoundationBrain{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var (
	ErrNoGame    = errors.New("no game on this table")
	ErrInvariant = errors.New("table invariant violated")
)

// NewGame builds an undealt game wired to the service's random source.
func (s *Service) NewGame() *domain.Game {
	return domain.NewGame(s.rng, domain.WithShuffleIterations(s.shuffleIterations))
}

// StartGame creates a game and deals it.
func (s *Service) StartGame() (*domain.Game, []Event, error) {
	game := s.NewGame()
	events, err := s.Deal(game)
	if err != nil {
		return nil, nil, err
	}
	return game, events, nil
}

// Deal resets the table and deals a fresh layout.
func (s *Service) Deal(game *domain.Game) (events []Event, err error) {
	if game == nil {
		return nil, ErrNoGame
	}
	defer recoverInvariant("deal", &err)

	placements, err := game.Deal()
	if err != nil {
		return nil, err
	}
	return []Event{{
		Kind:    EventGameDealt,
		Payload: GameDealtPayload{Placements: placements, Counts: game.Counts()},
	}}, nil
}

// ClickCard forwards a card click to the pickup/place protocol.
func (s *Service) ClickCard(game *domain.Game, sr domain.SuitRank) (events []Event, err error) {
	if game == nil {
		return nil, ErrNoGame
	}
	defer recoverInvariant("click card", &err)

	card, err := game.Card(sr)
	if err != nil {
		return nil, err
	}
	wasWon := game.IsWon()
	res, moveErr := game.OnClickCard(sr)
	return s.finish(game, wasWon, res, moveErr, card.Spot.Pile())
}

// ClickSpot forwards a click on an empty pile position.
func (s *Service) ClickSpot(game *domain.Game, spot domain.PlayfieldSpot) (events []Event, err error) {
	if game == nil {
		return nil, ErrNoGame
	}
	defer recoverInvariant("click spot", &err)

	wasWon := game.IsWon()
	res, moveErr := game.OnClickEmptySpot(spot)
	return s.finish(game, wasWon, res, moveErr, spot)
}

// Draw turns the stock's front card onto the waste.
func (s *Service) Draw(game *domain.Game) (events []Event, err error) {
	if game == nil {
		return nil, ErrNoGame
	}
	defer recoverInvariant("draw", &err)

	wasWon := game.IsWon()
	res, moveErr := game.Draw()
	return s.finish(game, wasWon, res, moveErr, domain.StockSpot())
}

// RecycleWaste moves the waste back onto the stock.
func (s *Service) RecycleWaste(game *domain.Game) (events []Event, err error) {
	if game == nil {
		return nil, ErrNoGame
	}
	defer recoverInvariant("recycle", &err)

	res := game.WasteToStock()
	if res.Kind == domain.MoveNone {
		return []Event{warning(domain.WasteSpot(), "waste is empty")}, nil
	}
	return s.finish(game, game.IsWon(), res, nil, domain.StockSpot())
}

// ReturnHand cancels a pickup.
func (s *Service) ReturnHand(game *domain.Game) (events []Event, err error) {
	if game == nil {
		return nil, ErrNoGame
	}
	defer recoverInvariant("return hand", &err)

	return moved(game.ReturnHand()), nil
}

// AutoMove picks up sr and places it at its first legal destination. When
// nothing fits, the hand is returned and a rejection is reported. Clicks that
// do not pick anything up (flips, draws) complete as usual.
func (s *Service) AutoMove(game *domain.Game, sr domain.SuitRank) (events []Event, err error) {
	if game == nil {
		return nil, ErrNoGame
	}
	defer recoverInvariant("auto move", &err)

	if game.Holding() {
		return []Event{rejected(game.Piles().Hand, domain.HandSpot(), "hand is not empty")}, nil
	}
	card, err := game.Card(sr)
	if err != nil {
		return nil, err
	}
	wasWon := game.IsWon()
	res, moveErr := game.OnClickCard(sr)
	if moveErr != nil || res.Kind != domain.MovePickup {
		return s.finish(game, wasWon, res, moveErr, card.Spot.Pile())
	}

	events = moved(res)
	spot, ok := game.SuggestHeld()
	if ok {
		placed, placeErr := game.Place(spot)
		if placeErr == nil {
			more, err := s.finish(game, wasWon, placed, nil, spot)
			return append(events, more...), err
		}
		if !errors.Is(placeErr, domain.ErrIllegalMove) {
			return nil, placeErr
		}
	}
	if !ok {
		spot = res.From
	}
	back := game.ReturnHand()
	events = append(events, moved(back)...)
	return append(events, rejected(back.Cards, spot, "no destination accepts the card")), nil
}

// AutoComplete sends cards home until no waste or tableau top can go.
func (s *Service) AutoComplete(game *domain.Game) (events []Event, err error) {
	if game == nil {
		return nil, ErrNoGame
	}
	defer recoverInvariant("auto complete", &err)

	if game.Holding() {
		return []Event{rejected(game.Piles().Hand, domain.HandSpot(), "hand is not empty")}, nil
	}
	return s.completeFoundations(game)
}

// Hint suggests the next action without changing the table. While holding it
// suggests where the held group can go.
func (s *Service) Hint(game *domain.Game) (events []Event, err error) {
	if game == nil {
		return nil, ErrNoGame
	}
	defer recoverInvariant("hint", &err)

	if game.Holding() {
		hand := game.Piles().Hand
		origin, _ := game.HandOrigin()
		spot, ok := game.SuggestHeld()
		return []Event{{Kind: EventHint, Payload: HintPayload{
			Action: bot.ActionPlace.String(),
			Card:   hand[0],
			From:   origin,
			To:     spot,
			Found:  ok,
		}}}, nil
	}

	m, ok := s.hinter.Play(game)
	return []Event{{Kind: EventHint, Payload: HintPayload{
		Action: m.Action.String(),
		Card:   m.Card,
		From:   m.From,
		To:     m.To,
		Found:  ok,
	}}}, nil
}

// Status returns the pile-count summary.
func (s *Service) Status(game *domain.Game) (domain.PileCounts, error) {
	if game == nil {
		return domain.PileCounts{}, ErrNoGame
	}
	return game.Counts(), nil
}

// Snapshot returns the full table view.
func (s *Service) Snapshot(game *domain.Game) (domain.Snapshot, error) {
	if game == nil {
		return domain.Snapshot{}, ErrNoGame
	}
	return game.Snapshot(), nil
}

// finish turns one protocol call into events. Illegal moves and empty piles
// become rejection and warning events; any other error is returned.
func (s *Service) finish(game *domain.Game, wasWon bool, res domain.Result, moveErr error, target domain.PlayfieldSpot) ([]Event, error) {
	switch {
	case errors.Is(moveErr, domain.ErrIllegalMove):
		held := game.Piles().Hand
		if len(held) == 0 {
			held = res.Cards
		}
		return []Event{rejected(held, target, moveErr.Error())}, nil
	case errors.Is(moveErr, domain.ErrEmptyPile):
		return []Event{warning(target, moveErr.Error())}, nil
	case moveErr != nil:
		return nil, moveErr
	}

	events := moved(res)
	if res.Kind.Completed() {
		events = append(events, Event{Kind: EventMoveCompleted, Payload: MoveCompletedPayload{
			Kind:  res.Kind,
			From:  res.From,
			To:    res.To,
			Cards: res.Cards,
			Moves: game.Moves(),
		}})
		if s.autoFoundation && !game.Holding() {
			more, err := s.completeFoundations(game)
			if err != nil {
				return nil, err
			}
			events = append(events, more...)
		}
	}
	if !wasWon && game.IsWon() && !hasKind(events, EventGameWon) {
		events = append(events, Event{Kind: EventGameWon, Payload: GameWonPayload{Moves: game.Moves()}})
	}
	return events, nil
}

func (s *Service) completeFoundations(game *domain.Game) ([]Event, error) {
	wasWon := game.IsWon()
	var events []Event
	for i := 0; i < MaxAutoCompleteMoves; i++ {
		m, ok := s.finisher.NextMove(game)
		if !ok {
			break
		}
		if _, err := game.OnClickCard(m.Card); err != nil {
			return nil, fmt.Errorf("auto complete pickup %s: %w", m.Card, err)
		}
		res, err := game.Place(m.To)
		if err != nil {
			game.ReturnHand()
			return nil, fmt.Errorf("auto complete place %s: %w", m.Card, err)
		}
		events = append(events, moved(res)...)
		events = append(events, Event{Kind: EventMoveCompleted, Payload: MoveCompletedPayload{
			Kind:  res.Kind,
			From:  res.From,
			To:    res.To,
			Cards: res.Cards,
			Moves: game.Moves(),
		}})
	}
	if !wasWon && game.IsWon() {
		events = append(events, Event{Kind: EventGameWon, Payload: GameWonPayload{Moves: game.Moves()}})
	}
	return events, nil
}

func moved(res domain.Result) []Event {
	if len(res.Placements) == 0 {
		return nil
	}
	return []Event{{Kind: EventCardsMoved, Payload: CardsMovedPayload{Placements: res.Placements}}}
}

func rejected(cards []domain.SuitRank, to domain.PlayfieldSpot, reason string) Event {
	return Event{Kind: EventMoveRejected, Payload: MoveRejectedPayload{Cards: cards, To: to, Reason: reason}}
}

func warning(spot domain.PlayfieldSpot, reason string) Event {
	return Event{Kind: EventWarning, Payload: WarningPayload{Spot: spot, Reason: reason}}
}

func hasKind(events []Event, kind EventKind) bool {
	for _, ev := range events {
		if ev.Kind == kind {
			return true
		}
	}
	return false
}

// recoverInvariant turns a domain invariant panic into an ErrInvariant error
// so only the triggering operation halts. Other panics propagate.
func recoverInvariant(op string, err *error) {
	r := recover()
	if r == nil {
		return
	}
	ie, ok := r.(*domain.InvariantError)
	if !ok {
		panic(r)
	}
	*err = fmt.Errorf("%w: %s: %v", ErrInvariant, op, ie)
}
