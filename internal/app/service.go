package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jaminalder/petal-mancala/internal/ai"
	"github.com/jaminalder/petal-mancala/internal/domain"
)

// Errors exposed by the service layer.
var (
	ErrNotFound         = errors.New("game not found")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrNotComputersTurn = errors.New("not the computer's turn")
	ErrBusy             = errors.New("previous turn still in progress")
	ErrNoMove           = errors.New("computer has no move")
)

// subscriberBuffer bounds how many turns a subscriber may lag behind before
// it is dropped.
const subscriberBuffer = 4

// Session is the state tracked per game. The human always plays HumanSide;
// the computer plays the other side.
type Session struct {
	ID        string
	Game      domain.GameState
	HumanSide domain.Side
	// Busy is set when a turn is committed and cleared by Settle once the
	// presentation layer has finished showing it.
	Busy    bool
	Moves   int
	Created time.Time
	Updated time.Time
}

// ComputerSide returns the side played by the computer.
func (s Session) ComputerSide() domain.Side { return s.HumanSide.Other() }

// HumansTurn reports whether the game is waiting for human input.
func (s Session) HumansTurn() bool { return !s.Game.Over && s.Game.Turn == s.HumanSide }

// Turn describes one committed move.
type Turn struct {
	GameID   string
	Side     domain.Side
	Pit      int
	Path     []int
	Before   domain.GameState
	After    domain.GameState
	Strategy ai.Strategy // StrategyNone for human moves
}

// ExtraTurn reports whether the mover keeps the turn.
func (t Turn) ExtraTurn() bool { return !t.After.Over && t.After.Turn == t.Side }

type subscriber struct {
	ch        chan Turn
	closeOnce sync.Once
}

func (s *subscriber) close() { s.closeOnce.Do(func() { close(s.ch) }) }

type Option func(*Service)

// WithSelector sets the computer's move selector.
func WithSelector(sel *ai.Selector) Option {
	return func(s *Service) {
		s.selector = sel
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithClock replaces time.Now for session timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// Service owns the current state of every game and serializes moves on it.
// Domain values are immutable, so only the choice of the current state per
// session needs the lock.
type Service struct {
	mu       sync.Mutex
	games    map[string]*Session
	subs     map[string]map[*subscriber]struct{}
	selector *ai.Selector
	logger   zerolog.Logger
	now      func() time.Time
}

// NewService creates a service. Without WithSelector the computer uses a
// clock-seeded selector.
func NewService(options ...Option) *Service {
	s := &Service{
		games:  make(map[string]*Session),
		subs:   make(map[string]map[*subscriber]struct{}),
		logger: log.With().Str("component", "service").Logger(),
		now:    time.Now,
	}
	for _, option := range options {
		option(s)
	}
	if s.selector == nil {
		s.selector = ai.NewSelector()
	}
	return s
}

// CreateGame creates and registers a new game with the human on side A.
func (s *Service) CreateGame() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	now := s.now()
	gs := &Session{ID: id, Game: domain.New(), HumanSide: domain.SideA, Created: now, Updated: now}
	s.games[id] = gs
	s.logger.Info().Str("game_id", id).Msg("Game created")
	cp := *gs
	return &cp, nil
}

// Get returns a copy of the session if present.
func (s *Service) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return nil, false
	}
	cp := *gs
	return &cp, true
}

// Restart puts the session back to the initial position.
func (s *Service) Restart(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	gs.Game = domain.New()
	gs.Busy = false
	gs.Moves = 0
	gs.Updated = s.now()
	s.logger.Info().Str("game_id", id).Msg("Game restarted")
	cp := *gs
	return &cp, nil
}

// Settle marks the last committed turn as fully presented, allowing the
// next move.
func (s *Service) Settle(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return ErrNotFound
	}
	gs.Busy = false
	return nil
}

// Play validates and applies a human move.
func (s *Service) Play(id string, pit int) (Turn, error) {
	s.mu.Lock()
	gs, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return Turn{}, ErrNotFound
	}
	if gs.Busy {
		s.mu.Unlock()
		return Turn{}, ErrBusy
	}
	if !gs.Game.Over && gs.Game.Turn != gs.HumanSide {
		s.mu.Unlock()
		return Turn{}, ErrNotYourTurn
	}
	if err := domain.Validate(gs.Game, pit); err != nil {
		s.mu.Unlock()
		return Turn{}, err
	}
	return s.commitLocked(gs, pit, ai.StrategyNone)
}

// ComputerMove lets the selector pick and apply a move for the computer.
func (s *Service) ComputerMove(id string) (Turn, error) {
	s.mu.Lock()
	gs, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return Turn{}, ErrNotFound
	}
	if gs.Busy {
		s.mu.Unlock()
		return Turn{}, ErrBusy
	}
	if gs.Game.Over {
		s.mu.Unlock()
		return Turn{}, domain.ErrGameOver
	}
	if gs.Game.Turn != gs.ComputerSide() {
		s.mu.Unlock()
		return Turn{}, ErrNotComputersTurn
	}
	d := s.selector.Decide(gs.Game)
	if d.Pit == ai.NoMove {
		s.mu.Unlock()
		return Turn{}, ErrNoMove
	}
	return s.commitLocked(gs, d.Pit, d.Strategy)
}

// commitLocked applies pit to the session, publishes the turn and unlocks
// s.mu. The move must already be validated.
func (s *Service) commitLocked(gs *Session, pit int, strategy ai.Strategy) (Turn, error) {
	before := gs.Game
	turn := Turn{
		GameID:   gs.ID,
		Side:     before.Turn,
		Pit:      pit,
		Path:     domain.SowPath(before, pit),
		Before:   before,
		After:    domain.Apply(before, pit),
		Strategy: strategy,
	}
	if err := domain.CheckInvariants(turn.After); err != nil {
		s.mu.Unlock()
		s.logger.Error().Err(err).
			Str("game_id", gs.ID).
			Int("pit", pit).
			Stringer("board", before.Board).
			Msg("Move rejected, engine produced an invalid state")
		return Turn{}, fmt.Errorf("apply pit %d: %w", pit, err)
	}

	gs.Game = turn.After
	gs.Moves++
	gs.Busy = true
	gs.Updated = s.now()

	s.broadcastLocked(gs.ID, turn)
	s.mu.Unlock()

	s.logTurn(turn)
	return turn, nil
}

func (s *Service) logTurn(t Turn) {
	s.logger.Info().
		Str("game_id", t.GameID).
		Str("side", t.Side.String()).
		Int("pit", t.Pit).
		Str("strategy", t.Strategy.String()).
		Bool("captured", t.After.Captured).
		Bool("extra_turn", t.ExtraTurn()).
		Stringer("board", t.After.Board).
		Msg("Move applied")
	if t.After.Over {
		s.logger.Info().
			Str("game_id", t.GameID).
			Str("winner", t.After.Winner.String()).
			Int("score_a", t.After.Board.Score(domain.SideA)).
			Int("score_b", t.After.Board.Score(domain.SideB)).
			Msg("Game over")
	}
}

// broadcastLocked fans the turn out; slow subscribers are closed and
// dropped. Sends never block, so it runs under s.mu, which also keeps
// unsubscribe from closing a channel mid-send.
func (s *Service) broadcastLocked(id string, t Turn) {
	dropped := 0
	for sub := range s.subs[id] {
		select {
		case sub.ch <- t:
		default:
			sub.close()
			delete(s.subs[id], sub)
			dropped++
		}
	}
	if dropped > 0 {
		s.logger.Warn().Str("game_id", id).Int("dropped", dropped).Msg("Dropped slow subscribers")
	}
}

// Subscribe registers a subscriber for a game's turns. The channel closes
// when ctx is done, the unsubscribe func is called, or the subscriber
// falls behind.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan Turn, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[id]; !ok {
		return nil, nil, ErrNotFound
	}
	set := s.subs[id]
	if set == nil {
		set = make(map[*subscriber]struct{})
		s.subs[id] = set
	}
	sub := &subscriber{ch: make(chan Turn, subscriberBuffer)}
	set[sub] = struct{}{}

	unsubOnce := &sync.Once{}
	unsub := func() {
		unsubOnce.Do(func() {
			s.mu.Lock()
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
			}
			sub.close()
			s.mu.Unlock()
		})
	}
	go func() {
		<-ctx.Done()
		unsub()
	}()
	return sub.ch, unsub, nil
}
