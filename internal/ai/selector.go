// Package ai picks moves for the computer player.
package ai

import (
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"github.com/jaminalder/petal-mancala/internal/domain"
)

// NoMove is returned by Choose when the side to move has no legal pit.
const NoMove = -1

// greedyPool is how many of the fullest pits the fallback picks from.
const greedyPool = 3

// Strategy names the rule that produced a decision.
type Strategy uint8

const (
	StrategyNone Strategy = iota
	StrategyExtraTurn
	StrategyCapture
	StrategyGreedy
)

func (s Strategy) String() string {
	switch s {
	case StrategyExtraTurn:
		return "extra_turn"
	case StrategyCapture:
		return "capture"
	case StrategyGreedy:
		return "greedy"
	default:
		return "none"
	}
}

// Rand is the random source used to break ties in the greedy fallback.
type Rand interface {
	Intn(n int) int
}

// Decision is a chosen pit together with the strategy that chose it.
type Decision struct {
	Pit      int
	Strategy Strategy
}

type Option func(*Selector)

// WithRand injects the random source, e.g. a stub in tests.
func WithRand(r Rand) Option {
	return func(s *Selector) {
		s.rng = r
	}
}

// WithSeed seeds the default random source.
func WithSeed(seed uint64) Option {
	return func(s *Selector) {
		s.rng = rand.New(rand.NewSource(seed))
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Selector) {
		s.logger = l
	}
}

// Selector chooses moves with a fixed priority: extra turn, then capture,
// then a random pick among the fullest pits. It is not safe for concurrent
// use because the random source is not.
type Selector struct {
	rng    Rand
	logger zerolog.Logger
}

// NewSelector creates a selector. Without WithRand or WithSeed it is seeded
// from the clock.
func NewSelector(options ...Option) *Selector {
	s := &Selector{
		logger: log.With().Str("component", "selector").Logger(),
	}
	for _, option := range options {
		option(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}
	return s
}

// Choose returns the pit to play for the side to move, or NoMove.
func (s *Selector) Choose(state domain.GameState) int {
	return s.Decide(state).Pit
}

// Decide returns the chosen pit and the strategy behind it. State is only
// read; candidate moves are simulated on copies of its board.
func (s *Selector) Decide(state domain.GameState) Decision {
	moves := domain.ValidMoves(state)

	d := s.decide(state, moves)
	s.logger.Debug().
		Str("side", state.Turn.String()).
		Ints("candidates", moves).
		Int("pit", d.Pit).
		Str("strategy", d.Strategy.String()).
		Msg("Computer move chosen")
	return d
}

func (s *Selector) decide(state domain.GameState, moves []int) Decision {
	if len(moves) == 0 {
		return Decision{Pit: NoMove, Strategy: StrategyNone}
	}

	sowings := make([]domain.Sowing, len(moves))
	for i, pit := range moves {
		sowings[i] = domain.Sow(state.Board, state.Turn, pit)
	}

	for i, sw := range sowings {
		if sw.ExtraTurn {
			return Decision{Pit: moves[i], Strategy: StrategyExtraTurn}
		}
	}
	for i, sw := range sowings {
		if sw.Captured {
			return Decision{Pit: moves[i], Strategy: StrategyCapture}
		}
	}

	top := fullest(state.Board, moves)
	return Decision{Pit: top[s.rng.Intn(len(top))], Strategy: StrategyGreedy}
}

// fullest returns up to greedyPool pits with the most stones, keeping
// enumeration order among equal counts.
func fullest(b domain.Board, moves []int) []int {
	ranked := append([]int(nil), moves...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return b[ranked[i]] > b[ranked[j]]
	})
	if len(ranked) > greedyPool {
		ranked = ranked[:greedyPool]
	}
	return ranked
}
