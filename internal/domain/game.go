package domain

import "errors"

// Winner is the outcome of a finished game.
type Winner uint8

const (
	NoWinner Winner = iota
	WinnerA
	WinnerB
	Tie
)

func (w Winner) String() string {
	switch w {
	case WinnerA:
		return "A"
	case WinnerB:
		return "B"
	case Tie:
		return "tie"
	default:
		return "none"
	}
}

// GameState is an immutable snapshot of a Mancala match. Every move
// produces a new value; Apply never modifies its argument.
type GameState struct {
	Board    Board
	Turn     Side
	Over     bool
	Winner   Winner
	LastMove int
	Captured bool
}

// Errors returned by Validate.
var (
	ErrOutOfBounds = errors.New("out of bounds")
	ErrNotYourPit  = errors.New("pit does not belong to the side to move")
	ErrEmptyPit    = errors.New("pit is empty")
	ErrGameOver    = errors.New("game over")
)

// ErrNoMovesInPlay is the panic value of ValidMoves when a running game has
// no legal move. End-of-game detection must make this unreachable.
var ErrNoMovesInPlay = errors.New("no legal moves in a running game")

// New returns a new game with side A to move.
func New() GameState {
	return GameState{Board: NewBoard(), Turn: SideA, LastMove: NoPit}
}

// Validate reports why pit cannot be played, or nil if it can.
func Validate(s GameState, pit int) error {
	if s.Over {
		return ErrGameOver
	}
	if pit < 0 || pit >= BoardSize {
		return ErrOutOfBounds
	}
	if !s.Turn.Owns(pit) {
		return ErrNotYourPit
	}
	if s.Board[pit] == 0 {
		return ErrEmptyPit
	}
	return nil
}

// IsLegal reports whether the side to move may play pit.
func IsLegal(s GameState, pit int) bool { return Validate(s, pit) == nil }

// ValidMoves lists the legal pits for the side to move in ascending order.
// It is empty only for finished games.
func ValidMoves(s GameState) []int {
	if s.Over {
		return nil
	}
	first, last := s.Turn.Pits()
	moves := make([]int, 0, PitsPerSide)
	for pit := first; pit <= last; pit++ {
		if s.Board[pit] > 0 {
			moves = append(moves, pit)
		}
	}
	if len(moves) == 0 {
		panic(ErrNoMovesInPlay)
	}
	return moves
}

// Apply plays pit for the side to move and returns the resulting state.
// Illegal moves return s unchanged; callers check IsLegal first.
func Apply(s GameState, pit int) GameState {
	if !IsLegal(s, pit) {
		return s
	}
	sw := Sow(s.Board, s.Turn, pit)

	next := GameState{
		Board:    sw.Board,
		Turn:     s.Turn.Other(),
		LastMove: pit,
		Captured: sw.Captured,
	}
	if sw.ExtraTurn {
		next.Turn = s.Turn
	}

	if next.Board.SideEmpty(SideA) || next.Board.SideEmpty(SideB) {
		next.Board = harvest(next.Board)
		next.Over = true
		next.Winner = decide(next.Board)
	}
	return next
}

// harvest sweeps each side's remaining pit stones into its own store.
// At most one side still holds stones when this runs.
func harvest(b Board) Board {
	for _, side := range [2]Side{SideA, SideB} {
		first, last := side.Pits()
		for i := first; i <= last; i++ {
			b[side.Store()] += b[i]
			b[i] = 0
		}
	}
	return b
}

func decide(b Board) Winner {
	a, bs := b.Score(SideA), b.Score(SideB)
	switch {
	case a > bs:
		return WinnerA
	case bs > a:
		return WinnerB
	default:
		return Tie
	}
}
