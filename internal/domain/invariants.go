package domain

import (
	"errors"
	"fmt"
)

// ErrCorruptState wraps every failure reported by CheckInvariants.
var ErrCorruptState = errors.New("corrupt game state")

// CheckInvariants verifies properties every reachable state has: no
// negative counts, exactly TotalStones on the board, and a game that is
// over exactly when a side's pits have been harvested.
func CheckInvariants(s GameState) error {
	for i, v := range s.Board {
		if v < 0 {
			return fmt.Errorf("%w: pit %d holds %d stones", ErrCorruptState, i, v)
		}
	}
	if n := s.Board.Stones(); n != TotalStones {
		return fmt.Errorf("%w: %d stones on board, want %d", ErrCorruptState, n, TotalStones)
	}

	emptyA, emptyB := s.Board.SideEmpty(SideA), s.Board.SideEmpty(SideB)
	switch {
	case s.Over && !(emptyA && emptyB):
		return fmt.Errorf("%w: game over with stones left in pits", ErrCorruptState)
	case !s.Over && (emptyA || emptyB):
		return fmt.Errorf("%w: side empty but game still running", ErrCorruptState)
	case s.Over && s.Winner != decide(s.Board):
		return fmt.Errorf("%w: winner %s does not match stores %d-%d",
			ErrCorruptState, s.Winner, s.Board.Score(SideA), s.Board.Score(SideB))
	case !s.Over && s.Winner != NoWinner:
		return fmt.Errorf("%w: winner %s set in a running game", ErrCorruptState, s.Winner)
	}
	return nil
}
