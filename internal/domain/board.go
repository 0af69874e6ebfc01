package domain

import (
	"fmt"
	"strings"
)

// Board layout: 0..5 side A pits, 6 side A store, 7..12 side B pits, 13 side B store.
const (
	PitsPerSide   = 6
	InitialStones = 4
	BoardSize     = 2*PitsPerSide + 2
	TotalStones   = 2 * PitsPerSide * InitialStones

	StoreA = PitsPerSide
	StoreB = BoardSize - 1

	// NoPit marks the absence of a pit, e.g. LastMove before the first move.
	NoPit = -1
)

// Side identifies one of the two players.
type Side uint8

const (
	SideA Side = iota
	SideB
)

// Other returns the opposing side.
func (s Side) Other() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

// Store returns the index of the side's own store.
func (s Side) Store() int {
	if s == SideA {
		return StoreA
	}
	return StoreB
}

// OpponentStore returns the store this side skips while sowing.
func (s Side) OpponentStore() int { return s.Other().Store() }

// Pits returns the first and last pit index (inclusive) on this side.
func (s Side) Pits() (first, last int) {
	if s == SideA {
		return 0, StoreA - 1
	}
	return StoreA + 1, StoreB - 1
}

// Owns reports whether pit is one of this side's six playable pits.
func (s Side) Owns(pit int) bool {
	first, last := s.Pits()
	return pit >= first && pit <= last
}

func (s Side) String() string {
	if s == SideA {
		return "A"
	}
	return "B"
}

// Board holds the stone count of every pit and store. It is an array so
// copies never share storage.
type Board [BoardSize]int

// NewBoard returns the starting position: four stones per pit, empty stores.
func NewBoard() Board {
	var b Board
	for i := range b {
		if i != StoreA && i != StoreB {
			b[i] = InitialStones
		}
	}
	return b
}

// IsStore reports whether idx is either side's store.
func IsStore(idx int) bool { return idx == StoreA || idx == StoreB }

// Opposite returns the pit directly across the board.
func Opposite(pit int) int { return 2*PitsPerSide - pit }

// Stones returns the total number of stones on the board.
func (b Board) Stones() int {
	n := 0
	for _, v := range b {
		n += v
	}
	return n
}

// PitStones returns the number of stones left in a side's pits.
func (b Board) PitStones(s Side) int {
	first, last := s.Pits()
	n := 0
	for i := first; i <= last; i++ {
		n += b[i]
	}
	return n
}

// SideEmpty reports whether all six pits of s are empty.
func (b Board) SideEmpty(s Side) bool { return b.PitStones(s) == 0 }

// Score returns the stones in a side's store.
func (b Board) Score(s Side) int { return b[s.Store()] }

// String renders the board as seen from side A, e.g.
// "B(0) [4 4 4 4 4 4] [4 4 4 4 4 4] A(0)".
func (b Board) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "B(%d) [", b[StoreB])
	for i := StoreB - 1; i > StoreA; i-- {
		fmt.Fprintf(&sb, "%d", b[i])
		if i > StoreA+1 {
			sb.WriteByte(' ')
		}
	}
	sb.WriteString("] [")
	for i := 0; i < StoreA; i++ {
		fmt.Fprintf(&sb, "%d", b[i])
		if i < StoreA-1 {
			sb.WriteByte(' ')
		}
	}
	fmt.Fprintf(&sb, "] A(%d)", b[StoreA])
	return sb.String()
}
