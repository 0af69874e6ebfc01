package domain

// Sowing is the result of distributing one pit's stones, before turn
// passing and end-of-game checks.
type Sowing struct {
	Board     Board
	Path      []int // indices visited, one per stone
	Landing   int   // last index visited
	ExtraTurn bool  // landed in the mover's store
	Captured  bool  // landed in an empty own pit opposite a non-empty pit
}

// Sow picks up the stones in pit and distributes them for mover, skipping
// the opponent's store, then resolves a capture. b is not modified. The
// caller is responsible for pit being a legal, non-empty pit of mover.
func Sow(b Board, mover Side, pit int) Sowing {
	path := sowPath(b[pit], mover, pit)
	b[pit] = 0
	for _, idx := range path {
		b[idx]++
	}

	sw := Sowing{Board: b, Path: path, Landing: pit}
	if len(path) == 0 {
		return sw
	}
	sw.Landing = path[len(path)-1]
	sw.ExtraTurn = sw.Landing == mover.Store()

	if !IsStore(sw.Landing) && mover.Owns(sw.Landing) && b[sw.Landing] == 1 {
		opp := Opposite(sw.Landing)
		if b[opp] > 0 {
			b[mover.Store()] += b[sw.Landing] + b[opp]
			b[sw.Landing] = 0
			b[opp] = 0
			sw.Board = b
			sw.Captured = true
		}
	}
	return sw
}

// SowPath returns the indices the stones of pit pass through, in order.
// It returns nil if pit is not a legal move in s.
func SowPath(s GameState, pit int) []int {
	if !IsLegal(s, pit) {
		return nil
	}
	return sowPath(s.Board[pit], s.Turn, pit)
}

func sowPath(stones int, mover Side, pit int) []int {
	path := make([]int, 0, stones)
	skip := mover.OpponentStore()
	idx := pit
	for ; stones > 0; stones-- {
		idx = (idx + 1) % BoardSize
		if idx == skip {
			idx = (idx + 1) % BoardSize
		}
		path = append(path, idx)
	}
	return path
}
