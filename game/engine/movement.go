package engine

// Compress returns the non-zero entries of row in their original order.
func Compress(row []int) []int {
	out := make([]int, 0, len(row))
	for _, v := range row {
		if v != 0 {
			out = append(out, v)
		}
	}
	return out
}

// Merge makes a single left-to-right pass over row, doubling the left cell of
// every adjacent equal pair and zeroing the right one. After merging row[i]
// with row[i+1] the pass continues at i+1, which now holds 0, so a freshly
// doubled tile never merges again in the same pass. It returns the points
// gained, or 0 when scoring is false.
func Merge(row []int, scoring bool) int {
	gained := 0
	for i := 0; i < len(row)-1; i++ {
		if row[i] == 0 || row[i] != row[i+1] {
			continue
		}
		row[i] *= 2
		row[i+1] = 0
		if scoring {
			gained += row[i]
		}
	}
	return gained
}

// Rotate returns b turned 90 degrees clockwise.
func Rotate(b Board) Board {
	n := len(b)
	out := NewBoard(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out[i][j] = b[n-1-j][i]
		}
	}
	return out
}

// rotateN applies n clockwise quarter turns.
func rotateN(b Board, n int) Board {
	for i := 0; i < n%4; i++ {
		b = Rotate(b)
	}
	return b
}

// slideLeft applies compress, merge, compress to every row in place.
func slideLeft(b Board, scoring bool) (int, bool) {
	gained := 0
	moved := false
	for i, row := range b {
		merged := Compress(row)
		gained += Merge(merged, scoring)
		merged = Compress(merged)

		next := make([]int, len(row))
		copy(next, merged)
		for j := range row {
			if row[j] != next[j] {
				moved = true
				break
			}
		}
		b[i] = next
	}
	return gained, moved
}

// Slide returns the board produced by shifting b in direction dir, the points
// gained and whether any cell changed. b itself is left untouched.
func Slide(b Board, dir Direction, scoring bool) (Board, int, bool) {
	turns, ok := rotations[dir]
	if !ok {
		return b.Clone(), 0, false
	}
	oriented := rotateN(b.Clone(), turns)
	gained, moved := slideLeft(oriented, scoring)
	return rotateN(oriented, (4-turns)%4), gained, moved
}

// Move shifts the snapshot's own board. It never touches the live game.
func (gs *GameState) Move(dir Direction, scoring bool) bool {
	next, gained, moved := Slide(gs.Board, dir, scoring)
	gs.Board = next
	gs.Score += gained
	return moved
}

func (gs *GameState) MoveLeft(scoring bool) bool  { return gs.Move(Left, scoring) }
func (gs *GameState) MoveRight(scoring bool) bool { return gs.Move(Right, scoring) }
func (gs *GameState) MoveUp(scoring bool) bool    { return gs.Move(Up, scoring) }
func (gs *GameState) MoveDown(scoring bool) bool  { return gs.Move(Down, scoring) }

// CanMove reports whether dir would change the board, without applying it.
func (gs *GameState) CanMove(dir Direction) bool {
	_, _, moved := Slide(gs.Board, dir, false)
	return moved
}

// ValidMoves lists the directions that change the board, in Directions order.
func (gs *GameState) ValidMoves() []Direction {
	var moves []Direction
	for _, dir := range Directions {
		if gs.CanMove(dir) {
			moves = append(moves, dir)
		}
	}
	return moves
}
