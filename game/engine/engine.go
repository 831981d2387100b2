package engine

import (
	"fmt"
	"math/rand"
)

// Engine provides the main interface for board operations
type Engine interface {
	// State
	GetState() *GameState
	GetBoard() Board
	GetScore() int
	Dim() int
	Reset()

	// Movement operations
	Move(dir Direction, scoring bool) bool
	MoveLeft(scoring bool) bool
	MoveRight(scoring bool) bool
	MoveUp(scoring bool) bool
	MoveDown(scoring bool) bool
	CanMove(dir Direction) bool
	GetPossibleMoves() []Direction

	// Terminal detection
	MovePossible() bool
	CheckWin(goal int) bool

	// Spawning
	AddNewTile() bool
}

var _ Engine = (*GameEngine)(nil)

// GameEngine owns the live, mutable board of one game.
type GameEngine struct {
	board Board
	score int
	dim   int
	rng   *rand.Rand
}

// NewEngine creates an empty dim x dim board. Tiles are not spawned here;
// that belongs to the session's setup.
func NewEngine(dim int, rng *rand.Rand) (*GameEngine, error) {
	if dim < MinDim || dim > MaxDim {
		return nil, fmt.Errorf("%w: dim must be between %d and %d, got %d", ErrInvalidConfig, MinDim, MaxDim, dim)
	}
	if rng == nil {
		return nil, fmt.Errorf("random source cannot be nil")
	}
	return &GameEngine{
		board: NewBoard(dim),
		dim:   dim,
		rng:   rng,
	}, nil
}

// NewEngineFromBoard creates an engine positioned on an existing board.
func NewEngineFromBoard(board Board, score int, rng *rand.Rand) (*GameEngine, error) {
	e, err := NewEngine(len(board), rng)
	if err != nil {
		return nil, err
	}
	for i, row := range board {
		if len(row) != len(board) {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidConfig, i, len(row), len(board))
		}
	}
	e.board = board.Clone()
	e.score = score
	return e, nil
}

// GetState returns a snapshot that shares no memory with the live board
func (e *GameEngine) GetState() *GameState {
	return NewGameState(e.board, e.score, e.dim)
}

// GetBoard returns a copy of the live board
func (e *GameEngine) GetBoard() Board {
	return e.board.Clone()
}

// GetScore returns the current score
func (e *GameEngine) GetScore() int {
	return e.score
}

// Dim returns the board dimension
func (e *GameEngine) Dim() int {
	return e.dim
}

// Reset clears the board and score
func (e *GameEngine) Reset() {
	e.board = NewBoard(e.dim)
	e.score = 0
}

// Move shifts the live board and reports whether anything changed
func (e *GameEngine) Move(dir Direction, scoring bool) bool {
	next, gained, moved := Slide(e.board, dir, scoring)
	e.board = next
	e.score += gained
	return moved
}

func (e *GameEngine) MoveLeft(scoring bool) bool  { return e.Move(Left, scoring) }
func (e *GameEngine) MoveRight(scoring bool) bool { return e.Move(Right, scoring) }
func (e *GameEngine) MoveUp(scoring bool) bool    { return e.Move(Up, scoring) }
func (e *GameEngine) MoveDown(scoring bool) bool  { return e.Move(Down, scoring) }

// CanMove checks the direction on a scratch copy
func (e *GameEngine) CanMove(dir Direction) bool {
	_, _, moved := Slide(e.board, dir, false)
	return moved
}

// GetPossibleMoves returns all directions that would change the board
func (e *GameEngine) GetPossibleMoves() []Direction {
	var possible []Direction
	for _, dir := range Directions {
		if e.CanMove(dir) {
			possible = append(possible, dir)
		}
	}
	return possible
}

// MovePossible reports whether any direction would change the board. A full
// board can still have moves when neighbours are equal.
func (e *GameEngine) MovePossible() bool {
	return AnyMovePossible(e.board)
}

// CheckWin reports whether any tile has reached goal
func (e *GameEngine) CheckWin(goal int) bool {
	return ReachedGoal(e.board, goal)
}

// AddNewTile writes a 2 (or a 4 with probability SpawnFourOdds) into a
// uniformly chosen empty cell. It returns false when the board is full.
func (e *GameEngine) AddNewTile() bool {
	empty := EmptyCells(e.board)
	if len(empty) == 0 {
		return false
	}
	cell := empty[e.rng.Intn(len(empty))]
	value := 2
	if e.rng.Float64() < SpawnFourOdds {
		value = 4
	}
	e.board[cell.Row][cell.Col] = value
	return true
}
