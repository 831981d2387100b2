package engine

import (
	"errors"
	"math/rand"
	"testing"
)

func newTestEngine(t *testing.T, board Board) *GameEngine {
	t.Helper()
	e, err := NewEngineFromBoard(board, 0, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return e
}

func TestNewEngine(t *testing.T) {
	e, err := NewEngine(4, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Failed to create new engine: %v", err)
	}
	if e.Dim() != 4 {
		t.Errorf("Expected dim 4, got %d", e.Dim())
	}
	if e.GetScore() != 0 {
		t.Errorf("Expected initial score 0, got %d", e.GetScore())
	}
	if CountEmpty(e.GetBoard()) != 16 {
		t.Error("Expected an empty board before setup")
	}
}

func TestGameEngineAsEngine(t *testing.T) {
	var e Engine = newTestEngine(t, Board{{2, 2}, {0, 0}})
	if !e.MoveLeft(true) || e.GetScore() != 4 {
		t.Errorf("Expected a merge through the Engine interface, score %d", e.GetScore())
	}
	if e.Dim() != 2 || !e.CheckWin(4) {
		t.Error("Unexpected state through the Engine interface")
	}
}

func TestNewEngine_InvalidDim(t *testing.T) {
	for _, dim := range []int{0, 1, MaxDim + 1} {
		_, err := NewEngine(dim, rand.New(rand.NewSource(1)))
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("dim %d: expected ErrInvalidConfig, got %v", dim, err)
		}
	}
	if _, err := NewEngine(4, nil); err == nil {
		t.Error("Expected error for nil random source")
	}
}

func TestNewEngineFromBoard_Ragged(t *testing.T) {
	_, err := NewEngineFromBoard(Board{{2, 0}, {0}}, 0, rand.New(rand.NewSource(1)))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for ragged board, got %v", err)
	}
}

func TestEngine_MoveScores(t *testing.T) {
	e := newTestEngine(t, Board{
		{2, 2, 4, 4},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})

	if !e.MoveLeft(true) {
		t.Fatal("Expected left move to succeed")
	}
	if e.GetScore() != 12 {
		t.Errorf("Expected score 12, got %d", e.GetScore())
	}
	if got := e.GetBoard()[0]; got[0] != 4 || got[1] != 8 {
		t.Errorf("Expected row [4 8 0 0], got %v", got)
	}

	// no-op move leaves score untouched
	if e.MoveLeft(true) {
		t.Error("Expected repeated left move to be a no-op")
	}
	if e.GetScore() != 12 {
		t.Errorf("Expected score to stay 12, got %d", e.GetScore())
	}
}

func TestEngine_MoveWithoutScoring(t *testing.T) {
	e := newTestEngine(t, Board{{2, 2}, {0, 0}})
	if !e.MoveRight(false) {
		t.Fatal("Expected right move to succeed")
	}
	if e.GetScore() != 0 {
		t.Errorf("Expected score 0 without scoring, got %d", e.GetScore())
	}
}

func TestEngine_MovePossible(t *testing.T) {
	tests := []struct {
		name  string
		board Board
		want  bool
	}{
		{"empty cell", Board{{2, 4}, {4, 0}}, true},
		{"full with horizontal pair", Board{{2, 2}, {4, 8}}, true},
		{"full with vertical pair", Board{{2, 4}, {2, 8}}, true},
		{"full no pairs", Board{
			{2, 4, 2, 4},
			{4, 2, 4, 2},
			{2, 4, 2, 4},
			{4, 2, 4, 2},
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, tt.board)
			before := e.GetBoard()
			if got := e.MovePossible(); got != tt.want {
				t.Errorf("MovePossible() = %v, want %v", got, tt.want)
			}
			if !e.GetBoard().Equal(before) {
				t.Error("MovePossible mutated the live board")
			}
			if e.GetScore() != 0 {
				t.Error("MovePossible changed the score")
			}

			// MovePossible agrees with trying each direction
			anyMove := false
			for _, dir := range Directions {
				anyMove = anyMove || e.CanMove(dir)
			}
			if anyMove != tt.want {
				t.Errorf("CanMove over all directions = %v, want %v", anyMove, tt.want)
			}
		})
	}
}

func TestEngine_CheckWin(t *testing.T) {
	e := newTestEngine(t, Board{{2, 1024}, {0, 0}})
	if e.CheckWin(2048) {
		t.Error("Expected no win below goal")
	}
	e.MoveLeft(true)
	if !e.CheckWin(1024) {
		t.Error("Expected win when a tile equals the goal")
	}
}

func TestEngine_AddNewTile(t *testing.T) {
	e, err := NewEngine(4, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	for i := 0; i < 16; i++ {
		if !e.AddNewTile() {
			t.Fatalf("Expected spawn %d to succeed", i)
		}
	}
	if e.AddNewTile() {
		t.Error("Expected spawn on a full board to be a no-op")
	}

	for _, row := range e.GetBoard() {
		for _, v := range row {
			if v != 2 && v != 4 {
				t.Errorf("Spawned unexpected value %d", v)
			}
		}
	}
}

func TestEngine_AddNewTileDistribution(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	fours := 0
	const trials = 5000
	for i := 0; i < trials; i++ {
		e, _ := NewEngine(2, rng)
		e.AddNewTile()
		if MaxTile(e.GetBoard()) == 4 {
			fours++
		}
	}
	ratio := float64(fours) / trials
	if ratio < 0.07 || ratio > 0.13 {
		t.Errorf("Expected roughly 10%% fours, got %.3f", ratio)
	}
}

func TestEngine_GetStateIsDeepCopy(t *testing.T) {
	e := newTestEngine(t, Board{{2, 0}, {0, 0}})
	state := e.GetState()

	state.Board[0][0] = 1024
	state.MoveRight(true)
	state.Score = 99

	if e.GetBoard()[0][0] != 2 {
		t.Error("Snapshot mutation leaked into the live board")
	}
	if e.GetScore() != 0 {
		t.Error("Snapshot mutation leaked into the live score")
	}
}

func TestEngine_GetPossibleMoves(t *testing.T) {
	e := newTestEngine(t, Board{{2, 0}, {0, 0}})
	moves := e.GetPossibleMoves()
	if len(moves) != 2 || moves[0] != Right || moves[1] != Down {
		t.Errorf("Expected [right down], got %v", moves)
	}
}

func TestEngine_Reset(t *testing.T) {
	e := newTestEngine(t, Board{{2, 2}, {0, 0}})
	e.MoveLeft(true)
	e.Reset()

	if e.GetScore() != 0 {
		t.Errorf("Expected score reset to 0, got %d", e.GetScore())
	}
	if CountEmpty(e.GetBoard()) != 4 {
		t.Error("Expected empty board after reset")
	}
}
