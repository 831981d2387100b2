// Package engine provides the board mechanics of the tile-merge puzzle.
//
// The engine package implements:
//   - Row compression and single-pass merging
//   - Directional moves built from one canonical left move and rotations
//   - Move legality and terminal-state detection by simulation
//   - Random tile spawning
//   - Read-only game snapshots for agents
//
// Core Types:
//
// The Engine interface defines the contract for the live board, implemented by
// GameEngine. GameState is the deep-copied snapshot an agent receives each
// turn; it carries the same move operations so hypothetical moves can be
// probed without touching the live game. GameConfig defines board size, goal
// tile and episode limits.
//
// Usage:
//
//	rng := rand.New(rand.NewSource(1))
//	gameEngine, err := engine.NewEngine(4, rng)
//	if err != nil {
//		log.Fatal(err)
//	}
//	gameEngine.AddNewTile()
//	gameEngine.AddNewTile()
//
//	state := gameEngine.GetState()
//	for _, dir := range state.ValidMoves() {
//		fmt.Println(dir)
//	}
//	gameEngine.Move(engine.Left, true)
//
// Game Rules:
//
// Every move slides all tiles toward one edge. Two equal tiles that meet merge
// into their sum, which is added to the score; a tile merges at most once per
// move. After each move a 2 (or, one time in ten, a 4) appears in a random
// empty cell. The game is won once a tile reaches the goal, and over when no
// direction changes the board.
package engine
