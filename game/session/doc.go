// Package session runs single episodes of the tile-merge puzzle.
//
// A Session moves through Setup, Playing and then Won or GameOver. Setup
// places two random tiles on an empty board. Each turn the session hands a
// deep-copied snapshot to its agent, applies the returned move to the live
// board with scoring, spawns a tile and checks for a win or a dead board.
//
// Termination Reasons:
//
//   - ReasonWon: a tile reached the goal and the config stops on win
//   - ReasonNoMoves: no direction changes the board
//   - ReasonIllegalMove: the agent returned a move that changes nothing
//   - ReasonAgentPassed: the agent offered no move although one exists
//   - ReasonTurnLimit: the optional MaxTurns cap was reached
//
// None of these are errors; Play only returns an error when it is called on
// a finished session or without an agent. The agent's Final hook is called
// exactly once with the terminal snapshot.
//
// Usage:
//
//	sess, err := session.New(engine.DefaultGameConfig(), learner, rng)
//	if err != nil {
//		log.Fatal(err)
//	}
//	result, err := sess.Play()
//
// Manual drivers skip the agent and call Step directly.
package session
