// Package agent provides the players of the tile-merge puzzle.
//
// The agent package implements:
//   - The Agent contract a session drives each turn
//   - A uniform-random agent and a fixed-priority agent
//   - A tabular Q-learning agent with a visit-count exploration bonus
//   - The Q-table, its statistics and its persistence
//
// Core Types:
//
// Agent is the contract: GetMove picks a direction from a snapshot and Final
// is called once with the terminal snapshot. QLearnAgent learns with a
// one-turn delay; the reward for a move is only known once the next snapshot
// arrives, so each GetMove first learns from the previous move.
//
// Usage:
//
//	rng := rand.New(rand.NewSource(1))
//	learner, err := agent.NewQLearnAgent(agent.DefaultParams(), rng, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//	learner.LoadTable("qtable.parquet")
//
//	dir, ok := learner.GetMove(state)
//	if !ok {
//		// no legal moves
//	}
//
// Q-learning agents are not safe for concurrent use. Episodes may share one
// agent only one after another.
package agent
