// Package config provides training profile management.
//
// The config package handles:
//   - Loading training profiles from JSON files
//   - Profile validation
//   - Default profile selection
//   - Profile discovery and listing
//
// Profile Format:
//
// Profiles are stored as JSON files in the configs directory. Each profile
// defines the game rules (board size, goal tile, whether to stop on a win, an
// optional turn cap), the agent kind and its learning parameters, the number
// of episodes, the save cadence and where the Q-table and episode history are
// written.
//
// Shipped Profiles:
//   - classic: 4x4 board, goal 2048
//   - quick: short seeded run on the classic board
//   - small: 3x3 board, goal 64, stored in SQLite
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Load specific profile
//	profile, err := manager.LoadConfig("small")
//
//	// Get default profile
//	defaultProfile := manager.GetDefault()
//
//	// List available profiles
//	profiles, err := manager.ListConfigs()
//
// Loaded profiles are cached for the life of the manager.
package config
