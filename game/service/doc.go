// Package service provides the training layer of the tile-merge puzzle.
//
// The service package implements:
//   - Training profiles and their validation
//   - Multi-episode training runs with periodic table saves
//   - Single greedy episodes for demonstration
//   - Episode history export and run reports
//
// Core Interfaces:
//
// TrainingService is the main service interface used by the command line.
// ConfigManager loads training profiles. EpisodeObserver receives every
// finished episode; observers that also implement TurnObserver receive every
// applied move, which is how the spectator feed and the charts are fed.
//
// Usage:
//
//	configMgr, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//	svc := service.NewTrainingService(configMgr, logger)
//
//	cfg, err := svc.LoadConfig(ctx, "classic")
//	report, err := svc.Train(ctx, cfg, hub)
//
// Runs:
//
// Each call to Train gets a random run ID. Episodes of a run share one agent
// and one seeded random source, and are played one after another. The
// context is only checked between episodes.
package service
