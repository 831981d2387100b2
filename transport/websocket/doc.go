// Package websocket provides a read-only spectator feed for training runs.
//
// The websocket package implements:
//   - A Hub that observes training and broadcasts progress
//   - Run-aware WebSocket connections
//   - Connection lifecycle management with ping/pong keepalive
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection is handled by a pair of
// goroutines for reading and writing. All client bookkeeping happens on the
// hub goroutine.
//
// Message Protocol:
//
// Messages are JSON objects {run_id, event, data}. An "episode" event carries
// the finished episode result. A "turn" event carries {episode, turn} with the
// board after each applied move and is only sent when the hub was created with
// turn events enabled. Anything a client sends is discarded.
//
// Clients pick a run via query parameter (?run=<id>). Without one they follow
// every run.
//
// Usage:
//
//	hub := websocket.NewHub(logger, false)
//	go hub.Run(ctx)
//	http.Handle("/ws", hub)
//
//	report, err := trainer.Train(ctx, cfg, hub)
//
// Broadcasting never blocks the trainer. When the hub falls behind, events
// are dropped, and a client whose buffer is full is disconnected.
package websocket
