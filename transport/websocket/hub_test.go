package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/mcp-training/tilemerge/game/engine"
	"github.com/wricardo/mcp-training/tilemerge/game/service"
	"github.com/wricardo/mcp-training/tilemerge/game/session"
)

func testHub(turns bool) *Hub {
	return NewHub(slog.New(slog.DiscardHandler), turns)
}

func newTestClient(hub *Hub, runID string) *Client {
	return &Client{
		hub:   hub,
		send:  make(chan []byte, 256),
		runID: runID,
	}
}

func decode(t *testing.T, data []byte) Message {
	t.Helper()
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	return msg
}

func TestNewHub(t *testing.T) {
	hub := testHub(false)

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
	if hub.runs == nil {
		t.Error("Hub runs map is nil")
	}
	if hub.broadcast == nil {
		t.Error("Hub broadcast channel is nil")
	}
	if hub.register == nil {
		t.Error("Hub register channel is nil")
	}
	if hub.unregister == nil {
		t.Error("Hub unregister channel is nil")
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := testHub(false)
	client := newTestClient(hub, "run-1")

	hub.registerClient(client)

	if len(hub.runs["run-1"]) != 1 {
		t.Fatalf("Expected 1 client for run-1, got %d", len(hub.runs["run-1"]))
	}

	hub.unregisterClient(client)

	if _, exists := hub.runs["run-1"]; exists {
		t.Error("Run should be cleaned up after last client leaves")
	}
	if _, ok := <-client.send; ok {
		t.Error("Client send channel should be closed")
	}

	// Unregistering twice is harmless
	hub.unregisterClient(client)
}

func TestHubBroadcastFiltersByRun(t *testing.T) {
	hub := testHub(false)
	follower := newTestClient(hub, "run-1")
	other := newTestClient(hub, "run-2")
	all := newTestClient(hub, "")
	hub.registerClient(follower)
	hub.registerClient(other)
	hub.registerClient(all)

	hub.broadcastMessage(&Message{RunID: "run-1", Event: EventEpisode})

	select {
	case data := <-follower.send:
		if msg := decode(t, data); msg.RunID != "run-1" || msg.Event != EventEpisode {
			t.Errorf("Unexpected message %+v", msg)
		}
	default:
		t.Error("Follower of run-1 did not receive the message")
	}

	select {
	case <-all.send:
	default:
		t.Error("Client following every run did not receive the message")
	}

	select {
	case <-other.send:
		t.Error("Client of run-2 received a run-1 message")
	default:
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := testHub(false)
	slow := &Client{hub: hub, send: make(chan []byte), runID: "run-1"}
	hub.registerClient(slow)

	hub.broadcastMessage(&Message{RunID: "run-1", Event: EventEpisode})

	if _, exists := hub.runs["run-1"]; exists {
		t.Error("Slow client should have been unregistered")
	}
}

func TestOnEpisodeQueuesMessage(t *testing.T) {
	hub := testHub(false)

	hub.OnEpisode("run-1", service.EpisodeResult{Episode: 3, Score: 120, MaxTile: 16})

	select {
	case msg := <-hub.broadcast:
		if msg.RunID != "run-1" || msg.Event != EventEpisode {
			t.Errorf("Unexpected message %+v", msg)
		}
		result, ok := msg.Data.(service.EpisodeResult)
		if !ok || result.Episode != 3 || result.Score != 120 {
			t.Errorf("Unexpected payload %+v", msg.Data)
		}
	default:
		t.Fatal("Expected a queued episode message")
	}
}

func TestOnTurnRespectsTurnSetting(t *testing.T) {
	event := session.TurnEvent{Turn: 1, Move: engine.Left, Board: engine.Board{{4, 0}, {0, 2}}, Score: 4}

	quiet := testHub(false)
	quiet.OnTurn("run-1", 1, event)
	if len(quiet.broadcast) != 0 {
		t.Error("Turn events should be ignored when disabled")
	}

	verbose := testHub(true)
	verbose.OnTurn("run-1", 2, event)
	msg := <-verbose.broadcast
	if msg.Event != EventTurn {
		t.Errorf("Expected turn event, got %q", msg.Event)
	}
	data, ok := msg.Data.(TurnData)
	if !ok || data.Episode != 2 || data.Turn.Score != 4 {
		t.Errorf("Unexpected payload %+v", msg.Data)
	}
}

func TestPublishNeverBlocks(t *testing.T) {
	hub := testHub(false)

	done := make(chan struct{})
	go func() {
		for i := 0; i < broadcastBuffer+10; i++ {
			hub.OnEpisode("run-1", service.EpisodeResult{Episode: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("OnEpisode blocked with no hub running")
	}
	if len(hub.broadcast) != broadcastBuffer {
		t.Errorf("Expected full buffer of %d, got %d", broadcastBuffer, len(hub.broadcast))
	}
}

func TestWebSocketFeed(t *testing.T) {
	hub := testHub(false)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	server := httptest.NewServer(hub)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?run=feed-test"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	// Registration races the first broadcast, so keep publishing until one arrives
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				hub.OnEpisode("other-run", service.EpisodeResult{Episode: 99})
				hub.OnEpisode("feed-test", service.EpisodeResult{Episode: 7, Score: 64, Won: true})
			}
		}
	}()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}

	var msg struct {
		RunID string                `json:"run_id"`
		Event string                `json:"event"`
		Data  service.EpisodeResult `json:"data"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	if msg.RunID != "feed-test" || msg.Event != EventEpisode {
		t.Errorf("Unexpected message %s", data)
	}
	if msg.Data.Episode != 7 || msg.Data.Score != 64 || !msg.Data.Won {
		t.Errorf("Unexpected episode payload %+v", msg.Data)
	}
}

func TestHubShutdownClosesClients(t *testing.T) {
	hub := testHub(false)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	server := httptest.NewServer(hub)
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	// Wait for the connection to be registered before shutting down
	time.Sleep(50 * time.Millisecond)
	cancel()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("Expected the connection to be closed after hub shutdown")
	}
}
