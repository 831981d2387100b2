package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/mcp-training/tilemerge/game/service"
	"github.com/wricardo/mcp-training/tilemerge/game/session"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Pending broadcasts; further events are dropped while the hub is behind.
	broadcastBuffer = 1024
)

const (
	EventEpisode = "episode"
	EventTurn    = "turn"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message represents a WebSocket message
type Message struct {
	RunID string `json:"run_id"`
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// TurnData is the payload of a turn event
type TurnData struct {
	Episode int               `json:"episode"`
	Turn    session.TurnEvent `json:"turn"`
}

// Client represents a WebSocket client. An empty runID follows every run.
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	runID string
}

// Hub maintains the set of spectators and broadcasts training progress to
// them. It implements service.EpisodeObserver and service.TurnObserver.
type Hub struct {
	// Registered clients by run ID
	runs map[string]map[*Client]bool

	// Outbound messages from the trainer
	broadcast chan *Message

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	turns  bool
	logger *slog.Logger
}

// NewHub creates a new WebSocket hub. With turns set, every applied move is
// broadcast as well as every finished episode.
func NewHub(logger *slog.Logger, turns bool) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		runs:       make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		turns:      turns,
		logger:     logger,
	}
}

// Run starts the hub's event loop and closes every client when ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, clients := range h.runs {
				for client := range clients {
					h.unregisterClient(client)
				}
			}
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// ServeHTTP upgrades the request. The optional "run" query parameter limits
// the feed to one run.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.ServeWS(w, r, r.URL.Query().Get("run"))
}

// ServeWS handles WebSocket requests from clients
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, runID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		hub:   h,
		conn:  conn,
		send:  make(chan []byte, 256),
		runID: runID,
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// OnEpisode broadcasts a finished episode
func (h *Hub) OnEpisode(runID string, result service.EpisodeResult) {
	h.publish(&Message{RunID: runID, Event: EventEpisode, Data: result})
}

// OnTurn broadcasts an applied move when turn events are enabled
func (h *Hub) OnTurn(runID string, episode int, event session.TurnEvent) {
	if !h.turns {
		return
	}
	h.publish(&Message{RunID: runID, Event: EventTurn, Data: TurnData{Episode: episode, Turn: event}})
}

// publish queues a message without ever blocking the trainer
func (h *Hub) publish(message *Message) {
	select {
	case h.broadcast <- message:
	default:
		h.logger.Debug("spectator feed behind, dropping event", "event", message.Event, "run_id", message.RunID)
	}
}

// registerClient adds a client to a run
func (h *Hub) registerClient(client *Client) {
	if h.runs[client.runID] == nil {
		h.runs[client.runID] = make(map[*Client]bool)
	}
	h.runs[client.runID][client] = true

	h.logger.Info("spectator connected", "run_id", client.runID, "clients", len(h.runs[client.runID]))
}

// unregisterClient removes a client from a run
func (h *Hub) unregisterClient(client *Client) {
	if clients, ok := h.runs[client.runID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)

			if len(clients) == 0 {
				delete(h.runs, client.runID)
			}

			h.logger.Info("spectator disconnected", "run_id", client.runID, "clients", len(clients))
		}
	}
}

// broadcastMessage sends a message to the clients of its run and to the
// clients following every run
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal broadcast message", "error", err)
		return
	}

	targets := []string{message.RunID}
	if message.RunID != "" {
		targets = append(targets, "")
	}
	for _, runID := range targets {
		for client := range h.runs[runID] {
			select {
			case client.send <- data:
			default:
				h.unregisterClient(client)
			}
		}
	}
}

// readPump drains the connection. Spectators cannot send commands; reading
// only keeps the pong deadline alive and detects disconnects.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket error", "error", err)
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
