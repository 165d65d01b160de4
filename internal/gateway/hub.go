// Package gateway pushes scanner notifications to dashboard clients over
// WebSocket. The Hub is a notification sink: every Message sent to it is
// wrapped in a sequenced envelope, buffered for replay and fanned out.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"signal-scanner/internal/notification"
)

// Envelope is the frame written to clients.
type Envelope struct {
	Seq    int64                `json:"seq"`
	Type   notification.Kind    `json:"type"`
	TS     time.Time            `json:"ts"`
	Data   notification.Message `json:"data"`
	Replay bool                 `json:"replay,omitempty"`
}

// Hub manages WebSocket clients and alert fan-out.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*Client]bool
	seq     int64
	replay  *ReplayBuffer
}

var _ notification.Notifier = (*Hub)(nil)

// NewHub creates a hub keeping the last replaySize envelopes for reconnects.
func NewHub(replaySize int) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*Client]bool),
		replay:  NewReplayBuffer(replaySize),
	}
}

// Send broadcasts msg to every connected client. Slow clients drop frames
// instead of blocking the scanner.
func (h *Hub) Send(ctx context.Context, msg notification.Message) error {
	h.mu.Lock()
	h.seq++
	seq := h.seq
	h.mu.Unlock()

	data, err := json.Marshal(Envelope{Seq: seq, Type: msg.Kind, TS: time.Now().UTC(), Data: msg})
	if err != nil {
		return fmt.Errorf("gateway: marshal: %w", err)
	}
	h.replay.Push(seq, data)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			log.Printf("[gateway] client send buffer full, dropping seq=%d", seq)
		}
	}
	return nil
}

// ServeHTTP upgrades to WebSocket. ?since=<seq> replays buffered envelopes
// newer than seq before live frames.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var since int64 = -1
	if s := r.URL.Query().Get("since"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			http.Error(w, "invalid since", http.StatusBadRequest)
			return
		}
		since = v
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[gateway] ws upgrade error: %v", err)
		return
	}
	h.register(conn, since)
}

func (h *Hub) register(conn *websocket.Conn, since int64) {
	client := &Client{
		conn: conn,
		send: make(chan []byte, 256),
		hub:  h,
	}

	h.mu.Lock()
	if since >= 0 {
		for _, e := range h.replay.Since(since) {
			select {
			case client.send <- markReplay(e.Data):
			default:
			}
		}
	}
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()

	log.Printf("[gateway] ws client connected (%d total)", count)

	go client.writePump()
	go client.readPump()
}

// markReplay sets the replay flag on a buffered envelope.
func markReplay(data []byte) []byte {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return data
	}
	env.Replay = true
	out, err := json.Marshal(env)
	if err != nil {
		return data
	}
	return out
}

// RemoveClient removes a client from the hub.
func (h *Hub) RemoveClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// ClientCount returns the number of connected WS clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Seq returns the sequence number of the latest envelope.
func (h *Hub) Seq() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.seq
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}
