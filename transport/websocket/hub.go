package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/scrabble-backend/internal/event"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 16 * 1024
	sendBuffer     = 64
)

// client is one live connection. Only writePump writes to conn.
type client struct {
	playerID string
	conn     *websocket.Conn
	send     chan []byte
	once     sync.Once
}

func newClient(playerID string, conn *websocket.Conn) *client {
	return &client{
		playerID: playerID,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
	}
}

func (that *client) close() {
	that.once.Do(func() {
		close(that.send)
	})
}

func (that *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = that.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = that.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := that.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Hub routes outbound events to player connections. One connection per player:
// a newer connection replaces the older one.
type Hub struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[string]*client
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[string]*client),
	}
}

func (that *Hub) register(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if old, ok := that.clients[c.playerID]; ok {
		old.close()
	}

	that.clients[c.playerID] = c
}

// unregister drops c and reports whether it was still the player's connection.
func (that *Hub) unregister(c *client) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	c.close()

	if that.clients[c.playerID] != c {
		return false
	}

	delete(that.clients, c.playerID)

	return true
}

func (that *Hub) Connected(playerID string) bool {
	that.mu.RLock()
	defer that.mu.RUnlock()

	_, ok := that.clients[playerID]

	return ok
}

func (that *Hub) Send(playerID string, evt event.Event) {
	msg, err := encode(evt)
	if err != nil {
		that.logger.Error("failed to encode event", "method", "Send", "event", evt.Name(), "error", err)
		return
	}

	that.mu.RLock()
	defer that.mu.RUnlock()

	that.deliver(playerID, msg)
}

func (that *Hub) Broadcast(playerIDs []string, evt event.Event) {
	msg, err := encode(evt)
	if err != nil {
		that.logger.Error("failed to encode event", "method", "Broadcast", "event", evt.Name(), "error", err)
		return
	}

	that.mu.RLock()
	defer that.mu.RUnlock()

	for _, id := range playerIDs {
		that.deliver(id, msg)
	}
}

// deliver never blocks. A client too slow to drain its buffer is dropped and
// gets the full state again when it reconnects. Caller holds that.mu.
func (that *Hub) deliver(playerID string, msg []byte) {
	c, ok := that.clients[playerID]
	if !ok {
		return
	}

	select {
	case c.send <- msg:
	default:
		that.logger.Warn("send buffer full, dropping connection", "method", "deliver", "playerID", playerID)
		_ = c.conn.Close()
	}
}

func encode(evt event.Event) ([]byte, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", evt.Name(), err)
	}

	msg, err := json.Marshal(Message{Action: evt.Name(), Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return msg, nil
}
