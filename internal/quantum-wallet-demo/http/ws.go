package http

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/quantumauth-io/quantum-go-utils/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 512
	sendBuffer     = 64
)

const (
	msgTypeState     = "state"
	msgTypeClipboard = "clipboard"
)

var ErrNoPageConnected = errors.New("no page connected")

// Hub fans messages out to connected pages. It is also the page clipboard:
// WriteText asks every connected page to copy the text.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*wsClient
	closed  bool
}

type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*wsClient)}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// attach registers conn and starts its pumps. initial, if non-nil, is queued before anything else.
func (h *Hub) attach(conn *websocket.Conn, initial []byte) error {
	c := &wsClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
	if initial != nil {
		c.send <- initial
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return errors.New("hub closed")
	}
	h.clients[c.id] = c
	n := len(h.clients)
	h.mu.Unlock()

	log.Info("page connected", "client", c.id, "clients", n)

	go c.writePump()
	go c.readPump(h)
	return nil
}

func (h *Hub) detach(c *wsClient) {
	h.mu.Lock()
	_, ok := h.clients[c.id]
	delete(h.clients, c.id)
	h.mu.Unlock()

	if ok {
		c.close()
		log.Info("page disconnected", "client", c.id)
	}
}

// Broadcast queues a message for every page and returns how many accepted it.
// Pages whose buffer is full are dropped.
func (h *Hub) Broadcast(msgType string, data any) (int, error) {
	payload, err := json.Marshal(wsMessage{Type: msgType, Data: data})
	if err != nil {
		return 0, errors.Wrap(err, "marshal ws message")
	}

	h.mu.RLock()
	var slow []*wsClient
	delivered := 0
	for _, c := range h.clients {
		select {
		case c.send <- payload:
			delivered++
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		log.Warn("dropping slow page", "client", c.id)
		h.detach(c)
	}
	return delivered, nil
}

func (h *Hub) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n, err := h.Broadcast(msgTypeClipboard, clipboardPayload{Text: text})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoPageConnected
	}
	return nil
}

// Close disconnects every page and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := h.clients
	h.clients = make(map[string]*wsClient)
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}

func (c *wsClient) close() {
	c.once.Do(func() { close(c.send) })
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Warn("ws write failed", "client", c.id, "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only services control frames; pages never send data.
func (c *wsClient) readPump(h *Hub) {
	defer h.detach(c)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("ws read failed", "client", c.id, "error", err)
			}
			return
		}
	}
}
