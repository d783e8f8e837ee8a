package notification

import (
	"context"
	"net/http"
	"sync"

	"github.com/crickstats/backend/internal/model"
	"github.com/crickstats/backend/pkg/authenticator"
	"github.com/crickstats/backend/pkg/pubsub"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type connection struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub pushes reward events to the websocket connections of the user they
// belong to. It observes the reward topic; nothing publishes to it directly.
type Hub struct {
	tokenEngine authenticator.TokenEngine[model.AccessToken]

	mutex sync.RWMutex
	conns map[string]map[*connection]bool
}

func NewHub(
	subscriber pubsub.Subscriber,
	tokenEngine authenticator.TokenEngine[model.AccessToken],
) *Hub {
	h := &Hub{
		tokenEngine: tokenEngine,
		conns:       make(map[string]map[*connection]bool),
	}

	subscriber.Subscribe(model.TopicRewardClaimed, h.broadcast)
	return h
}

func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	info, err := h.tokenEngine.Verify(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "invalid access token", http.StatusUnauthorized)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	c := &connection{conn: ws, send: make(chan []byte, 16)}
	h.register(info.Username, c)
	go c.runWriter()

	// Inbound messages are discarded; the read loop only detects the close.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	h.unregister(info.Username, c)
}

func (h *Hub) broadcast(ctx context.Context, topic string, pack *pubsub.Pack) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for c := range h.conns[string(pack.Key)] {
		select {
		case c.send <- pack.Msg:
		default:
		}
	}
}

func (h *Hub) register(username string, c *connection) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.conns[username]; !ok {
		h.conns[username] = make(map[*connection]bool)
	}

	h.conns[username][c] = true
}

func (h *Hub) unregister(username string, c *connection) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.conns[username][c]; ok {
		delete(h.conns[username], c)
		close(c.send)
	}
}

func (c *connection) runWriter() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}
