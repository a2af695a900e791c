package devserver

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"socialnet/internal/entities"
)

const writeWait = 5 * time.Second

type wsClient struct {
	conn   *websocket.Conn
	userID int64
	mu     sync.Mutex // serialises writes on conn
}

func (c *wsClient) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

// hub fans chat messages out to the sockets subscribed to a room.
type hub struct {
	log   *zap.SugaredLogger
	mu    sync.Mutex
	rooms map[int64]map[*wsClient]struct{}
}

func newHub(log *zap.SugaredLogger) *hub {
	return &hub{log: log, rooms: make(map[int64]map[*wsClient]struct{})}
}

func (h *hub) register(roomID int64, c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*wsClient]struct{})
	}
	h.rooms[roomID][c] = struct{}{}
}

func (h *hub) unregister(roomID int64, c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms[roomID], c)
	if len(h.rooms[roomID]) == 0 {
		delete(h.rooms, roomID)
	}
}

func (h *hub) broadcast(roomID int64, msg entities.ChatMessage) {
	h.mu.Lock()
	clients := make([]*wsClient, 0, len(h.rooms[roomID]))
	for c := range h.rooms[roomID] {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		if err := c.send(msg); err != nil {
			h.log.Debugw("websocket send failed", "room_id", roomID, "user_id", c.userID, "error", err)
			h.unregister(roomID, c)
			_ = c.conn.Close()
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for roomID, clients := range h.rooms {
		for c := range clients {
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"),
				time.Now().Add(time.Second))
			_ = c.conn.Close()
		}
		delete(h.rooms, roomID)
	}
}
