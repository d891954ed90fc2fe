package notification

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

// Hub tracks open websocket connections per user and pushes notifications
// to them as they are created. A user may hold several connections (tabs);
// all of them get the message.
type Hub struct {
	mu     sync.RWMutex
	conns  map[string][]*websocket.Conn
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		conns:  make(map[string][]*websocket.Conn),
		logger: logger,
	}
}

func (h *Hub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[userID] = append(h.conns[userID], conn)
}

func (h *Hub) Unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := h.conns[userID]
	for i, c := range conns {
		if c == conn {
			h.conns[userID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(h.conns[userID]) == 0 {
		delete(h.conns, userID)
	}
}

// Push sends the notification to every open connection of the user. Dead
// connections are skipped; the read loop cleans them up on its own.
func (h *Hub) Push(userID string, notification *Notification) {
	payload, err := json.Marshal(notification)
	if err != nil {
		h.logger.Error("notification marshal failed", zap.Error(err))
		return
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, len(h.conns[userID]))
	copy(conns, h.conns[userID])
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.logger.Warn("notification push failed",
				zap.String("user_id", userID),
				zap.Error(err),
			)
		}
	}
}
