package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"tourii_backend/internal/middleware"
	"tourii_backend/internal/model"
	"tourii_backend/pkg/auth"
	"tourii_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	clientSendSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type wsClient struct {
	userID int64
	conn   *websocket.Conn
	send   chan []byte
}

// Hub keeps the open notification sockets per user and implements
// service.Notifier. A slow client loses frames rather than blocking the
// request that produced them.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*wsClient]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[int64]map[*wsClient]struct{}),
	}
}

func (h *Hub) Notify(_ context.Context, userID int64, n model.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients[userID] {
		select {
		case c.send <- data:
		default:
			logger.Logger().Warn("dropping notification for slow client",
				zap.Int64("user_id", userID),
				zap.String("type", n.Type))
		}
	}
	return nil
}

// Connections returns the number of open sockets of the user.
func (h *Hub) Connections(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) register(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[c.userID] == nil {
		h.clients[c.userID] = make(map[*wsClient]struct{})
	}
	h.clients[c.userID][c] = struct{}{}
}

func (h *Hub) unregister(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c.userID][c]; !ok {
		return
	}
	delete(h.clients[c.userID], c)
	if len(h.clients[c.userID]) == 0 {
		delete(h.clients, c.userID)
	}
	close(c.send)
}

// Close drops every client. Their write loops see the closed channel and
// close the sockets.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, clients := range h.clients {
		for c := range clients {
			close(c.send)
		}
		delete(h.clients, userID)
	}
}

type notificationRoutes struct {
	hub *Hub
}

func NewNotificationRoutes(handler *gin.RouterGroup, hub *Hub, a *auth.TelegramAuth) {
	r := &notificationRoutes{hub: hub}

	h := handler.Group("/ws")
	h.Use(a.TelegramAuthMiddleware())
	{
		h.GET("/:user_id", middleware.SelfOnly("user_id"), r.handleWebSocket)
	}
}

func (r *notificationRoutes) handleWebSocket(c *gin.Context) {
	log := logger.Logger()

	user, ok := currentUser(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &wsClient{
		userID: user.ID,
		conn:   conn,
		send:   make(chan []byte, clientSendSize),
	}
	r.hub.register(client)

	log.Info("notification socket opened", zap.Int64("user_id", user.ID))

	go r.writeLoop(client)
	go r.readLoop(client)
}

// readLoop only keeps the connection alive; clients do not send messages.
func (r *notificationRoutes) readLoop(c *wsClient) {
	defer func() {
		r.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Logger().Info("websocket unexpected close",
					zap.Int64("user_id", c.userID),
					zap.Error(err))
			}
			return
		}
	}
}

func (r *notificationRoutes) writeLoop(c *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Logger().Info("failed to write notification",
					zap.Int64("user_id", c.userID),
					zap.Error(err))
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
