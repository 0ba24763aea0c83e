// internal/ws/hub.go
package ws

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Auth happens before the upgrade; cross-origin panels are allowed.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans billing and settings events out to every socket an account has
// open. Broadcast never blocks callers: events to accounts with no open
// socket are dropped.
type Hub struct {
	clients map[int64]map[*Client]bool
	mu      sync.RWMutex

	broadcast chan *envelope
	logger    *zap.Logger
}

type envelope struct {
	accountID int64
	event     *Event
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:   make(map[int64]map[*Client]bool),
		broadcast: make(chan *envelope, 256),
		logger:    logger,
	}
}

// Run dispatches queued events until the context ends.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case env := <-h.broadcast:
			h.dispatch(env)
		}
	}
}

// Serve upgrades an authenticated request and attaches the socket to the
// account's client set.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, accountID int64) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := newClient(h, conn, accountID, h.logger)
	h.add(client)

	go client.writePump()
	go client.readPump()

	client.push(NewEvent("connected", map[string]any{"account_id": accountID}))
	return nil
}

// Broadcast queues an event for every socket the account has open.
func (h *Hub) Broadcast(accountID int64, eventType string, data any) {
	env := &envelope{accountID: accountID, event: NewEvent(eventType, data)}
	select {
	case h.broadcast <- env:
	default:
		h.logger.Warn("event queue full, dropping event",
			zap.Int64("account_id", accountID),
			zap.String("type", eventType),
		)
	}
}

// ConnectedClients reports how many sockets an account has open.
func (h *Hub) ConnectedClients(accountID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[accountID])
}

func (h *Hub) dispatch(env *envelope) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[env.accountID] {
		if !client.push(env.event) {
			h.logger.Warn("client send buffer full, dropping client",
				zap.Int64("account_id", env.accountID),
			)
			go h.drop(client)
		}
	}
}

func (h *Hub) add(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.accountID] == nil {
		h.clients[client.accountID] = make(map[*Client]bool)
	}
	h.clients[client.accountID][client] = true

	h.logger.Info("websocket client connected",
		zap.Int64("account_id", client.accountID),
		zap.Int("account_clients", len(h.clients[client.accountID])),
	)
}

func (h *Hub) drop(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.accountID]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}

	delete(clients, client)
	close(client.send)
	client.conn.Close()
	if len(clients) == 0 {
		delete(h.clients, client.accountID)
	}

	h.logger.Info("websocket client disconnected",
		zap.Int64("account_id", client.accountID),
	)
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			close(client.send)
			client.conn.Close()
		}
	}
	h.clients = make(map[int64]map[*Client]bool)
}
