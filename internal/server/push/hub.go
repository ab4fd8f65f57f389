// Package push runs the websocket endpoint that notifies clients about
// changes to their city breaks.
//
// A client connects to the server root and must send
//
//	{"type":"authorization","payload":{"token":"<bearer token>"}}
//
// as its first frame. Afterwards it receives {type, payload} messages where
// type is "created" or "updated" and payload is the changed record.
package push

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/dmitrijs2005/citybreaks/internal/logging"
	"github.com/dmitrijs2005/citybreaks/internal/server/models"
)

const typeAuthorization = "authorization"

// Message is the wire envelope.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type authorizationPayload struct {
	Token string `json:"token"`
}

type TokenValidator interface {
	UserIDFromToken(token string) (string, error)
}

type envelope struct {
	userID string
	data   []byte
}

type Hub struct {
	validator TokenValidator
	logger    logging.Logger

	clientsMu sync.RWMutex
	clients   map[*websocket.Conn]string

	broadcast    chan envelope
	authTimeout  time.Duration
	writeTimeout time.Duration
}

func NewHub(v TokenValidator, l logging.Logger) *Hub {
	return &Hub{
		validator:    v,
		logger:       l.With("module", "push"),
		clients:      make(map[*websocket.Conn]string),
		broadcast:    make(chan envelope, 100),
		authTimeout:  10 * time.Second,
		writeTimeout: 5 * time.Second,
	}
}

// Publish queues a change for the connections of userID. It never blocks;
// when the queue is full the message is dropped.
func (h *Hub) Publish(ctx context.Context, userID string, t models.ChangeType, c *models.CityBreak) {
	payload, err := json.Marshal(c)
	if err != nil {
		h.logger.Error(ctx, "failed to marshal push payload", "error", err)
		return
	}
	data, err := json.Marshal(Message{Type: string(t), Payload: payload})
	if err != nil {
		h.logger.Error(ctx, "failed to marshal push message", "error", err)
		return
	}

	select {
	case h.broadcast <- envelope{userID: userID, data: data}:
	default:
		h.logger.Warn(ctx, "broadcast queue full, dropping message", "user_id", userID, "type", t)
	}
}

// Run delivers queued messages until ctx is done, then closes every
// connection.
func (h *Hub) Run(ctx context.Context) error {
	defer h.closeAll()

	for {
		select {
		case <-ctx.Done():
			return nil
		case env := <-h.broadcast:
			h.deliver(ctx, env)
		}
	}
}

func (h *Hub) deliver(ctx context.Context, env envelope) {
	h.clientsMu.RLock()
	var targets []*websocket.Conn
	for conn, userID := range h.clients {
		if userID == env.userID {
			targets = append(targets, conn)
		}
	}
	h.clientsMu.RUnlock()

	for _, conn := range targets {
		wctx, cancel := context.WithTimeout(ctx, h.writeTimeout)
		err := conn.Write(wctx, websocket.MessageText, env.data)
		cancel()
		if err != nil {
			h.logger.Warn(ctx, "failed to send to client", "error", err)
			h.removeClient(conn)
		}
	}
}

// ServeHTTP upgrades the request, authorizes the connection and keeps it
// registered until the peer goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.logger.Warn(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	ctx := r.Context()
	userID, err := h.authorize(ctx, conn)
	if err != nil {
		h.logger.Info(ctx, "websocket rejected", "error", err)
		_ = conn.Close(websocket.StatusPolicyViolation, "unauthorized")
		return
	}

	h.clientsMu.Lock()
	h.clients[conn] = userID
	count := len(h.clients)
	h.clientsMu.Unlock()
	h.logger.Info(ctx, "client connected", "user_id", userID, "total", count)

	defer h.removeClient(conn)
	for {
		// Client frames after the handshake carry nothing.
		if _, _, err := conn.Read(ctx); err != nil {
			return
		}
	}
}

func (h *Hub) authorize(ctx context.Context, conn *websocket.Conn) (string, error) {
	actx, cancel := context.WithTimeout(ctx, h.authTimeout)
	defer cancel()

	var m Message
	if err := wsjson.Read(actx, conn, &m); err != nil {
		return "", err
	}
	if m.Type != typeAuthorization {
		return "", errors.New("first message must be an authorization")
	}

	var p authorizationPayload
	if err := json.Unmarshal(m.Payload, &p); err != nil {
		return "", err
	}
	return h.validator.UserIDFromToken(p.Token)
}

func (h *Hub) removeClient(conn *websocket.Conn) {
	h.clientsMu.Lock()
	userID, exists := h.clients[conn]
	if !exists {
		h.clientsMu.Unlock()
		return
	}
	delete(h.clients, conn)
	count := len(h.clients)
	h.clientsMu.Unlock()

	_ = conn.Close(websocket.StatusNormalClosure, "")
	h.logger.Info(context.Background(), "client disconnected", "user_id", userID, "total", count)
}

func (h *Hub) closeAll() {
	h.clientsMu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
		delete(h.clients, conn)
	}
	h.clientsMu.Unlock()

	for _, conn := range conns {
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
	}
}

// ClientCount returns the number of authorized connections.
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}
