package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"cognimed-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	hubModule = "FeedHub"

	// FeedChannel carries feed frames between instances.
	FeedChannel = "feed_events"
)

type Hub struct {
	// Actor id -> open connections (one per device)
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// instance tags frames published to Redis so the origin can skip its own
	instance string
	rdb      *redis.Client
	logger   logger.ILogger
}

// NewHub accepts a nil Redis client for single-instance deployments.
func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID][]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		instance:   uuid.NewString(),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ActorID] = append(h.clients[client.ActorID], client)
			h.mu.Unlock()
			h.logger.Info(hubModule, "Client registered", map[string]interface{}{"actor_id": client.ActorID})

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[client.ActorID]
	for i, c := range clients {
		if c == client {
			h.clients[client.ActorID] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.ActorID]) == 0 {
		delete(h.clients, client.ActorID)
	}
}

// ClientCount is the number of open connections on this instance.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, clients := range h.clients {
		n += len(clients)
	}
	return n
}

// Broadcast delivers frame to every local connection and forwards it to the
// other instances through Redis.
func (h *Hub) Broadcast(frame []byte) {
	h.deliver(frame)

	if h.rdb == nil {
		return
	}
	payload, err := json.Marshal(clusterFrame{Origin: h.instance, Message: frame})
	if err != nil {
		return
	}
	if err := h.rdb.Publish(context.Background(), FeedChannel, payload).Err(); err != nil {
		h.logger.Warn(hubModule, "Redis publish failed", map[string]interface{}{"error": err})
	}
}

// deliver drops connections whose send buffer is full.
func (h *Hub) deliver(frame []byte) {
	var slow []*Client

	h.mu.RLock()
	for _, clients := range h.clients {
		for _, client := range clients {
			select {
			case client.Send <- frame:
			default:
				slow = append(slow, client)
			}
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		h.logger.Warn(hubModule, "Send buffer full, dropping client", map[string]interface{}{"actor_id": client.ActorID})
		go func(c *Client) { h.unregister <- c }(client)
	}
}

type clusterFrame struct {
	Origin  string          `json:"origin"`
	Message json.RawMessage `json:"message"`
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, FeedChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var frame clusterFrame
			if err := json.Unmarshal([]byte(msg.Payload), &frame); err != nil {
				h.logger.Warn(hubModule, "Unreadable cluster frame", map[string]interface{}{"error": err})
				continue
			}
			if frame.Origin == h.instance {
				continue
			}
			h.deliver(frame.Message)
		}
	}
}
