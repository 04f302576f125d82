package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// redisChannel carries every project event between nodes. Each node
	// subscribes once and fans messages out to its local sockets.
	redisChannel = "chat:events"

	presenceTTL = 60 * time.Second
)

// Envelope is the wire form of one project event.
type Envelope struct {
	ProjectID string      `json:"project_id"`
	Event     string      `json:"event"`
	Payload   interface{} `json:"payload"`
}

// Hub maintains active WebSocket connections grouped into per-project
// rooms and fans project events out to them. Cross-node delivery rides
// Redis pub/sub; the hub is a latency optimization only, clients always
// re-fetch authoritative state after an event.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	rooms   map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	redis  *redis.Client
	logger *zap.Logger

	quit chan struct{}
}

// NewHub creates a hub bridged over the given Redis client.
func NewHub(redisClient *redis.Client, logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		redis:      redisClient,
		logger:     logger,
		quit:       make(chan struct{}),
	}
}

// Run drives the hub loop until Stop is called.
func (h *Hub) Run() {
	if h.redis != nil {
		go h.subscribeLoop()
	}

	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case raw := <-h.broadcast:
			h.deliver(raw)
		case <-h.quit:
			return
		}
	}
}

// Stop shuts the hub loop down.
func (h *Hub) Stop() {
	close(h.quit)
}

// Publish implements the services' notifier port. The event goes through
// Redis so every node's room sees it; without Redis it is delivered to
// local sockets only. Errors are logged and swallowed, the triggering
// write has already succeeded.
func (h *Hub) Publish(ctx context.Context, projectID, event string, payload interface{}) {
	raw, err := json.Marshal(Envelope{ProjectID: projectID, Event: event, Payload: payload})
	if err != nil {
		h.logger.Warn("failed to encode realtime event",
			zap.String("event", event), zap.Error(err))
		return
	}

	if h.redis == nil {
		h.deliver(raw)
		return
	}

	if err := h.redis.Publish(ctx, redisChannel, raw).Err(); err != nil {
		h.logger.Warn("failed to publish realtime event",
			zap.String("event", event),
			zap.String("project_id", projectID),
			zap.Error(err))
	}
}

func (h *Hub) subscribeLoop() {
	pubsub := h.redis.Subscribe(context.Background(), redisChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			select {
			case h.broadcast <- []byte(msg.Payload):
			default:
				h.logger.Warn("broadcast queue full, event dropped")
			}
		case <-h.quit:
			return
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	room, ok := h.rooms[client.projectID]
	if !ok {
		room = make(map[*Client]bool)
		h.rooms[client.projectID] = room
	}
	room[client] = true
	h.mu.Unlock()

	h.markPresence(client, true)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		if room, ok := h.rooms[client.projectID]; ok {
			delete(room, client)
			if len(room) == 0 {
				delete(h.rooms, client.projectID)
			}
		}
	}
	h.mu.Unlock()

	h.markPresence(client, false)
}

func (h *Hub) deliver(raw []byte) {
	var envelope Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		h.logger.Warn("dropping malformed realtime event", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[envelope.ProjectID] {
		select {
		case client.send <- raw:
		default:
			// Slow consumer; it will be cleaned up by its write pump.
			h.logger.Debug("client send buffer full",
				zap.String("participant", client.participantID))
		}
	}
}

func (h *Hub) markPresence(client *Client, online bool) {
	if h.redis == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	key := "participant:" + client.participantID + ":online"
	var err error
	if online {
		err = h.redis.Set(ctx, key, "1", presenceTTL).Err()
	} else {
		err = h.redis.Del(ctx, key).Err()
	}
	if err != nil {
		h.logger.Warn("failed to update presence",
			zap.String("participant", client.participantID), zap.Error(err))
	}
}
