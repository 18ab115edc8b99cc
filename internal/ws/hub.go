package ws

import (
	"context"
	"encoding/json"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/skillswap/skillswap-backend/internal/domain"
	"github.com/skillswap/skillswap-backend/pkg/logger"
)

const redisPubSubChannel = "chat:events"

// Client-to-server and server-to-client event names
const (
	EventJoinRoom       = "joinRoom"
	EventLeaveRoom      = "leaveRoom"
	EventSendMessage    = "sendMessage"
	EventReceiveMessage = "receiveMessage"
	EventMessagesRead   = "messagesRead"
	EventError          = "error"
)

var (
	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ws_connections_active",
		Help: "Number of currently connected websocket clients",
	})
	wsRoomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ws_rooms_active",
		Help: "Number of conversation rooms with at least one member",
	})
	wsEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ws_events_total",
		Help: "Total websocket events processed, by event name",
	}, []string{"event"})
)

// Event is the envelope for every realtime payload
type Event struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// Hub manages websocket clients grouped into per-conversation rooms and
// fans events out to room members. With Redis configured, events travel
// through pub/sub so every server instance delivers to its local members;
// without it, delivery is process-local.
type Hub struct {
	// clients and rooms are owned by the Run goroutine; nothing else
	// touches them.
	clients map[*Client]bool
	rooms   map[int64]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	join       chan *subscription
	leave      chan *subscription
	broadcast  chan *roomEvent

	redisClient *redis.Client
	ctx         context.Context
	cancel      context.CancelFunc
}

type subscription struct {
	client         *Client
	conversationID int64
}

type roomEvent struct {
	ConversationID int64           `json:"conversation_id"`
	Data           json.RawMessage `json:"data"`
}

// NewHub creates a new Hub
func NewHub(redisClient *redis.Client) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:     make(map[*Client]bool),
		rooms:       make(map[int64]map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		join:        make(chan *subscription),
		leave:       make(chan *subscription),
		broadcast:   make(chan *roomEvent, 256),
		redisClient: redisClient,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Join subscribes a client to a conversation room. The caller must have
// verified the client is a participant of the conversation.
func (h *Hub) Join(client *Client, conversationID int64) {
	h.join <- &subscription{client: client, conversationID: conversationID}
}

// Leave unsubscribes a client from a conversation room
func (h *Hub) Leave(client *Client, conversationID int64) {
	h.leave <- &subscription{client: client, conversationID: conversationID}
}

// BroadcastMessage pushes a persisted message to every member of its room
func (h *Hub) BroadcastMessage(conversationID int64, msg *domain.MessageResponse) {
	h.emit(conversationID, &Event{Event: EventReceiveMessage, Payload: msg})
}

// BroadcastRead informs room members that a reader has caught up
func (h *Hub) BroadcastRead(conversationID, readerID int64) {
	h.emit(conversationID, &Event{
		Event:   EventMessagesRead,
		Payload: &domain.MessagesReadEvent{ConversationID: conversationID, ReaderID: readerID},
	})
}

// emit routes an event through Redis when available, so other instances see
// it too; the pub/sub loop performs the local delivery in either case. With
// no Redis the event goes straight to the local broadcast channel.
func (h *Hub) emit(conversationID int64, event *Event) {
	wsEventsTotal.WithLabelValues(event.Event).Inc()

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("ws: marshal event: %v", err)
		return
	}
	re := &roomEvent{ConversationID: conversationID, Data: data}

	if h.redisClient != nil {
		payload, err := json.Marshal(re)
		if err != nil {
			logger.Error("ws: marshal room event: %v", err)
			return
		}
		if err := h.redisClient.Publish(h.ctx, redisPubSubChannel, payload).Err(); err != nil {
			logger.Error("ws: redis publish failed, delivering locally: %v", err)
			h.broadcast <- re
		}
		return
	}

	h.broadcast <- re
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	if h.redisClient != nil {
		go h.subscribeRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			wsConnectionsActive.Inc()

		case client := <-h.unregister:
			h.drop(client)

		case sub := <-h.join:
			if h.rooms[sub.conversationID] == nil {
				h.rooms[sub.conversationID] = make(map[*Client]bool)
				wsRoomsActive.Inc()
			}
			h.rooms[sub.conversationID][sub.client] = true
			sub.client.rooms[sub.conversationID] = true

		case sub := <-h.leave:
			h.removeFromRoom(sub.client, sub.conversationID)
			delete(sub.client.rooms, sub.conversationID)

		case re := <-h.broadcast:
			h.deliver(re)

		case <-h.ctx.Done():
			return
		}
	}
}

func (h *Hub) removeFromRoom(client *Client, conversationID int64) {
	if members, ok := h.rooms[conversationID]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, conversationID)
			wsRoomsActive.Dec()
		}
	}
}

// drop removes a client from every room and closes its send channel, once
func (h *Hub) drop(client *Client) {
	if !h.clients[client] {
		return
	}
	delete(h.clients, client)
	for conversationID := range client.rooms {
		h.removeFromRoom(client, conversationID)
	}
	client.closeSend()
	wsConnectionsActive.Dec()
}

// deliver writes an event to every local member of the room. Slow clients
// whose send buffer is full are dropped; they reconnect and catch up via the
// REST message list.
func (h *Hub) deliver(re *roomEvent) {
	members, ok := h.rooms[re.ConversationID]
	if !ok {
		return
	}
	for client := range members {
		select {
		case client.send <- re.Data:
		default:
			h.drop(client)
		}
	}
}

// subscribeRedis relays events published by any instance to local members
func (h *Hub) subscribeRedis() {
	pubsub := h.redisClient.Subscribe(h.ctx, redisPubSubChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var re roomEvent
			if err := json.Unmarshal([]byte(msg.Payload), &re); err != nil {
				logger.Error("ws: bad pubsub payload: %v", err)
				continue
			}
			h.broadcast <- &re
		case <-h.ctx.Done():
			return
		}
	}
}

// Stop gracefully shuts down the hub
func (h *Hub) Stop() {
	h.cancel()
}
