package ws

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/skillswap/skillswap-backend/internal/common"
	"github.com/skillswap/skillswap-backend/internal/domain"
	"github.com/skillswap/skillswap-backend/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// ChatService is the slice of the chat layer the realtime channel needs.
// Satisfied by service.ChatService.
type ChatService interface {
	SendMessage(senderID int64, req *domain.SendMessageRequest) (*domain.MessageResponse, error)
	MarkConversationRead(conversationID, viewerID int64) (int64, error)
	IsParticipant(conversationID, userID int64) (bool, error)
}

// Client represents a single websocket connection bound to a user. The
// binding is set at handshake and never changes; a connection whose token
// expires must reconnect with a fresh one.
type Client struct {
	hub    *Hub
	chat   ChatService
	conn   *websocket.Conn
	send   chan []byte
	userID int64

	// rooms the client subscribed to; owned by the hub's Run goroutine
	rooms map[int64]bool

	// mu guards send against use after the hub drops the client. The read
	// pump keeps running after a drop until its next read fails, and may
	// still try to enqueue an error event.
	mu     sync.Mutex
	closed bool
}

// NewClient creates a new websocket client
func NewClient(hub *Hub, chat ChatService, conn *websocket.Conn, userID int64) *Client {
	return &Client{
		hub:    hub,
		chat:   chat,
		conn:   conn,
		send:   make(chan []byte, 256),
		userID: userID,
		rooms:  make(map[int64]bool),
	}
}

// inboundEvent is what clients send: join/leave a room, send a message, or
// signal that they caught up on a conversation.
type inboundEvent struct {
	Event          string `json:"event"`
	ConversationID int64  `json:"conversation_id"`
	Text           string `json:"text"`
	ClientToken    string `json:"client_token"`
}

// ReadPump reads and dispatches client events until the connection drops
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var env inboundEvent
		if err := json.Unmarshal(raw, &env); err != nil {
			c.sendError("invalid_json", "malformed event")
			continue
		}

		switch env.Event {
		case EventJoinRoom:
			c.handleJoin(env.ConversationID)
		case EventLeaveRoom:
			c.hub.Leave(c, env.ConversationID)
		case EventSendMessage:
			c.handleSend(&env)
		case EventMessagesRead:
			c.handleMarkRead(env.ConversationID)
		default:
			c.sendError("unsupported_event", env.Event)
		}
	}
}

// handleJoin verifies room membership before subscribing. Joins from
// non-participants are refused so nobody can eavesdrop on a conversation by
// guessing its id.
func (c *Client) handleJoin(conversationID int64) {
	ok, err := c.chat.IsParticipant(conversationID, c.userID)
	if err != nil {
		if errors.Is(err, common.ErrConversationNotFound) {
			c.sendError("conversation_not_found", "conversation does not exist")
			return
		}
		c.sendError("join_failed", "could not verify membership")
		return
	}
	if !ok {
		c.sendError("not_a_participant", "join refused")
		return
	}
	c.hub.Join(c, conversationID)
}

// handleSend persists through the message store, then broadcasts the
// authoritative record (server-assigned id, client token echoed) to the
// whole room, the sender's own connections included.
func (c *Client) handleSend(env *inboundEvent) {
	msg, err := c.chat.SendMessage(c.userID, &domain.SendMessageRequest{
		ConversationID: env.ConversationID,
		Text:           env.Text,
		ClientToken:    env.ClientToken,
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrEmptyMessage):
			c.sendError("empty_message", "message text is empty")
		case errors.Is(err, common.ErrConversationNotFound):
			c.sendError("conversation_not_found", "conversation does not exist")
		case errors.Is(err, common.ErrForbidden):
			c.sendError("not_a_participant", "send refused")
		default:
			l := logger.WithUserID(c.userID)
			l.Error().Err(err).Msg("ws send failed")
			c.sendError("send_failed", "message could not be stored")
		}
		return
	}
	c.hub.BroadcastMessage(env.ConversationID, msg)
}

func (c *Client) handleMarkRead(conversationID int64) {
	marked, err := c.chat.MarkConversationRead(conversationID, c.userID)
	if err != nil {
		if errors.Is(err, common.ErrConversationNotFound) {
			c.sendError("conversation_not_found", "conversation does not exist")
			return
		}
		if errors.Is(err, common.ErrForbidden) {
			c.sendError("not_a_participant", "mark read refused")
			return
		}
		c.sendError("mark_read_failed", "read state could not be stored")
		return
	}
	if marked > 0 {
		c.hub.BroadcastRead(conversationID, c.userID)
	}
}

// sendError pushes an error event to this connection only
func (c *Client) sendError(code, message string) {
	data, err := json.Marshal(&Event{
		Event:   EventError,
		Payload: map[string]string{"code": code, "message": message},
	})
	if err != nil {
		return
	}
	c.trySend(data)
}

// trySend enqueues an event if the client is still open and the buffer has
// room; it silently discards otherwise.
func (c *Client) trySend(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// closeSend marks the client closed and closes its send channel, once.
// Called from the hub's Run goroutine when the client is dropped.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// WritePump sends queued events to the websocket
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message) //nolint:errcheck
			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
