// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package realtime

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/tomtom215/colloquy/internal/logging"
	"github.com/tomtom215/colloquy/internal/metrics"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// clientIDCounter generates unique, monotonically increasing IDs for clients.
// DETERMINISM: This ensures clients can be sorted in a consistent order for
// broadcast operations, eliminating non-deterministic map iteration order.
var clientIDCounter atomic.Uint64

// Client is a middleman between one websocket connection and the hub.
// A user with several tabs open holds several clients; they all share
// the user room.
type Client struct {
	// id is a unique identifier for this client, used for deterministic
	// ordering and for excluding the sender from typing relays.
	id       uint64
	userID   string
	username string
	hub      *Hub
	conn     *websocket.Conn
	send     chan Message

	// limiter throttles inbound events per connection.
	limiter *rate.Limiter

	// rooms tracks this client's memberships; guarded by hub.mu.
	rooms map[string]bool
}

// NewClient creates a new Client with a unique deterministic ID.
func NewClient(hub *Hub, conn *websocket.Conn, userID, username string) *Client {
	return &Client{
		id:       clientIDCounter.Add(1),
		userID:   userID,
		username: username,
		hub:      hub,
		conn:     conn,
		send:     make(chan Message, hub.cfg.SendBuffer),
		limiter:  rate.NewLimiter(rate.Limit(hub.cfg.MessageRate), hub.cfg.MessageBurst),
		rooms:    make(map[string]bool),
	}
}

// ID returns the client's unique identifier for deterministic ordering.
func (c *Client) ID() uint64 {
	return c.id
}

// Upgrader promotes authenticated HTTP requests to websocket
// connections. Origin checking is delegated to the CORS layer that
// fronts the upgrade endpoint.
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWS upgrades the request, registers the client, and starts its
// pumps. The caller must have authenticated the user already.
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request, userID, username string) error {
	conn, err := Upgrader.Upgrade(w, r, nil)
	if err != nil {
		metrics.WSErrors.WithLabelValues("upgrade").Inc()
		return err
	}
	client := NewClient(hub, conn, userID, username)
	hub.Register <- client
	client.Start()
	return nil
}

// Start begins reading and writing for the client.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister <- c
		_ = c.conn.Close() // Explicitly ignore error - best-effort cleanup
	}()

	c.conn.SetReadLimit(c.hub.cfg.MaxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				metrics.WSErrors.WithLabelValues("read").Inc()
				logging.Error().Err(err).Msg("unexpected websocket close error")
			}
			break
		}

		metrics.WSMessagesReceived.Inc()

		if !c.limiter.Allow() {
			metrics.WSMessagesDropped.WithLabelValues("rate_limited").Inc()
			continue
		}

		c.dispatch(msg)
	}
}

// dispatch routes an inbound event. Unknown or malformed events are
// dropped; a misbehaving client should not be able to kill its own
// connection or anyone else's.
func (c *Client) dispatch(msg Message) {
	switch msg.Type {
	case EventPing:
		select {
		case c.send <- Message{Type: EventPong}:
		default:
		}

	case EventJoinQuestion:
		p, err := decodeData[JoinPayload](msg.Data)
		if err != nil || p.QuestionID == "" {
			c.dropMalformed(msg.Type, err)
			return
		}
		c.hub.Join(c, QuestionRoom(p.QuestionID))

	case EventLeaveQuestion:
		p, err := decodeData[JoinPayload](msg.Data)
		if err != nil || p.QuestionID == "" {
			c.dropMalformed(msg.Type, err)
			return
		}
		c.hub.Leave(c, QuestionRoom(p.QuestionID))

	case EventJoinAnswer:
		p, err := decodeData[AnswerJoinPayload](msg.Data)
		if err != nil || p.AnswerID == "" {
			c.dropMalformed(msg.Type, err)
			return
		}
		c.hub.Join(c, AnswerRoom(p.AnswerID))

	case EventLeaveAnswer:
		p, err := decodeData[AnswerJoinPayload](msg.Data)
		if err != nil || p.AnswerID == "" {
			c.dropMalformed(msg.Type, err)
			return
		}
		c.hub.Leave(c, AnswerRoom(p.AnswerID))

	case EventTypingStart, EventTypingStop:
		p, err := decodeData[JoinPayload](msg.Data)
		if err != nil || p.QuestionID == "" {
			c.dropMalformed(msg.Type, err)
			return
		}
		relay := Message{
			Type: msg.Type,
			Data: TypingPayload{
				QuestionID: p.QuestionID,
				UserID:     c.userID,
				Username:   c.username,
			},
		}
		c.hub.BroadcastToRoom(QuestionRoom(p.QuestionID), relay, c.id)

	case EventMarkRead:
		if c.hub.notifications == nil {
			return
		}
		p, err := decodeData[MarkReadPayload](msg.Data)
		if err != nil || p.NotificationID == "" {
			c.dropMalformed(msg.Type, err)
			return
		}
		ctx := context.Background()
		if _, err := c.hub.notifications.MarkNotificationRead(ctx, c.userID, p.NotificationID); err != nil {
			logging.Warn().
				Err(err).
				Str("user_id", c.userID).
				Str("notification_id", p.NotificationID).
				Msg("failed to mark notification read")
			return
		}
		c.pushUnreadCount(ctx)

	case EventMarkAllRead:
		if c.hub.notifications == nil {
			return
		}
		ctx := context.Background()
		if _, err := c.hub.notifications.MarkAllNotificationsRead(ctx, c.userID); err != nil {
			logging.Warn().
				Err(err).
				Str("user_id", c.userID).
				Msg("failed to mark all notifications read")
			return
		}
		c.pushUnreadCount(ctx)

	default:
		metrics.WSMessagesDropped.WithLabelValues("unknown_type").Inc()
	}
}

func (c *Client) dropMalformed(eventType string, err error) {
	metrics.WSMessagesDropped.WithLabelValues("malformed").Inc()
	logging.Debug().
		Err(err).
		Str("type", eventType).
		Str("user_id", c.userID).
		Msg("dropping malformed websocket event")
}

// pushUnreadCount sends the user's current unread total to all of
// their sessions, keeping badge counts consistent across tabs.
func (c *Client) pushUnreadCount(ctx context.Context) {
	count, err := c.hub.notifications.UnreadCount(ctx, c.userID)
	if err != nil {
		logging.Warn().Err(err).Str("user_id", c.userID).Msg("failed to load unread count")
		return
	}
	c.hub.SendToUser(c.userID, Message{
		Type: EventUnreadCount,
		Data: UnreadCountPayload{Count: count},
	})
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // Explicitly ignore error - best-effort cleanup
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline")
				return
			}

			if !ok {
				// The hub closed the channel
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					logging.Error().Err(err).Msg("failed to write close message")
				}
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				metrics.WSErrors.WithLabelValues("write").Inc()
				logging.Error().Err(err).Msg("failed to write JSON message")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline for ping")
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
