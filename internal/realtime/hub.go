// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package realtime

import (
	"context"
	"sort"
	"sync"

	"github.com/tomtom215/colloquy/internal/config"
	"github.com/tomtom215/colloquy/internal/logging"
	"github.com/tomtom215/colloquy/internal/metrics"
	"github.com/tomtom215/colloquy/internal/models"
)

// ShutdownReason identifies why the hub is shutting down.
// This enables clear observability in logs and metrics.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled indicates the parent context was canceled.
	// This is the normal graceful shutdown path (e.g., SIGTERM).
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline indicates the context deadline was exceeded.
	// This may indicate a hung operation during shutdown.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// NotificationStore is the subset of the document store the hub needs
// to service read-marking events sent over the socket.
type NotificationStore interface {
	MarkNotificationRead(ctx context.Context, recipientID, notificationID string) (*models.Notification, error)
	MarkAllNotificationsRead(ctx context.Context, recipientID string) (int, error)
	UnreadCount(ctx context.Context, recipientID string) (int, error)
}

// RoomMessage targets a message at the members of a single room.
// ExcludeID suppresses delivery to the originating client (typing
// relays should not echo back to the typist); zero means deliver to
// every member.
type RoomMessage struct {
	Room      string
	Message   Message
	ExcludeID uint64
}

// Hub maintains the set of active clients, their room memberships, and
// fans messages out to room members.
type Hub struct {
	clients map[*Client]bool
	rooms   map[string]map[*Client]bool

	broadcast  chan RoomMessage
	Register   chan *Client
	Unregister chan *Client

	notifications NotificationStore
	cfg           config.RealtimeConfig
	mu            sync.RWMutex
}

// NewHub creates a new Hub. The notification store may be nil in which
// case read-marking socket events are ignored.
func NewHub(cfg config.RealtimeConfig, notifications NotificationStore) *Hub {
	return &Hub{
		clients:       make(map[*Client]bool),
		rooms:         make(map[string]map[*Client]bool),
		broadcast:     make(chan RoomMessage, cfg.BroadcastBuffer),
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		notifications: notifications,
		cfg:           cfg,
	}
}

// RunWithContext starts the hub's main loop and blocks until the
// context is canceled.
//
// DETERMINISM: Uses priority-based selection to ensure predictable behavior:
// - Priority 1: Context cancellation (shutdown)
// - Priority 2: Client lifecycle events (Register/Unregister)
// - Priority 3: Room broadcasts
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		// DETERMINISM: Priority-based selection prevents non-deterministic
		// ordering when multiple channels are ready simultaneously.

		// Priority 1: Check for shutdown (highest priority, non-blocking)
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
			// Context not canceled, continue
		}

		// Priority 2: Handle client lifecycle events (non-blocking check)
		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.removeClient(client)
			continue
		default:
			// No lifecycle events pending
		}

		// Priority 3: Handle room broadcasts or wait for any event (blocking)
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()

		case client := <-h.Register:
			h.addClient(client)

		case client := <-h.Unregister:
			h.removeClient(client)

		case rm := <-h.broadcast:
			h.deliverToRoom(rm)
		}
	}
}

// addClient registers a client and auto-joins its user room so that
// per-user pushes reach every open session.
func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	h.joinLocked(client, UserRoom(client.userID))
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Inc()
	logging.Info().
		Str("user_id", client.userID).
		Int("total_clients", total).
		Msg("websocket client connected")
}

// removeClient drops a client from every room it joined and closes its
// send channel. Safe to call for clients that were already removed.
func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	removed := false
	if _, ok := h.clients[client]; ok {
		h.removeClientLocked(client)
		removed = true
	}
	total := len(h.clients)
	h.mu.Unlock()

	if removed {
		metrics.WSConnections.Dec()
		logging.Info().
			Str("user_id", client.userID).
			Int("total_clients", total).
			Msg("websocket client disconnected")
	}
}

// removeClientLocked requires h.mu to be held.
func (h *Hub) removeClientLocked(client *Client) {
	for room := range client.rooms {
		h.leaveLocked(client, room)
	}
	delete(h.clients, client)
	close(client.send)
}

// Join adds the client to a room. Idempotent.
func (h *Hub) Join(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; !ok {
		return
	}
	h.joinLocked(client, room)
}

// Leave removes the client from a room. A client cannot leave its own
// user room; that membership lasts for the life of the connection.
func (h *Hub) Leave(client *Client, room string) {
	if room == UserRoom(client.userID) {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(client, room)
}

// joinLocked requires h.mu to be held.
func (h *Hub) joinLocked(client *Client, room string) {
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]bool)
		h.rooms[room] = members
		metrics.WSRooms.Inc()
	}
	members[client] = true
	client.rooms[room] = true
}

// leaveLocked requires h.mu to be held.
func (h *Hub) leaveLocked(client *Client, room string) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, client)
	delete(client.rooms, room)
	if len(members) == 0 {
		delete(h.rooms, room)
		metrics.WSRooms.Dec()
	}
}

// BroadcastToRoom queues a message for every member of a room. The
// call never blocks; if the hub's broadcast queue is full the message
// is dropped with a warning rather than stalling the caller.
func (h *Hub) BroadcastToRoom(room string, msg Message, excludeID uint64) {
	rm := RoomMessage{Room: room, Message: msg, ExcludeID: excludeID}
	select {
	case h.broadcast <- rm:
	default:
		metrics.WSMessagesDropped.WithLabelValues("broadcast_full").Inc()
		logging.Warn().
			Str("room", room).
			Str("type", msg.Type).
			Msg("broadcast channel full, dropping message")
	}
}

// SendToUser delivers a message to every open session of a user.
func (h *Hub) SendToUser(userID string, msg Message) {
	h.BroadcastToRoom(UserRoom(userID), msg, 0)
}

// IsOnline reports whether the user has at least one open session.
func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[UserRoom(userID)]) > 0
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomCount returns the number of rooms with at least one member.
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// deliverToRoom sends a message to all members of a room in a
// deterministic order.
// DETERMINISM: Sorts members by client ID to ensure consistent
// iteration order. This prevents non-deterministic delivery order
// which could cause non-reproducible behavior in tests and
// unpredictable acknowledgment sequences.
func (h *Hub) deliverToRoom(rm RoomMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members := h.rooms[rm.Room]
	if len(members) == 0 {
		return
	}

	// DETERMINISM: Extract member pointers and sort for consistent ordering.
	clients := make([]*Client, 0, len(members))
	for client := range members {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	// Track clients to remove (can't modify map during iteration)
	var toRemove []*Client

	for _, client := range clients {
		if rm.ExcludeID != 0 && client.id == rm.ExcludeID {
			continue
		}
		select {
		case client.send <- rm.Message:
			metrics.WSMessagesSent.Inc()
		default:
			// Send buffer full: the client has fallen too far behind
			// to be worth keeping.
			metrics.WSMessagesDropped.WithLabelValues("slow_consumer").Inc()
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		h.removeClientLocked(client)
		metrics.WSConnections.Dec()
		logging.Warn().
			Str("user_id", client.userID).
			Str("room", rm.Room).
			Msg("disconnecting slow websocket client")
	}
}

// logGracefulShutdown closes all connected clients and logs structured
// shutdown information.
//
// Note: ctx.Err() is NOT logged as an error because context
// cancellation is expected behavior during graceful shutdown.
func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.ClientCount()

	h.closeAllClients()

	logging.Info().
		Str("component", "realtime-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", clientCount).
		Msg("realtime hub stopped")
}

// getShutdownReason determines the shutdown reason from the context error.
func getShutdownReason(ctx context.Context) ShutdownReason {
	switch ctx.Err() {
	case context.Canceled:
		return ShutdownReasonContextCanceled
	case context.DeadlineExceeded:
		return ShutdownReasonContextDeadline
	default:
		// Fallback for any future context error types
		return ShutdownReasonContextCanceled
	}
}

// closeAllClients gracefully closes all connected clients.
// DETERMINISM: Closes clients in ID order for consistent shutdown behavior.
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	for _, client := range clients {
		h.removeClientLocked(client)
		metrics.WSConnections.Dec()
	}
	logging.Info().Msg("closed all websocket clients during shutdown")
}
