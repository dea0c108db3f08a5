// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/colloquy/internal/realtime"
)

const (
	defaultNotificationLimit = 20
	maxNotificationLimit     = 100
)

// ListNotifications handles GET /api/v1/notifications. Supports
// limit/offset paging and unread_only filtering; results are newest
// first.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	p, ok := h.principal(rw, r)
	if !ok {
		return
	}

	limit := queryInt(r, "limit", defaultNotificationLimit)
	if limit < 1 || limit > maxNotificationLimit {
		rw.BadRequest("limit must be between 1 and 100")
		return
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		rw.BadRequest("offset must not be negative")
		return
	}
	unreadOnly := r.URL.Query().Get("unread_only") == "true"

	// Fetch one extra row to learn whether more pages exist.
	items, err := h.store.ListNotifications(r.Context(), p.ID, limit+1, offset, unreadOnly)
	if err != nil {
		writeStoreError(rw, err)
		return
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	rw.SuccessWithPagination(items, &PaginationMeta{
		Count:   len(items),
		Offset:  offset,
		Limit:   limit,
		HasMore: hasMore,
	})
}

// UnreadCountResponse is the data payload of the unread-count endpoint.
type UnreadCountResponse struct {
	Count int `json:"count"`
}

// UnreadNotificationCount handles GET /api/v1/notifications/unread-count.
func (h *Handler) UnreadNotificationCount(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	p, ok := h.principal(rw, r)
	if !ok {
		return
	}

	count, err := h.store.UnreadCount(r.Context(), p.ID)
	if err != nil {
		writeStoreError(rw, err)
		return
	}

	rw.Success(UnreadCountResponse{Count: count})
}

// MarkNotificationRead handles POST /api/v1/notifications/{id}/read.
// Marking an already-read notification succeeds without change. The
// refreshed unread count is pushed to the user's open sessions so
// badges converge across tabs.
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	p, ok := h.principal(rw, r)
	if !ok {
		return
	}

	n, err := h.store.MarkNotificationRead(r.Context(), p.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(rw, err)
		return
	}

	h.pushUnreadCount(r, p.ID)
	rw.Success(n)
}

// MarkAllResponse is the data payload of the mark-all endpoint.
type MarkAllResponse struct {
	Marked int `json:"marked"`
}

// MarkAllNotificationsRead handles POST /api/v1/notifications/read-all.
func (h *Handler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	p, ok := h.principal(rw, r)
	if !ok {
		return
	}

	marked, err := h.store.MarkAllNotificationsRead(r.Context(), p.ID)
	if err != nil {
		writeStoreError(rw, err)
		return
	}

	h.pushUnreadCount(r, p.ID)
	rw.Success(MarkAllResponse{Marked: marked})
}

// DeleteNotification handles DELETE /api/v1/notifications/{id}.
func (h *Handler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	p, ok := h.principal(rw, r)
	if !ok {
		return
	}

	if err := h.store.DeleteNotification(r.Context(), p.ID, chi.URLParam(r, "id")); err != nil {
		writeStoreError(rw, err)
		return
	}

	h.pushUnreadCount(r, p.ID)
	rw.NoContent()
}

// pushUnreadCount refreshes the unread badge on the user's open
// sessions after a REST-side mutation. Best effort: a count read
// failure only skips the push.
func (h *Handler) pushUnreadCount(r *http.Request, userID string) {
	if h.hub == nil || !h.hub.IsOnline(userID) {
		return
	}
	count, err := h.store.UnreadCount(r.Context(), userID)
	if err != nil {
		return
	}
	h.hub.SendToUser(userID, realtime.Message{
		Type: realtime.EventUnreadCount,
		Data: realtime.UnreadCountPayload{Count: count},
	})
}

// queryInt parses an integer query parameter with a default. A value
// that fails to parse returns -1 so range checks reject it.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return v
}
