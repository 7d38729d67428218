package services

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocket event vocabulary. Client-to-server frames use the ":send" /
// "typing:start" forms, server-to-client frames the past-tense forms.
const (
	EventMessageSend     = "message:send"
	EventMessageReceived = "message:received"
	EventMessageSent     = "message:sent"
	EventMessageNew      = "message:new"
	EventMatchNew        = "match:new"
	EventLikeReceived    = "like:received"
	EventTypingStart     = "typing:start"
	EventTypingStop      = "typing:stop"
	EventTypingStarted   = "typing:started"
	EventTypingStopped   = "typing:stopped"
	EventError           = "error"
)

// WSMessage represents a WebSocket frame in either direction.
type WSMessage struct {
	Type    string      `json:"type"`
	MatchID string      `json:"matchId,omitempty"`
	Content *string     `json:"content,omitempty"`
	MemeURL *string     `json:"memeUrl,omitempty"`
	SongURL *string     `json:"songUrl,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// EventSender delivers realtime events to connected users. Services treat
// delivery as best effort: an offline user is not an error worth failing a
// request over.
type EventSender interface {
	SendToUser(userID string, message WSMessage) error
	IsOnline(userID string) bool
}

// WSHub manages WebSocket connections, one per user.
type WSHub struct {
	mu          sync.RWMutex
	connections map[string]*websocket.Conn
}

// NewWSHub creates a new WebSocket hub
func NewWSHub() *WSHub {
	return &WSHub{
		connections: make(map[string]*websocket.Conn),
	}
}

// Register registers a connection for a user, displacing any existing one.
func (h *WSHub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.connections[userID]; ok {
		existing.Close()
	}
	h.connections[userID] = conn

	log.Info().Str("user_id", userID).Msg("WebSocket connection registered")
}

// Unregister removes a user's connection if the given conn is still current.
func (h *WSHub) Unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.connections[userID]; ok && current == conn {
		current.Close()
		delete(h.connections, userID)
		log.Info().Str("user_id", userID).Msg("WebSocket connection unregistered")
	}
}

// SendToUser sends a frame to a specific user
func (h *WSHub) SendToUser(userID string, message WSMessage) error {
	h.mu.RLock()
	conn, ok := h.connections[userID]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("user %s is not connected", userID)
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal frame: %w", err)
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		h.Unregister(userID, conn)
		return fmt.Errorf("failed to send frame: %w", err)
	}
	return nil
}

// IsOnline checks if a user has a live connection
func (h *WSHub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.connections[userID]
	return ok
}
