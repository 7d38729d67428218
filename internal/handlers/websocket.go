package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"mememates-backend/internal/middleware"
	"mememates-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for MVP
	},
}

// WebSocketHandler handles the realtime chat connection
type WebSocketHandler struct {
	hub          *services.WSHub
	verifier     middleware.TokenVerifier
	matchService *services.MatchService
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *services.WSHub, verifier middleware.TokenVerifier, matchService *services.MatchService) *WebSocketHandler {
	return &WebSocketHandler{
		hub:          hub,
		verifier:     verifier,
		matchService: matchService,
	}
}

// HandleWebSocket handles GET /ws. Identity comes from the token query
// parameter because browsers cannot set headers on WebSocket upgrades.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, "token required", http.StatusUnauthorized)
		return
	}

	claims, err := h.verifier.ValidateToken(token)
	if err != nil {
		respondError(w, "invalid token", http.StatusUnauthorized)
		return
	}
	userID := claims.UserID

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	h.hub.Register(userID, conn)
	defer h.hub.Unregister(userID, conn)

	log.Info().Str("user_id", userID).Msg("WebSocket connection established")

	ctx := r.Context()
	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("user_id", userID).Msg("WebSocket error")
			}
			break
		}

		var msg services.WSMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to parse WebSocket message")
			h.sendError(conn, "Invalid message format")
			continue
		}

		if err := h.handleMessage(ctx, userID, msg); err != nil {
			log.Error().Err(err).Str("user_id", userID).Str("type", msg.Type).Msg("Failed to handle message")
			h.sendError(conn, err.Error())
		}
	}
}

// handleMessage dispatches one client frame
func (h *WebSocketHandler) handleMessage(ctx context.Context, userID string, msg services.WSMessage) error {
	switch msg.Type {
	case services.EventMessageSend:
		_, err := h.matchService.SendMessage(ctx, msg.MatchID, userID, msg.Content, msg.MemeURL, msg.SongURL)
		return err
	case services.EventTypingStart:
		h.matchService.NotifyTyping(ctx, msg.MatchID, userID, true)
		return nil
	case services.EventTypingStop:
		h.matchService.NotifyTyping(ctx, msg.MatchID, userID, false)
		return nil
	default:
		log.Warn().Str("user_id", userID).Str("type", msg.Type).Msg("Unknown WebSocket message type")
		return nil
	}
}

func (h *WebSocketHandler) sendError(conn *websocket.Conn, message string) {
	frame := services.WSMessage{
		Type:    services.EventError,
		Message: message,
	}
	data, err := json.Marshal(frame)
	if err != nil {
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Error().Err(err).Msg("Failed to send error frame")
	}
}
