package handlers

import (
	"encoding/json"
	"net/http"

	"mememates-backend/internal/middleware"
	"mememates-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// MatchHandler handles match listing and the chat flow
type MatchHandler struct {
	matchService *services.MatchService
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(matchService *services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

// ListMatches handles GET /api/matches
func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.matchService.ListForUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{"matches": matches})
}

// GetMatch handles GET /api/matches/{id}
func (h *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	match, err := h.matchService.GetForUser(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r.Context()))
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{"match": match})
}

// ListMessages handles GET /api/messages?matchId=
func (h *MatchHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	matchID := r.URL.Query().Get("matchId")
	if matchID == "" {
		respondError(w, "matchId is required", http.StatusBadRequest)
		return
	}

	messages, err := h.matchService.Messages(r.Context(), matchID, middleware.GetUserID(r.Context()))
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{"messages": messages})
}

type sendMessageRequest struct {
	MatchID string  `json:"matchId"`
	Content *string `json:"content"`
	MemeURL *string `json:"memeUrl"`
	SongURL *string `json:"songUrl"`
}

// SendMessage handles POST /api/messages
func (h *MatchHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.MatchID == "" {
		respondError(w, "matchId is required", http.StatusBadRequest)
		return
	}

	senderID := middleware.GetUserID(r.Context())
	msg, err := h.matchService.SendMessage(r.Context(), req.MatchID, senderID, req.Content, req.MemeURL, req.SongURL)
	if err != nil {
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("message_id", msg.ID).
		Str("match_id", req.MatchID).
		Str("sender_id", senderID).
		Msg("Message sent")
	respondSuccess(w, http.StatusCreated, map[string]interface{}{"message": msg})
}

// MarkMessageRead handles PATCH /api/messages/{id}/read
func (h *MatchHandler) MarkMessageRead(w http.ResponseWriter, r *http.Request) {
	err := h.matchService.MarkMessageRead(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r.Context()))
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, nil)
}
