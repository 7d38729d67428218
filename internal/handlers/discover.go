package handlers

import (
	"encoding/json"
	"net/http"

	"mememates-backend/internal/middleware"
	"mememates-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// DiscoverHandler handles the swipe deck and swipe decisions
type DiscoverHandler struct {
	discoverer   services.Discoverer
	swipeService *services.SwipeService
}

// NewDiscoverHandler creates a new discover handler
func NewDiscoverHandler(discoverer services.Discoverer, swipeService *services.SwipeService) *DiscoverHandler {
	return &DiscoverHandler{
		discoverer:   discoverer,
		swipeService: swipeService,
	}
}

// statusEnvelope is the response shape shared by the discovery, match and
// notification routes.
type statusEnvelope struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
}

func respondSuccess(w http.ResponseWriter, statusCode int, data interface{}) {
	respondJSON(w, statusCode, statusEnvelope{Status: "success", Data: data})
}

// Discover handles GET /api/profiles/discover
func (h *DiscoverHandler) Discover(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.discoverer.Discover(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{"profiles": profiles})
}

type swipeRequest struct {
	TargetID  string `json:"targetId"`
	Direction string `json:"direction"`
}

// Swipe handles POST /api/swipes
func (h *DiscoverHandler) Swipe(w http.ResponseWriter, r *http.Request) {
	var req swipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	swiperID := middleware.GetUserID(r.Context())
	result, err := h.swipeService.Swipe(r.Context(), swiperID, req.TargetID, req.Direction)
	if err != nil {
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("swiper_id", swiperID).
		Str("target_id", req.TargetID).
		Str("direction", req.Direction).
		Bool("matched", result.Matched).
		Msg("Swipe recorded")
	respondSuccess(w, http.StatusOK, result)
}
