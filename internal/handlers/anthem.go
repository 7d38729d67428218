package handlers

import (
	"net/http"

	"mememates-backend/internal/models"
	"mememates-backend/internal/services"
)

// AnthemHandler handles anthem song search
type AnthemHandler struct {
	anthemService *services.AnthemService
}

// NewAnthemHandler creates a new anthem handler
func NewAnthemHandler(anthemService *services.AnthemService) *AnthemHandler {
	return &AnthemHandler{anthemService: anthemService}
}

type anthemSearchResponse struct {
	Tracks []models.Track `json:"tracks"`
	Total  int            `json:"total"`
}

// Search handles GET /api/anthem/search
func (h *AnthemHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondError(w, "Search query is required", http.StatusBadRequest)
		return
	}

	tracks, total, err := h.anthemService.Search(r.Context(), query)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, anthemSearchResponse{Tracks: tracks, Total: total})
}
