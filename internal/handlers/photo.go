package handlers

import (
	"encoding/json"
	"net/http"

	"mememates-backend/internal/middleware"
	"mememates-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// PhotoHandler handles profile photo upload URLs
type PhotoHandler struct {
	photoService *services.PhotoService
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(photoService *services.PhotoService) *PhotoHandler {
	return &PhotoHandler{photoService: photoService}
}

type uploadRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
}

// RequestUpload handles POST /api/photos/upload. The response carries a
// short-lived pre-signed PUT URL; the client uploads directly to storage.
func (h *PhotoHandler) RequestUpload(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Filename == "" {
		respondError(w, "filename is required", http.StatusBadRequest)
		return
	}
	if req.ContentType == "" {
		req.ContentType = "image/jpeg"
	}

	userID := middleware.GetUserID(r.Context())
	upload, err := h.photoService.PresignUpload(r.Context(), userID, req.Filename, req.ContentType)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to generate upload URL")
		respondError(w, "Failed to generate upload URL", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, upload)
}
