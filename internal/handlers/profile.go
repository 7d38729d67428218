package handlers

import (
	"encoding/json"
	"net/http"

	"mememates-backend/internal/middleware"
	"mememates-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// ProfileHandler handles profile retrieval and mutation
type ProfileHandler struct {
	profileService *services.ProfileService
	sessions       services.SessionStore
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService *services.ProfileService, sessions services.SessionStore) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		sessions:       sessions,
	}
}

// GetUser handles GET /api/user. The profile returned is always the token
// holder's own; there is no way to request someone else's by id.
func (h *ProfileHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.profileService.Get(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// UpdateProfile handles POST /api/profile. Only fields present in the body
// change; completing onboarding also updates the live session so the page
// gate stops redirecting immediately.
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var update services.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondError(w, "Invalid input data", http.StatusBadRequest)
		return
	}
	if update.IsEmpty() {
		respondError(w, "Invalid input data", http.StatusBadRequest)
		return
	}

	userID := middleware.GetUserID(r.Context())
	user, err := h.profileService.Update(r.Context(), userID, &update)
	if err != nil {
		respondAppError(w, err)
		return
	}

	if update.Onboarded {
		if sessionID := middleware.GetSessionID(r.Context()); sessionID != "" {
			if err := h.sessions.SetNewUser(r.Context(), sessionID, false); err != nil {
				log.Error().Err(err).Str("user_id", userID).Msg("Failed to update session onboarding flag")
			}
		}
	}

	log.Info().Str("user_id", userID).Msg("Profile updated")
	respondJSON(w, http.StatusOK, user)
}
