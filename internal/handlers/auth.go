package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"unicode"

	"mememates-backend/internal/apperrors"
	"mememates-backend/internal/middleware"
	"mememates-backend/internal/models"
	"mememates-backend/internal/services"

	"github.com/rs/zerolog/log"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthHandler handles signup, registration and login
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type credentialsRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type signupResponse struct {
	Message string     `json:"message"`
	User    signupUser `json:"user"`
}

// validateSignup applies the strict signup rules: display name of at least
// two characters, a well-formed email, and a password of at least eight
// characters containing an uppercase letter, a lowercase letter and a digit.
func validateSignup(req credentialsRequest) []string {
	var errs []string

	if len(strings.TrimSpace(req.Name)) < 2 {
		errs = append(errs, "Name must be at least 2 characters")
	}
	if !emailPattern.MatchString(req.Email) {
		errs = append(errs, "Invalid email address")
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range req.Password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if len(req.Password) < 8 {
		errs = append(errs, "Password must be at least 8 characters")
	}
	if !hasUpper || !hasLower || !hasDigit {
		errs = append(errs, "Password must contain an uppercase letter, a lowercase letter, and a number")
	}

	return errs
}

// Signup handles POST /api/auth/signup. Validation failures and duplicate
// emails both answer 400 with a message field, matching the web client's
// form error handling.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}

	if errs := validateSignup(req); len(errs) > 0 {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"message": "Validation failed",
			"errors":  errs,
		})
		return
	}

	user, _, err := h.authService.Register(r.Context(), strings.TrimSpace(req.Name), req.Email, req.Password)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == apperrors.CodeAlreadyExists {
			respondJSON(w, http.StatusBadRequest, map[string]string{"message": appErr.Message})
			return
		}
		log.Error().Err(err).Msg("Signup failed")
		respondJSON(w, http.StatusInternalServerError, map[string]string{"message": "Something went wrong"})
		return
	}

	h.startSession(w, r, user)

	log.Info().Str("user_id", user.ID).Msg("User signed up")
	respondJSON(w, http.StatusCreated, signupResponse{
		Message: "Account created successfully",
		User:    signupUser{ID: user.ID, Name: user.Name, Email: user.Email},
	})
}

// Register handles POST /api/register, the mobile registration route. The
// response body is the bare token string; a duplicate email conflicts.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		respondError(w, "Name, email, and password are required", http.StatusBadRequest)
		return
	}

	user, token, err := h.authService.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondAppError(w, err)
		return
	}

	h.startSession(w, r, user)

	log.Info().Str("user_id", user.ID).Msg("User registered")
	respondJSON(w, http.StatusCreated, token)
}

// Login handles POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		respondError(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	user, token, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondAppError(w, err)
		return
	}

	h.startSession(w, r, user)

	log.Info().Str("user_id", user.ID).Msg("User logged in")
	respondJSON(w, http.StatusOK, token)
}

// startSession records a server-side session and sets its cookie. A session
// store failure is logged but does not fail the login: the bearer token is
// still valid for the API surface.
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, user *models.User) {
	sessionID, err := h.authService.StartSession(r.Context(), user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to start session")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
