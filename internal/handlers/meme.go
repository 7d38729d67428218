package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"mememates-backend/internal/middleware"
	"mememates-backend/internal/models"
	"mememates-backend/internal/repository"
	"mememates-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// MemeHandler handles meme CRUD, search and generation
type MemeHandler struct {
	memeService    *services.MemeService
	memeGenService *services.MemeGenService
}

// NewMemeHandler creates a new meme handler
func NewMemeHandler(memeService *services.MemeService, memeGenService *services.MemeGenService) *MemeHandler {
	return &MemeHandler{
		memeService:    memeService,
		memeGenService: memeGenService,
	}
}

type memePageResponse struct {
	Memes      []*models.Meme    `json:"memes"`
	Pagination models.Pagination `json:"pagination"`
}

type memeSearchResponse struct {
	Memes      []string          `json:"memes"`
	Pagination models.Pagination `json:"pagination"`
}

func queryInt(r *http.Request, name string) int {
	value, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return value
}

// ListMemes handles GET /api/memes
func (h *MemeHandler) ListMemes(w http.ResponseWriter, r *http.Request) {
	memes, pagination, err := h.memeService.List(
		r.Context(),
		r.URL.Query().Get("mood"),
		r.URL.Query().Get("style"),
		queryInt(r, "page"),
		queryInt(r, "limit"),
	)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, memePageResponse{Memes: memes, Pagination: pagination})
}

// SearchMemes handles GET /api/memes/search. The result rows are bare image
// URLs.
func (h *MemeHandler) SearchMemes(w http.ResponseWriter, r *http.Request) {
	urls, pagination, err := h.memeService.Search(
		r.Context(),
		r.URL.Query().Get("q"),
		queryInt(r, "page"),
		queryInt(r, "limit"),
	)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, memeSearchResponse{Memes: urls, Pagination: pagination})
}

type createMemeRequest struct {
	ImageURL string `json:"imageUrl"`
	Prompt   string `json:"prompt"`
	Mood     string `json:"mood"`
	Style    string `json:"style"`
}

// CreateMeme handles POST /api/memes
func (h *MemeHandler) CreateMeme(w http.ResponseWriter, r *http.Request) {
	var req createMemeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	meme, err := h.memeService.Create(r.Context(), middleware.GetUserID(r.Context()),
		req.ImageURL, req.Prompt, req.Mood, req.Style)
	if err != nil {
		respondAppError(w, err)
		return
	}

	log.Info().Str("meme_id", meme.ID).Str("creator_id", meme.CreatorID).Msg("Meme created")
	respondJSON(w, http.StatusCreated, meme)
}

// GetMeme handles GET /api/memes/{id}
func (h *MemeHandler) GetMeme(w http.ResponseWriter, r *http.Request) {
	meme, err := h.memeService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, meme)
}

type updateMemeRequest struct {
	Prompt string `json:"prompt"`
	Mood   string `json:"mood"`
	Style  string `json:"style"`
}

// UpdateMeme handles PATCH /api/memes/{id}. Only the creator can update;
// anyone else gets the same not found as a missing meme.
func (h *MemeHandler) UpdateMeme(w http.ResponseWriter, r *http.Request) {
	var req updateMemeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	meme, err := h.memeService.Update(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r.Context()),
		repository.MemePatch{Prompt: req.Prompt, Mood: req.Mood, Style: req.Style})
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, meme)
}

// DeleteMeme handles DELETE /api/memes/{id}, creator-scoped like UpdateMeme.
func (h *MemeHandler) DeleteMeme(w http.ResponseWriter, r *http.Request) {
	memeID := chi.URLParam(r, "id")
	if err := h.memeService.Delete(r.Context(), memeID, middleware.GetUserID(r.Context())); err != nil {
		respondAppError(w, err)
		return
	}

	log.Info().Str("meme_id", memeID).Msg("Meme deleted")
	respondJSON(w, http.StatusOK, map[string]string{"message": "Meme deleted successfully"})
}

// ListTemplates handles GET /api/memes/templates
func (h *MemeHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.memeGenService.Templates(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"templates": templates})
}

type generateMemeRequest struct {
	TemplateID string `json:"templateId"`
	TopText    string `json:"topText"`
	BottomText string `json:"bottomText"`
}

// GenerateMeme handles POST /api/memes/generate
func (h *MemeHandler) GenerateMeme(w http.ResponseWriter, r *http.Request) {
	var req generateMemeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	url, err := h.memeGenService.Generate(r.Context(), req.TemplateID, req.TopText, req.BottomText)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"url": url})
}
