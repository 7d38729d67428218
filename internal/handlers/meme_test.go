package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mememates-backend/internal/middleware"
	"mememates-backend/internal/models"
	"mememates-backend/internal/repository"
	"mememates-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memMemeStore struct {
	memes []*models.Meme
}

func (s *memMemeStore) Create(_ context.Context, meme *models.Meme) error {
	s.memes = append(s.memes, meme)
	return nil
}

func (s *memMemeStore) GetByID(_ context.Context, id string) (*models.Meme, error) {
	for _, meme := range s.memes {
		if meme.ID == id {
			return meme, nil
		}
	}
	return nil, repository.ErrMemeNotFound
}

func clamp(memes []*models.Meme, limit, offset int) []*models.Meme {
	if offset >= len(memes) {
		return nil
	}
	end := offset + limit
	if end > len(memes) {
		end = len(memes)
	}
	return memes[offset:end]
}

func (s *memMemeStore) List(_ context.Context, filter repository.MemeFilter, limit, offset int) ([]*models.Meme, int, error) {
	var filtered []*models.Meme
	for _, meme := range s.memes {
		if filter.Mood != "" && meme.Mood != filter.Mood {
			continue
		}
		if filter.Style != "" && meme.Style != filter.Style {
			continue
		}
		filtered = append(filtered, meme)
	}
	return clamp(filtered, limit, offset), len(filtered), nil
}

func (s *memMemeStore) Search(_ context.Context, query string, limit, offset int) ([]*models.Meme, int, error) {
	needle := strings.ToLower(query)
	var matched []*models.Meme
	for _, meme := range s.memes {
		if strings.Contains(strings.ToLower(meme.Prompt), needle) ||
			strings.Contains(strings.ToLower(meme.Style), needle) {
			matched = append(matched, meme)
		}
	}
	return clamp(matched, limit, offset), len(matched), nil
}

func (s *memMemeStore) Update(_ context.Context, id, creatorID string, patch repository.MemePatch) (*models.Meme, error) {
	for _, meme := range s.memes {
		if meme.ID == id && meme.CreatorID == creatorID {
			if patch.Prompt != "" {
				meme.Prompt = patch.Prompt
			}
			if patch.Mood != "" {
				meme.Mood = patch.Mood
			}
			if patch.Style != "" {
				meme.Style = patch.Style
			}
			return meme, nil
		}
	}
	return nil, repository.ErrMemeNotFound
}

func (s *memMemeStore) Delete(_ context.Context, id, creatorID string) error {
	for i, meme := range s.memes {
		if meme.ID == id && meme.CreatorID == creatorID {
			s.memes = append(s.memes[:i], s.memes[i+1:]...)
			return nil
		}
	}
	return repository.ErrMemeNotFound
}

type memeTestEnv struct {
	router chi.Router
	store  *memMemeStore
	auth   *services.AuthService
}

func newMemeTestEnv(t *testing.T) *memeTestEnv {
	t.Helper()

	store := &memMemeStore{}
	authService := services.NewAuthService(newMemUserStore(), newMemSessionStore(), "test-secret")
	handler := NewMemeHandler(services.NewMemeService(store), services.NewMemeGenService("", ""))

	r := chi.NewRouter()
	r.Get("/api/memes", handler.ListMemes)
	r.Get("/api/memes/search", handler.SearchMemes)
	r.Get("/api/memes/{id}", handler.GetMeme)
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(authService))
		r.Post("/api/memes", handler.CreateMeme)
		r.Patch("/api/memes/{id}", handler.UpdateMeme)
		r.Delete("/api/memes/{id}", handler.DeleteMeme)
	})

	return &memeTestEnv{router: r, store: store, auth: authService}
}

func (env *memeTestEnv) seed(prompt, mood, style, creatorID string) *models.Meme {
	meme := &models.Meme{
		ID:        fmt.Sprintf("meme-%d", len(env.store.memes)+1),
		CreatorID: creatorID,
		ImageURL:  fmt.Sprintf("https://img.example/%d.jpg", len(env.store.memes)+1),
		Prompt:    prompt,
		Mood:      mood,
		Style:     style,
		CreatedAt: time.Now(),
	}
	env.store.memes = append(env.store.memes, meme)
	return meme
}

func (env *memeTestEnv) do(t *testing.T, method, target, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func TestSearchMemesPaginates(t *testing.T) {
	env := newMemeTestEnv(t)
	env.seed("Happy cat", "HAPPY", "MEME", "creator-1")
	env.seed("Happy dog", "HAPPY", "MEME", "creator-1")
	env.seed("Happy bird", "HAPPY", "MEME", "creator-2")
	env.seed("Grumpy cat", "SAD", "MEME", "creator-1")

	rec := env.do(t, http.MethodGet, "/api/memes/search?q=happy&limit=2", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body memeSearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"https://img.example/1.jpg", "https://img.example/2.jpg"}, body.Memes)
	assert.Equal(t, 1, body.Pagination.CurrentPage)
	assert.Equal(t, 2, body.Pagination.TotalPages)
	assert.Equal(t, 3, body.Pagination.TotalMemes)
	assert.Equal(t, 2, body.Pagination.Limit)
}

func TestListMemesCountMatchesFilter(t *testing.T) {
	env := newMemeTestEnv(t)
	env.seed("Happy cat", "HAPPY", "MEME", "creator-1")
	env.seed("Happy dog", "HAPPY", "MEME", "creator-1")
	env.seed("Grumpy cat", "SAD", "DARK", "creator-1")

	rec := env.do(t, http.MethodGet, "/api/memes?mood=HAPPY", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body memePageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Memes, 2)
	assert.Equal(t, 2, body.Pagination.TotalMemes)
}

func TestCreateMemeRequiresAuth(t *testing.T) {
	env := newMemeTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/memes", `{"imageUrl":"https://img.example/x.jpg","prompt":"x"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateMemeWithToken(t *testing.T) {
	env := newMemeTestEnv(t)
	token, err := env.auth.GenerateToken("creator-1", "alice@example.com")
	require.NoError(t, err)

	rec := env.do(t, http.MethodPost, "/api/memes", `{"imageUrl":"https://img.example/x.jpg","prompt":"a happy cat"}`, token)
	require.Equal(t, http.StatusCreated, rec.Code)

	var meme models.Meme
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &meme))
	assert.Equal(t, models.DefaultMood, meme.Mood)
	assert.Equal(t, models.DefaultStyle, meme.Style)
	require.Len(t, env.store.memes, 1)
	assert.Equal(t, "creator-1", env.store.memes[0].CreatorID)
}

func TestUpdateMemeByNonOwnerIs404(t *testing.T) {
	env := newMemeTestEnv(t)
	meme := env.seed("Happy cat", "HAPPY", "MEME", "creator-1")

	token, err := env.auth.GenerateToken("intruder", "intruder@example.com")
	require.NoError(t, err)

	rec := env.do(t, http.MethodPatch, "/api/memes/"+meme.ID, `{"prompt":"stolen"}`, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Happy cat", env.store.memes[0].Prompt)
}

func TestDeleteMemeByOwner(t *testing.T) {
	env := newMemeTestEnv(t)
	meme := env.seed("Happy cat", "HAPPY", "MEME", "creator-1")

	token, err := env.auth.GenerateToken("creator-1", "alice@example.com")
	require.NoError(t, err)

	rec := env.do(t, http.MethodDelete, "/api/memes/"+meme.ID, "", token)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Meme deleted successfully", body["message"])
	assert.Empty(t, env.store.memes)
}

func TestGetMemeNotFound(t *testing.T) {
	env := newMemeTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/memes/missing", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
