package services

import (
	"context"
	"errors"
	"time"

	"mememates-backend/internal/apperrors"
	"mememates-backend/internal/models"
	"mememates-backend/internal/repository"

	"github.com/google/uuid"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// MemeStore is the subset of the meme repository the meme service needs.
type MemeStore interface {
	Create(ctx context.Context, meme *models.Meme) error
	GetByID(ctx context.Context, id string) (*models.Meme, error)
	List(ctx context.Context, filter repository.MemeFilter, limit, offset int) ([]*models.Meme, int, error)
	Search(ctx context.Context, query string, limit, offset int) ([]*models.Meme, int, error)
	Update(ctx context.Context, id, creatorID string, patch repository.MemePatch) (*models.Meme, error)
	Delete(ctx context.Context, id, creatorID string) error
}

// MemeService handles meme CRUD and search
type MemeService struct {
	memes MemeStore
}

// NewMemeService creates a new meme service
func NewMemeService(memes MemeStore) *MemeService {
	return &MemeService{memes: memes}
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

func paginate(page, limit, total int) models.Pagination {
	totalPages := (total + limit - 1) / limit
	return models.Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalMemes:  total,
		Limit:       limit,
	}
}

// List returns a page of memes under optional mood/style equality filters.
// The pagination envelope is computed from a count under the same filter.
func (s *MemeService) List(ctx context.Context, mood, style string, page, limit int) ([]*models.Meme, models.Pagination, error) {
	page, limit = normalizePage(page, limit)
	filter := repository.MemeFilter{Mood: mood, Style: style}

	memes, total, err := s.memes.List(ctx, filter, limit, (page-1)*limit)
	if err != nil {
		return nil, models.Pagination{}, apperrors.Wrap(apperrors.CodeInternal, "Failed to retrieve memes", err)
	}
	return memes, paginate(page, limit, total), nil
}

// Search returns a page of bare image URLs matching the free-text query over
// prompt and style. An empty query matches everything. The narrow URL-only
// payload is a deliberate contract for lightweight pickers.
func (s *MemeService) Search(ctx context.Context, query string, page, limit int) ([]string, models.Pagination, error) {
	page, limit = normalizePage(page, limit)

	memes, total, err := s.memes.Search(ctx, query, limit, (page-1)*limit)
	if err != nil {
		return nil, models.Pagination{}, apperrors.Wrap(apperrors.CodeInternal, "Failed to search memes", err)
	}

	urls := make([]string, 0, len(memes))
	for _, meme := range memes {
		urls = append(urls, meme.ImageURL)
	}
	return urls, paginate(page, limit, total), nil
}

// Create stores a new meme for the verified creator. Mood and style fall
// back to fixed defaults when omitted.
func (s *MemeService) Create(ctx context.Context, creatorID, imageURL, prompt, mood, style string) (*models.Meme, error) {
	if imageURL == "" || prompt == "" {
		return nil, apperrors.InvalidArg("Image URL and prompt are required")
	}
	if mood == "" {
		mood = models.DefaultMood
	}
	if style == "" {
		style = models.DefaultStyle
	}

	meme := &models.Meme{
		ID:        uuid.New().String(),
		CreatorID: creatorID,
		ImageURL:  imageURL,
		Prompt:    prompt,
		Mood:      mood,
		Style:     style,
		CreatedAt: time.Now(),
	}
	if err := s.memes.Create(ctx, meme); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "Failed to create meme", err)
	}
	return meme, nil
}

// Get returns a single meme with its creator summary
func (s *MemeService) Get(ctx context.Context, id string) (*models.Meme, error) {
	meme, err := s.memes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMemeNotFound) {
			return nil, apperrors.NotFound("Meme not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "Failed to retrieve meme", err)
	}
	return meme, nil
}

// Update mutates a meme scoped by (id AND creator). A non-owner's request
// affects zero rows and reports not found, never revealing the meme exists.
func (s *MemeService) Update(ctx context.Context, id, creatorID string, patch repository.MemePatch) (*models.Meme, error) {
	if patch.Prompt == "" && patch.Mood == "" && patch.Style == "" {
		return nil, apperrors.InvalidArg("No update data provided")
	}

	meme, err := s.memes.Update(ctx, id, creatorID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrMemeNotFound) {
			return nil, apperrors.NotFound("Meme not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "Failed to update meme", err)
	}
	return meme, nil
}

// Delete removes a meme scoped by (id AND creator), with the same not-found
// contract as Update.
func (s *MemeService) Delete(ctx context.Context, id, creatorID string) error {
	err := s.memes.Delete(ctx, id, creatorID)
	if err != nil {
		if errors.Is(err, repository.ErrMemeNotFound) {
			return apperrors.NotFound("Meme not found")
		}
		return apperrors.Wrap(apperrors.CodeInternal, "Failed to delete meme", err)
	}
	return nil
}
