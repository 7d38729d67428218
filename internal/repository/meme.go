package repository

import (
	"context"
	"errors"
	"fmt"

	"mememates-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrMemeNotFound is returned when a meme lookup matches no row. Owner-scoped
// mutations report it for foreign memes too, so non-owners cannot tell a
// foreign meme from a missing one.
var ErrMemeNotFound = errors.New("meme not found")

// MemeFilter narrows meme listing by exact mood/style values. Empty fields
// match everything.
type MemeFilter struct {
	Mood  string
	Style string
}

// MemePatch carries the mutable fields of a meme update. Empty fields are
// left untouched.
type MemePatch struct {
	Prompt string
	Mood   string
	Style  string
}

// MemeRepository handles database operations for memes
type MemeRepository struct {
	db *pgxpool.Pool
}

// NewMemeRepository creates a new meme repository
func NewMemeRepository(db *pgxpool.Pool) *MemeRepository {
	return &MemeRepository{db: db}
}

// Create creates a new meme
func (r *MemeRepository) Create(ctx context.Context, meme *models.Meme) error {
	query := `
		INSERT INTO memes (id, creator_id, image_url, prompt, mood, style, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		meme.ID, meme.CreatorID, meme.ImageURL, meme.Prompt,
		meme.Mood, meme.Style, meme.Metadata, meme.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create meme: %w", err)
	}
	return nil
}

// GetByID retrieves a meme with its creator summary
func (r *MemeRepository) GetByID(ctx context.Context, id string) (*models.Meme, error) {
	query := `
		SELECT m.id, m.creator_id, m.image_url, m.prompt, m.mood, m.style,
		       m.metadata, m.created_at, u.id, u.name, u.image
		FROM memes m
		JOIN users u ON u.id = m.creator_id
		WHERE m.id = $1
	`
	var meme models.Meme
	var creator models.UserSummary
	err := r.db.QueryRow(ctx, query, id).Scan(
		&meme.ID, &meme.CreatorID, &meme.ImageURL, &meme.Prompt,
		&meme.Mood, &meme.Style, &meme.Metadata, &meme.CreatedAt,
		&creator.ID, &creator.Name, &creator.Image,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemeNotFound
		}
		return nil, fmt.Errorf("failed to get meme: %w", err)
	}
	meme.Creator = &creator
	return &meme, nil
}

// List retrieves memes newest first under the given filter, plus the total
// count under the identical filter.
func (r *MemeRepository) List(ctx context.Context, filter MemeFilter, limit, offset int) ([]*models.Meme, int, error) {
	where := `WHERE ($1 = '' OR m.mood = $1) AND ($2 = '' OR m.style = $2)`

	countQuery := `SELECT COUNT(*) FROM memes m ` + where
	var total int
	if err := r.db.QueryRow(ctx, countQuery, filter.Mood, filter.Style).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count memes: %w", err)
	}

	query := `
		SELECT m.id, m.creator_id, m.image_url, m.prompt, m.mood, m.style,
		       m.metadata, m.created_at, u.id, u.name, u.image
		FROM memes m
		JOIN users u ON u.id = m.creator_id
		` + where + `
		ORDER BY m.created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, filter.Mood, filter.Style, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list memes: %w", err)
	}
	defer rows.Close()

	memes, err := collectMemes(rows)
	if err != nil {
		return nil, 0, err
	}
	return memes, total, nil
}

// Search retrieves memes whose prompt or style contains the query,
// case-insensitive, newest first, plus the matching total. An empty query
// matches every meme.
func (r *MemeRepository) Search(ctx context.Context, query string, limit, offset int) ([]*models.Meme, int, error) {
	where := `WHERE m.prompt ILIKE '%' || $1 || '%' OR m.style ILIKE '%' || $1 || '%'`

	countQuery := `SELECT COUNT(*) FROM memes m ` + where
	var total int
	if err := r.db.QueryRow(ctx, countQuery, query).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count memes: %w", err)
	}

	listQuery := `
		SELECT m.id, m.creator_id, m.image_url, m.prompt, m.mood, m.style,
		       m.metadata, m.created_at, u.id, u.name, u.image
		FROM memes m
		JOIN users u ON u.id = m.creator_id
		` + where + `
		ORDER BY m.created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, listQuery, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search memes: %w", err)
	}
	defer rows.Close()

	memes, err := collectMemes(rows)
	if err != nil {
		return nil, 0, err
	}
	return memes, total, nil
}

// Update mutates a meme scoped by (id AND creator). Zero rows affected is
// reported as not found.
func (r *MemeRepository) Update(ctx context.Context, id, creatorID string, patch MemePatch) (*models.Meme, error) {
	query := `
		UPDATE memes SET
			prompt = CASE WHEN $1 = '' THEN prompt ELSE $1 END,
			mood = CASE WHEN $2 = '' THEN mood ELSE $2 END,
			style = CASE WHEN $3 = '' THEN style ELSE $3 END
		WHERE id = $4 AND creator_id = $5
		RETURNING id, creator_id, image_url, prompt, mood, style, metadata, created_at
	`
	var meme models.Meme
	err := r.db.QueryRow(ctx, query, patch.Prompt, patch.Mood, patch.Style, id, creatorID).Scan(
		&meme.ID, &meme.CreatorID, &meme.ImageURL, &meme.Prompt,
		&meme.Mood, &meme.Style, &meme.Metadata, &meme.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemeNotFound
		}
		return nil, fmt.Errorf("failed to update meme: %w", err)
	}
	return &meme, nil
}

// Delete removes a meme scoped by (id AND creator). Zero rows affected is
// reported as not found.
func (r *MemeRepository) Delete(ctx context.Context, id, creatorID string) error {
	query := `DELETE FROM memes WHERE id = $1 AND creator_id = $2`
	result, err := r.db.Exec(ctx, query, id, creatorID)
	if err != nil {
		return fmt.Errorf("failed to delete meme: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrMemeNotFound
	}
	return nil
}

func collectMemes(rows pgx.Rows) ([]*models.Meme, error) {
	var memes []*models.Meme
	for rows.Next() {
		var meme models.Meme
		var creator models.UserSummary
		err := rows.Scan(
			&meme.ID, &meme.CreatorID, &meme.ImageURL, &meme.Prompt,
			&meme.Mood, &meme.Style, &meme.Metadata, &meme.CreatedAt,
			&creator.ID, &creator.Name, &creator.Image,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meme: %w", err)
		}
		meme.Creator = &creator
		memes = append(memes, &meme)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating memes: %w", err)
	}
	return memes, nil
}
