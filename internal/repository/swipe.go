package repository

import (
	"context"
	"fmt"

	"mememates-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SwipeRepository handles database operations for swipes
type SwipeRepository struct {
	db *pgxpool.Pool
}

// NewSwipeRepository creates a new swipe repository
func NewSwipeRepository(db *pgxpool.Pool) *SwipeRepository {
	return &SwipeRepository{db: db}
}

// Create records a swipe
func (r *SwipeRepository) Create(ctx context.Context, swipe *models.Swipe) error {
	query := `
		INSERT INTO swipes (id, swiper_id, target_id, direction, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query,
		swipe.ID, swipe.SwiperID, swipe.TargetID, swipe.Direction, swipe.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create swipe: %w", err)
	}
	return nil
}

// Exists checks whether the swiper has already swiped on the target.
func (r *SwipeRepository) Exists(ctx context.Context, swiperID, targetID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM swipes WHERE swiper_id = $1 AND target_id = $2)`
	var exists bool
	err := r.db.QueryRow(ctx, query, swiperID, targetID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check swipe existence: %w", err)
	}
	return exists, nil
}

// LikedBack checks whether the target has already liked the swiper.
func (r *SwipeRepository) LikedBack(ctx context.Context, swiperID, targetID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM swipes
			WHERE swiper_id = $2 AND target_id = $1 AND direction = $3
		)
	`
	var exists bool
	err := r.db.QueryRow(ctx, query, swiperID, targetID, models.SwipeLike).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check mutual like: %w", err)
	}
	return exists, nil
}
