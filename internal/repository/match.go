package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mememates-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrMatchNotFound covers both absent matches and matches the viewer is not
// a member of.
var ErrMatchNotFound = errors.New("match not found")

// MatchRepository handles database operations for matches
type MatchRepository struct {
	db *pgxpool.Pool
}

// NewMatchRepository creates a new match repository
func NewMatchRepository(db *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{db: db}
}

// Create creates a new match
func (r *MatchRepository) Create(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO matches (id, user_a_id, user_b_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query,
		match.ID, match.UserAID, match.UserBID, match.CreatedAt, match.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}
	return nil
}

// GetByID retrieves a match by ID
func (r *MatchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	query := `
		SELECT id, user_a_id, user_b_id, created_at, updated_at
		FROM matches
		WHERE id = $1
	`
	var match models.Match
	err := r.db.QueryRow(ctx, query, id).Scan(
		&match.ID, &match.UserAID, &match.UserBID, &match.CreatedAt, &match.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return &match, nil
}

// Touch bumps the match's updated_at, keeping recently active threads first.
func (r *MatchRepository) Touch(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE matches SET updated_at = $1 WHERE id = $2`
	_, err := r.db.Exec(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("failed to touch match: %w", err)
	}
	return nil
}

// ListViewsByUserID returns the viewer's matches with both user summaries,
// the last message and the viewer's unread counter, most recently active
// first.
func (r *MatchRepository) ListViewsByUserID(ctx context.Context, viewerID string) ([]*models.MatchView, error) {
	query := `
		SELECT m.id, m.created_at, m.updated_at,
		       ua.id, ua.name, ua.image,
		       ub.id, ub.name, ub.image,
		       lm.id, lm.match_id, lm.sender_id, lm.content, lm.meme_url,
		       lm.song_url, lm.read, lm.created_at,
		       (SELECT COUNT(*) FROM messages um
		        WHERE um.match_id = m.id AND um.sender_id <> $1 AND um.read = FALSE)
		FROM matches m
		JOIN users ua ON ua.id = m.user_a_id
		JOIN users ub ON ub.id = m.user_b_id
		LEFT JOIN LATERAL (
			SELECT id, match_id, sender_id, content, meme_url, song_url, read, created_at
			FROM messages
			WHERE match_id = m.id
			ORDER BY created_at DESC
			LIMIT 1
		) lm ON TRUE
		WHERE m.user_a_id = $1 OR m.user_b_id = $1
		ORDER BY m.updated_at DESC
	`
	rows, err := r.db.Query(ctx, query, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	var views []*models.MatchView
	for rows.Next() {
		var view models.MatchView
		var userA, userB models.UserSummary
		var lmID, lmMatchID, lmSenderID *string
		var lmContent, lmMemeURL, lmSongURL *string
		var lmRead *bool
		var lmCreatedAt *time.Time

		err := rows.Scan(
			&view.ID, &view.CreatedAt, &view.UpdatedAt,
			&userA.ID, &userA.Name, &userA.Image,
			&userB.ID, &userB.Name, &userB.Image,
			&lmID, &lmMatchID, &lmSenderID, &lmContent, &lmMemeURL,
			&lmSongURL, &lmRead, &lmCreatedAt,
			&view.UnreadCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}

		view.Users = []models.UserSummary{userA, userB}
		if lmID != nil {
			view.LastMessage = &models.Message{
				ID:        *lmID,
				MatchID:   *lmMatchID,
				SenderID:  *lmSenderID,
				Content:   lmContent,
				MemeURL:   lmMemeURL,
				SongURL:   lmSongURL,
				Read:      *lmRead,
				CreatedAt: *lmCreatedAt,
			}
		}
		views = append(views, &view)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matches: %w", err)
	}
	return views, nil
}
