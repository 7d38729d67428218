package repository

import (
	"context"
	"errors"
	"fmt"

	"mememates-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrMessageNotFound is returned when a message lookup matches no row.
var ErrMessageNotFound = errors.New("message not found")

// MessageRepository handles database operations for messages
type MessageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create appends a message to its match
func (r *MessageRepository) Create(ctx context.Context, msg *models.Message) error {
	query := `
		INSERT INTO messages (id, match_id, sender_id, content, meme_url, song_url, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		msg.ID, msg.MatchID, msg.SenderID, msg.Content,
		msg.MemeURL, msg.SongURL, msg.Read, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// GetByID retrieves a message by ID
func (r *MessageRepository) GetByID(ctx context.Context, id string) (*models.Message, error) {
	query := `
		SELECT id, match_id, sender_id, content, meme_url, song_url, read, created_at
		FROM messages
		WHERE id = $1
	`
	var msg models.Message
	err := r.db.QueryRow(ctx, query, id).Scan(
		&msg.ID, &msg.MatchID, &msg.SenderID, &msg.Content,
		&msg.MemeURL, &msg.SongURL, &msg.Read, &msg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return &msg, nil
}

// ListByMatchID retrieves all messages of a match in creation order
func (r *MessageRepository) ListByMatchID(ctx context.Context, matchID string) ([]*models.Message, error) {
	query := `
		SELECT id, match_id, sender_id, content, meme_url, song_url, read, created_at
		FROM messages
		WHERE match_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		var msg models.Message
		err := rows.Scan(
			&msg.ID, &msg.MatchID, &msg.SenderID, &msg.Content,
			&msg.MemeURL, &msg.SongURL, &msg.Read, &msg.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}
	return messages, nil
}

// MarkRead flips the read flag of a message. The sender's own messages are
// excluded so a sender cannot acknowledge delivery on the recipient's behalf.
func (r *MessageRepository) MarkRead(ctx context.Context, id, readerID string) error {
	query := `UPDATE messages SET read = TRUE WHERE id = $1 AND sender_id <> $2`
	result, err := r.db.Exec(ctx, query, id, readerID)
	if err != nil {
		return fmt.Errorf("failed to mark message read: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrMessageNotFound
	}
	return nil
}
