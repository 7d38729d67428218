package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"mememates-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrUserNotFound is returned when a user lookup matches no row.
var ErrUserNotFound = errors.New("user not found")

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, name, email, password, image, bio, interests, photos,
	preferences, anthem, push_token, premium, is_new_user, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.Password, &user.Image,
		&user.Bio, &user.Interests, &user.Photos, &user.Preferences,
		&user.Anthem, &user.PushToken, &user.Premium, &user.IsNewUser,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, name, email, password, image, interests, photos, premium, is_new_user, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.Name, user.Email, user.Password, user.Image,
		user.Interests, user.Photos, user.Premium, user.IsNewUser,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// EmailExists checks if an email is already registered
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`
	var exists bool
	err := r.db.QueryRow(ctx, query, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return exists, nil
}

// ProfilePatch carries the fields of a partial profile update. Nil fields are
// left untouched; list fields replace the stored list wholesale.
type ProfilePatch struct {
	Bio         *string
	Image       *string
	Interests   []string
	Photos      []string
	Preferences json.RawMessage
	Anthem      json.RawMessage
}

// UpdateProfile applies a partial update and returns the updated row.
func (r *UserRepository) UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (*models.User, error) {
	query := `
		UPDATE users SET
			bio = COALESCE($1, bio),
			image = COALESCE($2, image),
			interests = COALESCE($3, interests),
			photos = COALESCE($4, photos),
			preferences = COALESCE($5, preferences),
			anthem = COALESCE($6, anthem),
			updated_at = now()
		WHERE id = $7
		RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRow(ctx, query,
		patch.Bio, patch.Image, patch.Interests, patch.Photos,
		patch.Preferences, patch.Anthem, userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// SetOnboarded clears the new-user flag once onboarding completes.
func (r *UserRepository) SetOnboarded(ctx context.Context, userID string) error {
	query := `UPDATE users SET is_new_user = FALSE, updated_at = now() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to clear new-user flag: %w", err)
	}
	return nil
}

// UpdatePushToken updates the push token for a user
func (r *UserRepository) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	query := `UPDATE users SET push_token = $1 WHERE id = $2`
	_, err := r.db.Exec(ctx, query, pushToken, userID)
	if err != nil {
		return fmt.Errorf("failed to update push token: %w", err)
	}
	return nil
}

// ListCandidates returns users the viewer has not swiped on yet, newest
// first. Ranking beyond recency is out of scope here.
func (r *UserRepository) ListCandidates(ctx context.Context, viewerID string, limit int) ([]*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id <> $1
		  AND is_new_user = FALSE
		  AND id NOT IN (SELECT target_id FROM swipes WHERE swiper_id = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, viewerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candidates: %w", err)
	}
	return users, nil
}
