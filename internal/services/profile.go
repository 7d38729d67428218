package services

import (
	"context"
	"encoding/json"
	"errors"

	"mememates-backend/internal/apperrors"
	"mememates-backend/internal/models"
	"mememates-backend/internal/repository"
)

// ProfileStore is the subset of the user repository the profile service
// needs.
type ProfileStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, patch repository.ProfilePatch) (*models.User, error)
	SetOnboarded(ctx context.Context, userID string) error
	UpdatePushToken(ctx context.Context, userID string, pushToken *string) error
}

// ProfileUpdate carries a partial profile update. Nil fields are left
// untouched; interests and photos replace the stored list atomically.
// Preferences and anthem are opaque JSON blobs that round-trip exactly.
type ProfileUpdate struct {
	Bio         *string         `json:"bio"`
	Image       *string         `json:"image"`
	Interests   []string        `json:"interests"`
	Photos      []string        `json:"photos"`
	Preferences json.RawMessage `json:"preferences"`
	Anthem      json.RawMessage `json:"anthem"`
	Onboarded   bool            `json:"onboarded"`
	PushToken   *string         `json:"pushToken"`
}

// IsEmpty reports whether the update carries no field at all.
func (u *ProfileUpdate) IsEmpty() bool {
	return u.Bio == nil && u.Image == nil && u.Interests == nil &&
		u.Photos == nil && u.Preferences == nil && u.Anthem == nil &&
		!u.Onboarded && u.PushToken == nil
}

// ProfileService handles profile retrieval and mutation
type ProfileService struct {
	users ProfileStore
}

// NewProfileService creates a new profile service
func NewProfileService(users ProfileStore) *ProfileService {
	return &ProfileService{users: users}
}

// Get returns the profile for a verified user id
func (s *ProfileService) Get(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "Failed to retrieve user", err)
	}
	return user, nil
}

// Update applies a partial profile update for the session's own user.
func (s *ProfileService) Update(ctx context.Context, userID string, update *ProfileUpdate) (*models.User, error) {
	if update.PushToken != nil {
		if err := s.users.UpdatePushToken(ctx, userID, update.PushToken); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInternal, "Failed to update profile", err)
		}
	}

	user, err := s.users.UpdateProfile(ctx, userID, repository.ProfilePatch{
		Bio:         update.Bio,
		Image:       update.Image,
		Interests:   update.Interests,
		Photos:      update.Photos,
		Preferences: update.Preferences,
		Anthem:      update.Anthem,
	})
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "Failed to update profile", err)
	}

	if update.Onboarded && user.IsNewUser {
		if err := s.users.SetOnboarded(ctx, userID); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInternal, "Failed to update profile", err)
		}
		user.IsNewUser = false
	}

	return user, nil
}
