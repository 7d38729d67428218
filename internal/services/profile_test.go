package services

import (
	"context"
	"encoding/json"
	"testing"

	"mememates-backend/internal/apperrors"
	"mememates-backend/internal/models"
	"mememates-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProfileStore struct {
	users map[string]*models.User
}

func newFakeProfileStore(users ...*models.User) *fakeProfileStore {
	store := &fakeProfileStore{users: make(map[string]*models.User)}
	for _, user := range users {
		store.users[user.ID] = user
	}
	return store
}

func (s *fakeProfileStore) GetByID(_ context.Context, id string) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (s *fakeProfileStore) UpdateProfile(_ context.Context, userID string, patch repository.ProfilePatch) (*models.User, error) {
	user, ok := s.users[userID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	if patch.Bio != nil {
		user.Bio = patch.Bio
	}
	if patch.Image != nil {
		user.Image = patch.Image
	}
	if patch.Interests != nil {
		user.Interests = patch.Interests
	}
	if patch.Photos != nil {
		user.Photos = patch.Photos
	}
	if patch.Preferences != nil {
		user.Preferences = patch.Preferences
	}
	if patch.Anthem != nil {
		user.Anthem = patch.Anthem
	}
	return user, nil
}

func (s *fakeProfileStore) SetOnboarded(_ context.Context, userID string) error {
	user, ok := s.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.IsNewUser = false
	return nil
}

func (s *fakeProfileStore) UpdatePushToken(_ context.Context, userID string, pushToken *string) error {
	user, ok := s.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.PushToken = pushToken
	return nil
}

func TestProfileGetUnknownUser(t *testing.T) {
	svc := NewProfileService(newFakeProfileStore())

	_, err := svc.Get(context.Background(), "ghost")
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestProfileUpdateIsPartial(t *testing.T) {
	bio := "original bio"
	store := newFakeProfileStore(&models.User{
		ID:        "user-1",
		Name:      "Alice",
		Bio:       &bio,
		Interests: []string{"memes"},
		IsNewUser: true,
	})
	svc := NewProfileService(store)

	newBio := "updated bio"
	user, err := svc.Update(context.Background(), "user-1", &ProfileUpdate{Bio: &newBio})
	require.NoError(t, err)

	assert.Equal(t, "updated bio", *user.Bio)
	// Untouched fields survive the update.
	assert.Equal(t, []string{"memes"}, user.Interests)
	assert.True(t, user.IsNewUser)
}

func TestProfileUpdateReplacesListsWholesale(t *testing.T) {
	store := newFakeProfileStore(&models.User{
		ID:        "user-1",
		Interests: []string{"memes", "cats"},
	})
	svc := NewProfileService(store)

	user, err := svc.Update(context.Background(), "user-1", &ProfileUpdate{Interests: []string{"dogs"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"dogs"}, user.Interests)
}

func TestProfileUpdateRoundTripsAnthemBlob(t *testing.T) {
	store := newFakeProfileStore(&models.User{ID: "user-1"})
	svc := NewProfileService(store)

	anthem := json.RawMessage(`{"id":"track-1","name":"Song One","artist":"Artist A"}`)
	user, err := svc.Update(context.Background(), "user-1", &ProfileUpdate{Anthem: anthem})
	require.NoError(t, err)
	assert.JSONEq(t, string(anthem), string(user.Anthem))
}

func TestProfileUpdateCompletesOnboarding(t *testing.T) {
	store := newFakeProfileStore(&models.User{ID: "user-1", IsNewUser: true})
	svc := NewProfileService(store)

	user, err := svc.Update(context.Background(), "user-1", &ProfileUpdate{Onboarded: true})
	require.NoError(t, err)
	assert.False(t, user.IsNewUser)
	assert.False(t, store.users["user-1"].IsNewUser)
}

func TestProfileUpdateStoresPushToken(t *testing.T) {
	store := newFakeProfileStore(&models.User{ID: "user-1"})
	svc := NewProfileService(store)

	token := "device-token"
	_, err := svc.Update(context.Background(), "user-1", &ProfileUpdate{PushToken: &token})
	require.NoError(t, err)
	require.NotNil(t, store.users["user-1"].PushToken)
	assert.Equal(t, "device-token", *store.users["user-1"].PushToken)
}

func TestProfileUpdateIsEmpty(t *testing.T) {
	assert.True(t, (&ProfileUpdate{}).IsEmpty())

	bio := "x"
	assert.False(t, (&ProfileUpdate{Bio: &bio}).IsEmpty())
	assert.False(t, (&ProfileUpdate{Onboarded: true}).IsEmpty())
	assert.False(t, (&ProfileUpdate{Interests: []string{}}).IsEmpty())
}
