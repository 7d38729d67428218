package services

import (
	"context"
	"testing"
	"time"

	"mememates-backend/internal/apperrors"
	"mememates-backend/internal/models"
	"mememates-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSwipeStore struct {
	swipes []*models.Swipe
}

func (s *fakeSwipeStore) Create(_ context.Context, swipe *models.Swipe) error {
	s.swipes = append(s.swipes, swipe)
	return nil
}

func (s *fakeSwipeStore) Exists(_ context.Context, swiperID, targetID string) (bool, error) {
	for _, swipe := range s.swipes {
		if swipe.SwiperID == swiperID && swipe.TargetID == targetID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeSwipeStore) LikedBack(_ context.Context, swiperID, targetID string) (bool, error) {
	for _, swipe := range s.swipes {
		if swipe.SwiperID == targetID && swipe.TargetID == swiperID && swipe.Direction == models.SwipeLike {
			return true, nil
		}
	}
	return false, nil
}

type fakeMatchStore struct {
	matches map[string]*models.Match
	touched map[string]time.Time
}

func newFakeMatchStore() *fakeMatchStore {
	return &fakeMatchStore{
		matches: make(map[string]*models.Match),
		touched: make(map[string]time.Time),
	}
}

func (s *fakeMatchStore) Create(_ context.Context, match *models.Match) error {
	s.matches[match.ID] = match
	return nil
}

func (s *fakeMatchStore) GetByID(_ context.Context, id string) (*models.Match, error) {
	match, ok := s.matches[id]
	if !ok {
		return nil, repository.ErrMatchNotFound
	}
	return match, nil
}

func (s *fakeMatchStore) ListViewsByUserID(_ context.Context, viewerID string) ([]*models.MatchView, error) {
	var views []*models.MatchView
	for _, match := range s.matches {
		if match.UserAID == viewerID || match.UserBID == viewerID {
			views = append(views, &models.MatchView{ID: match.ID})
		}
	}
	return views, nil
}

func (s *fakeMatchStore) Touch(_ context.Context, id string, at time.Time) error {
	s.touched[id] = at
	return nil
}

type swipeFixture struct {
	svc           *SwipeService
	swipes        *fakeSwipeStore
	matches       *fakeMatchStore
	users         *fakeUserStore
	notifications *fakeNotificationStore
	hub           *fakeHub
}

func newSwipeFixture(t *testing.T) *swipeFixture {
	t.Helper()

	users := newFakeUserStore()
	for _, u := range []*models.User{
		{ID: "alice", Name: "Alice", Email: "alice@example.com"},
		{ID: "bob", Name: "Bob", Email: "bob@example.com"},
	} {
		require.NoError(t, users.Create(context.Background(), u))
	}

	swipes := &fakeSwipeStore{}
	matches := newFakeMatchStore()
	notifications := &fakeNotificationStore{}
	hub := newFakeHub()
	notificationService := NewNotificationService(notifications, users, hub, nil)

	return &swipeFixture{
		svc:           NewSwipeService(swipes, matches, users, notificationService),
		swipes:        swipes,
		matches:       matches,
		users:         users,
		notifications: notifications,
		hub:           hub,
	}
}

func TestSwipeRejectsUnknownDirection(t *testing.T) {
	f := newSwipeFixture(t)

	_, err := f.svc.Swipe(context.Background(), "alice", "bob", "MAYBE")
	assertCode(t, err, apperrors.CodeInvalidArgument)
}

func TestSwipeRejectsSelf(t *testing.T) {
	f := newSwipeFixture(t)

	_, err := f.svc.Swipe(context.Background(), "alice", "alice", models.SwipeLike)
	assertCode(t, err, apperrors.CodeInvalidArgument)
}

func TestSwipeUnknownTarget(t *testing.T) {
	f := newSwipeFixture(t)

	_, err := f.svc.Swipe(context.Background(), "alice", "ghost", models.SwipeLike)
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestSwipeDuplicateConflicts(t *testing.T) {
	f := newSwipeFixture(t)

	_, err := f.svc.Swipe(context.Background(), "alice", "bob", models.SwipePass)
	require.NoError(t, err)

	_, err = f.svc.Swipe(context.Background(), "alice", "bob", models.SwipeLike)
	assertCode(t, err, apperrors.CodeAlreadyExists)
	assert.Len(t, f.swipes.swipes, 1)
}

func TestPassCreatesNothing(t *testing.T) {
	f := newSwipeFixture(t)

	result, err := f.svc.Swipe(context.Background(), "alice", "bob", models.SwipePass)
	require.NoError(t, err)
	assert.False(t, result.Matched)
	assert.Empty(t, f.matches.matches)
	assert.Empty(t, f.notifications.items)
}

func TestUnrequitedLikeNotifiesTarget(t *testing.T) {
	f := newSwipeFixture(t)

	result, err := f.svc.Swipe(context.Background(), "alice", "bob", models.SwipeLike)
	require.NoError(t, err)
	assert.False(t, result.Matched)
	assert.Empty(t, f.matches.matches)

	require.Len(t, f.notifications.items, 1)
	n := f.notifications.items[0]
	assert.Equal(t, "bob", n.RecipientID)
	assert.Equal(t, models.NotificationLike, n.Type)
}

func TestMutualLikeCreatesMatchAndNotifiesBoth(t *testing.T) {
	f := newSwipeFixture(t)

	_, err := f.svc.Swipe(context.Background(), "bob", "alice", models.SwipeLike)
	require.NoError(t, err)

	result, err := f.svc.Swipe(context.Background(), "alice", "bob", models.SwipeLike)
	require.NoError(t, err)
	require.True(t, result.Matched)
	require.NotNil(t, result.Match)

	// Member ids are stored in lexicographic order regardless of who
	// completed the match.
	assert.Equal(t, "alice", result.Match.UserAID)
	assert.Equal(t, "bob", result.Match.UserBID)
	assert.Len(t, f.matches.matches, 1)

	recipients := make(map[string]string)
	for _, n := range f.notifications.items {
		if n.Type == models.NotificationMatch {
			recipients[n.RecipientID] = n.Content
		}
	}
	assert.Equal(t, map[string]string{
		"alice": "New match with Bob!",
		"bob":   "New match with Alice!",
	}, recipients)
}
