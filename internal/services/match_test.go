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

type fakeMessageStore struct {
	messages []*models.Message
}

func (s *fakeMessageStore) Create(_ context.Context, msg *models.Message) error {
	s.messages = append(s.messages, msg)
	return nil
}

func (s *fakeMessageStore) GetByID(_ context.Context, id string) (*models.Message, error) {
	for _, msg := range s.messages {
		if msg.ID == id {
			return msg, nil
		}
	}
	return nil, repository.ErrMessageNotFound
}

func (s *fakeMessageStore) ListByMatchID(_ context.Context, matchID string) ([]*models.Message, error) {
	var out []*models.Message
	for _, msg := range s.messages {
		if msg.MatchID == matchID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (s *fakeMessageStore) MarkRead(_ context.Context, id, readerID string) error {
	for _, msg := range s.messages {
		if msg.ID == id && msg.SenderID != readerID {
			msg.Read = true
			return nil
		}
	}
	return repository.ErrMessageNotFound
}

type matchFixture struct {
	svc           *MatchService
	matches       *fakeMatchStore
	messages      *fakeMessageStore
	notifications *fakeNotificationStore
	hub           *fakeHub
}

func newMatchFixture(t *testing.T) *matchFixture {
	t.Helper()

	users := newFakeUserStore()
	for _, u := range []*models.User{
		{ID: "alice", Name: "Alice", Email: "alice@example.com"},
		{ID: "bob", Name: "Bob", Email: "bob@example.com"},
		{ID: "carol", Name: "Carol", Email: "carol@example.com"},
	} {
		require.NoError(t, users.Create(context.Background(), u))
	}

	matches := newFakeMatchStore()
	now := time.Now()
	matches.matches["match-1"] = &models.Match{
		ID:        "match-1",
		UserAID:   "alice",
		UserBID:   "bob",
		CreatedAt: now,
		UpdatedAt: now,
	}

	messages := &fakeMessageStore{}
	notifications := &fakeNotificationStore{}
	hub := newFakeHub("alice", "bob")
	notificationService := NewNotificationService(notifications, users, hub, nil)

	return &matchFixture{
		svc:           NewMatchService(matches, messages, users, notificationService, hub),
		matches:       matches,
		messages:      messages,
		notifications: notifications,
		hub:           hub,
	}
}

func stringPtr(s string) *string { return &s }

func TestGetForUserHidesMatchFromNonMembers(t *testing.T) {
	f := newMatchFixture(t)

	_, memberErr := f.svc.GetForUser(context.Background(), "match-1", "alice")
	require.NoError(t, memberErr)

	_, outsiderErr := f.svc.GetForUser(context.Background(), "match-1", "carol")
	assertCode(t, outsiderErr, apperrors.CodeNotFound)

	_, missingErr := f.svc.GetForUser(context.Background(), "match-404", "alice")
	assertCode(t, missingErr, apperrors.CodeNotFound)

	// Outsiders and missing matches read identically.
	assert.Equal(t, outsiderErr.Error(), missingErr.Error())
}

func TestGetForUserIncludesBothMembers(t *testing.T) {
	f := newMatchFixture(t)

	view, err := f.svc.GetForUser(context.Background(), "match-1", "alice")
	require.NoError(t, err)
	require.Len(t, view.Users, 2)
	assert.Equal(t, "Alice", view.Users[0].Name)
	assert.Equal(t, "Bob", view.Users[1].Name)
}

func TestListForUserEmpty(t *testing.T) {
	f := newMatchFixture(t)

	views, err := f.svc.ListForUser(context.Background(), "carol")
	require.NoError(t, err)
	assert.NotNil(t, views)
	assert.Empty(t, views)
}

func TestSendMessageRequiresSomeContent(t *testing.T) {
	f := newMatchFixture(t)

	_, err := f.svc.SendMessage(context.Background(), "match-1", "alice", nil, nil, nil)
	assertCode(t, err, apperrors.CodeInvalidArgument)

	empty := ""
	_, err = f.svc.SendMessage(context.Background(), "match-1", "alice", &empty, nil, nil)
	assertCode(t, err, apperrors.CodeInvalidArgument)
}

func TestSendMessageAcceptsMemeOnly(t *testing.T) {
	f := newMatchFixture(t)

	msg, err := f.svc.SendMessage(context.Background(), "match-1", "alice", nil, stringPtr("https://img.example/m.jpg"), nil)
	require.NoError(t, err)
	assert.Nil(t, msg.Content)
	require.NotNil(t, msg.MemeURL)
	assert.Equal(t, "https://img.example/m.jpg", *msg.MemeURL)
}

func TestSendMessageDeliversFramesAndNotifies(t *testing.T) {
	f := newMatchFixture(t)

	msg, err := f.svc.SendMessage(context.Background(), "match-1", "alice", stringPtr("hey"), nil, nil)
	require.NoError(t, err)

	require.Len(t, f.hub.sent["bob"], 2)
	assert.Equal(t, EventMessageReceived, f.hub.sent["bob"][0].Type)

	var echoed bool
	for _, frame := range f.hub.sent["alice"] {
		if frame.Type == EventMessageSent {
			echoed = true
		}
	}
	assert.True(t, echoed)

	assert.Equal(t, msg.CreatedAt, f.matches.touched["match-1"])

	require.Len(t, f.notifications.items, 1)
	assert.Equal(t, "bob", f.notifications.items[0].RecipientID)
	assert.Equal(t, models.NotificationMessage, f.notifications.items[0].Type)
}

func TestSendMessageByNonMember(t *testing.T) {
	f := newMatchFixture(t)

	_, err := f.svc.SendMessage(context.Background(), "match-1", "carol", stringPtr("hi"), nil, nil)
	assertCode(t, err, apperrors.CodeNotFound)
	assert.Empty(t, f.messages.messages)
}

func TestMarkMessageReadOnlyByRecipient(t *testing.T) {
	f := newMatchFixture(t)

	msg, err := f.svc.SendMessage(context.Background(), "match-1", "alice", stringPtr("hey"), nil, nil)
	require.NoError(t, err)

	// The sender cannot acknowledge their own message.
	err = f.svc.MarkMessageRead(context.Background(), msg.ID, "alice")
	assertCode(t, err, apperrors.CodeNotFound)

	// An outsider sees not found even though the message exists.
	err = f.svc.MarkMessageRead(context.Background(), msg.ID, "carol")
	assertCode(t, err, apperrors.CodeNotFound)

	require.NoError(t, f.svc.MarkMessageRead(context.Background(), msg.ID, "bob"))
	assert.True(t, f.messages.messages[0].Read)
}

func TestNotifyTypingRelaysToOtherMember(t *testing.T) {
	f := newMatchFixture(t)

	f.svc.NotifyTyping(context.Background(), "match-1", "alice", true)
	require.Len(t, f.hub.sent["bob"], 1)
	assert.Equal(t, EventTypingStarted, f.hub.sent["bob"][0].Type)

	f.svc.NotifyTyping(context.Background(), "match-1", "alice", false)
	require.Len(t, f.hub.sent["bob"], 2)
	assert.Equal(t, EventTypingStopped, f.hub.sent["bob"][1].Type)

	// Non-members relay nothing.
	f.svc.NotifyTyping(context.Background(), "match-1", "carol", true)
	assert.Len(t, f.hub.sent["bob"], 2)
	assert.Empty(t, f.hub.sent["alice"])
}
