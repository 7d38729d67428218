package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mememates-backend/internal/apperrors"
	"mememates-backend/internal/models"
	"mememates-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// NotificationStore is the subset of the notification repository the
// notification service needs.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByRecipient(ctx context.Context, recipientID string) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id, recipientID string) error
}

// Pusher delivers a push notification to a device token.
type Pusher interface {
	Push(deviceToken, title, body string) error
}

// PushTokenResolver looks up a user's registered device token.
type PushTokenResolver interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// NotificationService persists notifications and fans them out to the
// realtime hub and, when a device token is registered, to push. Fan-out
// failures are logged and never fail the triggering request.
type NotificationService struct {
	notifications NotificationStore
	users         PushTokenResolver
	hub           EventSender
	pusher        Pusher
}

// NewNotificationService creates a new notification service. pusher may be
// nil when push delivery is disabled.
func NewNotificationService(notifications NotificationStore, users PushTokenResolver, hub EventSender, pusher Pusher) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		users:         users,
		hub:           hub,
		pusher:        pusher,
	}
}

// List returns the recipient's notifications newest first.
func (s *NotificationService) List(ctx context.Context, recipientID string) ([]*models.Notification, error) {
	notifications, err := s.notifications.ListByRecipient(ctx, recipientID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "Failed to retrieve notifications", err)
	}
	if notifications == nil {
		notifications = []*models.Notification{}
	}
	return notifications, nil
}

// MarkRead flips the read flag for the recipient's own notification. The
// acknowledgment lets clients decrement their unread count only after the
// server has confirmed.
func (s *NotificationService) MarkRead(ctx context.Context, id, recipientID string) error {
	err := s.notifications.MarkRead(ctx, id, recipientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			return apperrors.NotFound("Notification not found")
		}
		return apperrors.Wrap(apperrors.CodeInternal, "Failed to mark notification read", err)
	}
	return nil
}

// NotifyLike records a LIKE notification for the liked user.
func (s *NotificationService) NotifyLike(ctx context.Context, recipientID string, liker *models.UserSummary) error {
	metadata, _ := json.Marshal(map[string]string{"senderId": liker.ID})
	n := &models.Notification{
		ID:          uuid.New().String(),
		RecipientID: recipientID,
		Type:        models.NotificationLike,
		Title:       "New like",
		Content:     fmt.Sprintf("%s liked your profile!", liker.Name),
		Metadata:    metadata,
		CreatedAt:   time.Now(),
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, "Failed to create notification", err)
	}

	s.fanOut(ctx, recipientID, WSMessage{
		Type: EventLikeReceived,
		Data: map[string]interface{}{"sender": liker},
	}, n)
	return nil
}

// NotifyMatch records a MATCH notification for one member of a new match.
func (s *NotificationService) NotifyMatch(ctx context.Context, recipientID, matchID string, other *models.UserSummary) error {
	metadata, _ := json.Marshal(map[string]string{"matchId": matchID})
	n := &models.Notification{
		ID:          uuid.New().String(),
		RecipientID: recipientID,
		Type:        models.NotificationMatch,
		Title:       "New match",
		Content:     fmt.Sprintf("New match with %s!", other.Name),
		Metadata:    metadata,
		CreatedAt:   time.Now(),
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, "Failed to create notification", err)
	}

	s.fanOut(ctx, recipientID, WSMessage{
		Type:    EventMatchNew,
		MatchID: matchID,
		Data:    map[string]interface{}{"user": other, "matchId": matchID},
	}, n)
	return nil
}

// NotifyMessage records a MESSAGE notification for the recipient of a chat
// message.
func (s *NotificationService) NotifyMessage(ctx context.Context, recipientID, matchID string, sender *models.UserSummary) error {
	metadata, _ := json.Marshal(map[string]string{"matchId": matchID, "senderId": sender.ID})
	n := &models.Notification{
		ID:          uuid.New().String(),
		RecipientID: recipientID,
		Type:        models.NotificationMessage,
		Title:       "New message",
		Content:     fmt.Sprintf("New message from %s", sender.Name),
		Metadata:    metadata,
		CreatedAt:   time.Now(),
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, "Failed to create notification", err)
	}

	s.fanOut(ctx, recipientID, WSMessage{
		Type:    EventMessageNew,
		MatchID: matchID,
		Data:    map[string]interface{}{"sender": sender, "matchId": matchID},
	}, n)
	return nil
}

func (s *NotificationService) fanOut(ctx context.Context, recipientID string, event WSMessage, n *models.Notification) {
	if s.hub != nil && s.hub.IsOnline(recipientID) {
		if err := s.hub.SendToUser(recipientID, event); err != nil {
			log.Error().Err(err).
				Str("recipient_id", recipientID).
				Str("event", event.Type).
				Msg("Failed to deliver hub event")
		}
	}

	if s.pusher == nil {
		return
	}
	user, err := s.users.GetByID(ctx, recipientID)
	if err != nil || user.PushToken == nil || *user.PushToken == "" {
		return
	}
	if err := s.pusher.Push(*user.PushToken, n.Title, n.Content); err != nil {
		log.Error().Err(err).
			Str("recipient_id", recipientID).
			Str("type", n.Type).
			Msg("Failed to deliver push notification")
	}
}
