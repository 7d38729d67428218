package services

import (
	"context"
	"errors"
	"time"

	"mememates-backend/internal/apperrors"
	"mememates-backend/internal/models"
	"mememates-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MatchStore is the subset of the match repository the match service needs.
type MatchStore interface {
	GetByID(ctx context.Context, id string) (*models.Match, error)
	ListViewsByUserID(ctx context.Context, viewerID string) ([]*models.MatchView, error)
	Touch(ctx context.Context, id string, at time.Time) error
}

// MessageStore is the subset of the message repository the match service
// needs.
type MessageStore interface {
	Create(ctx context.Context, msg *models.Message) error
	GetByID(ctx context.Context, id string) (*models.Message, error)
	ListByMatchID(ctx context.Context, matchID string) ([]*models.Message, error)
	MarkRead(ctx context.Context, id, readerID string) error
}

// MatchService handles match listing and the chat flow on top of it.
type MatchService struct {
	matches       MatchStore
	messages      MessageStore
	users         UserStore
	notifications *NotificationService
	hub           EventSender
}

// NewMatchService creates a new match service
func NewMatchService(matches MatchStore, messages MessageStore, users UserStore, notifications *NotificationService, hub EventSender) *MatchService {
	return &MatchService{
		matches:       matches,
		messages:      messages,
		users:         users,
		notifications: notifications,
		hub:           hub,
	}
}

// memberOf reports whether the user belongs to the match.
func memberOf(match *models.Match, userID string) bool {
	return match.UserAID == userID || match.UserBID == userID
}

// otherMember returns the match member that is not the given user.
func otherMember(match *models.Match, userID string) string {
	if match.UserAID == userID {
		return match.UserBID
	}
	return match.UserAID
}

// getForMember loads a match and verifies membership. Non-members get the
// same not-found as an absent match, so match ids leak nothing.
func (s *MatchService) getForMember(ctx context.Context, matchID, viewerID string) (*models.Match, error) {
	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repository.ErrMatchNotFound) {
			return nil, apperrors.NotFound("Match not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "Failed to retrieve match", err)
	}
	if !memberOf(match, viewerID) {
		return nil, apperrors.NotFound("Match not found")
	}
	return match, nil
}

// ListForUser returns the viewer's matches with last message and unread
// counters, most recently active first.
func (s *MatchService) ListForUser(ctx context.Context, viewerID string) ([]*models.MatchView, error) {
	views, err := s.matches.ListViewsByUserID(ctx, viewerID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "Failed to retrieve matches", err)
	}
	if views == nil {
		views = []*models.MatchView{}
	}
	return views, nil
}

// GetForUser returns a single match the viewer is a member of.
func (s *MatchService) GetForUser(ctx context.Context, matchID, viewerID string) (*models.MatchView, error) {
	match, err := s.getForMember(ctx, matchID, viewerID)
	if err != nil {
		return nil, err
	}

	users := make([]models.UserSummary, 0, 2)
	for _, id := range []string{match.UserAID, match.UserBID} {
		user, err := s.users.GetByID(ctx, id)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInternal, "Failed to retrieve match", err)
		}
		users = append(users, *summaryOf(user))
	}

	return &models.MatchView{
		ID:        match.ID,
		Users:     users,
		CreatedAt: match.CreatedAt,
		UpdatedAt: match.UpdatedAt,
	}, nil
}

// Messages returns the match's messages in creation order, member-only.
func (s *MatchService) Messages(ctx context.Context, matchID, viewerID string) ([]*models.Message, error) {
	if _, err := s.getForMember(ctx, matchID, viewerID); err != nil {
		return nil, err
	}
	messages, err := s.messages.ListByMatchID(ctx, matchID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "Failed to retrieve messages", err)
	}
	if messages == nil {
		messages = []*models.Message{}
	}
	return messages, nil
}

// SendMessage appends a message to a match the sender belongs to. At least
// one of content, meme URL or song URL must be present.
func (s *MatchService) SendMessage(ctx context.Context, matchID, senderID string, content, memeURL, songURL *string) (*models.Message, error) {
	empty := func(p *string) bool { return p == nil || *p == "" }
	if empty(content) && empty(memeURL) && empty(songURL) {
		return nil, apperrors.InvalidArg("Message content is required")
	}

	match, err := s.getForMember(ctx, matchID, senderID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ID:        uuid.New().String(),
		MatchID:   matchID,
		SenderID:  senderID,
		Content:   content,
		MemeURL:   memeURL,
		SongURL:   songURL,
		CreatedAt: time.Now(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "Failed to send message", err)
	}

	if err := s.matches.Touch(ctx, matchID, msg.CreatedAt); err != nil {
		log.Error().Err(err).Str("match_id", matchID).Msg("Failed to touch match")
	}

	recipientID := otherMember(match, senderID)

	if s.hub != nil {
		frame := WSMessage{Type: EventMessageReceived, MatchID: matchID, Data: msg}
		if s.hub.IsOnline(recipientID) {
			if err := s.hub.SendToUser(recipientID, frame); err != nil {
				log.Error().Err(err).Str("recipient_id", recipientID).Msg("Failed to deliver message frame")
			}
		}
		frame.Type = EventMessageSent
		if s.hub.IsOnline(senderID) {
			if err := s.hub.SendToUser(senderID, frame); err != nil {
				log.Error().Err(err).Str("sender_id", senderID).Msg("Failed to deliver message echo")
			}
		}
	}

	sender, err := s.users.GetByID(ctx, senderID)
	if err == nil {
		if err := s.notifications.NotifyMessage(ctx, recipientID, matchID, summaryOf(sender)); err != nil {
			log.Error().Err(err).Str("recipient_id", recipientID).Msg("Failed to create message notification")
		}
	}

	return msg, nil
}

// MarkMessageRead flips the read flag on behalf of the recipient.
func (s *MatchService) MarkMessageRead(ctx context.Context, messageID, readerID string) error {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return apperrors.NotFound("Message not found")
		}
		return apperrors.Wrap(apperrors.CodeInternal, "Failed to mark message read", err)
	}

	if _, err := s.getForMember(ctx, msg.MatchID, readerID); err != nil {
		return apperrors.NotFound("Message not found")
	}

	if err := s.messages.MarkRead(ctx, messageID, readerID); err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return apperrors.NotFound("Message not found")
		}
		return apperrors.Wrap(apperrors.CodeInternal, "Failed to mark message read", err)
	}
	return nil
}

// NotifyTyping relays a typing indicator to the other member of a match.
func (s *MatchService) NotifyTyping(ctx context.Context, matchID, userID string, typing bool) {
	match, err := s.getForMember(ctx, matchID, userID)
	if err != nil {
		return
	}
	recipientID := otherMember(match, userID)
	if s.hub == nil || !s.hub.IsOnline(recipientID) {
		return
	}

	event := EventTypingStopped
	if typing {
		event = EventTypingStarted
	}
	if err := s.hub.SendToUser(recipientID, WSMessage{
		Type:    event,
		MatchID: matchID,
		Data:    map[string]string{"userId": userID},
	}); err != nil {
		log.Error().Err(err).Str("recipient_id", recipientID).Msg("Failed to deliver typing event")
	}
}
