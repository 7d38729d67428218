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

// SwipeStore is the subset of the swipe repository the swipe service needs.
type SwipeStore interface {
	Create(ctx context.Context, swipe *models.Swipe) error
	Exists(ctx context.Context, swiperID, targetID string) (bool, error)
	LikedBack(ctx context.Context, swiperID, targetID string) (bool, error)
}

// MatchCreator is the subset of the match repository the swipe service
// needs.
type MatchCreator interface {
	Create(ctx context.Context, match *models.Match) error
}

// SwipeResult reports the outcome of a swipe.
type SwipeResult struct {
	Matched bool          `json:"matched"`
	Match   *models.Match `json:"match,omitempty"`
}

// SwipeService records discovery decisions and promotes mutual likes into
// matches.
type SwipeService struct {
	swipes        SwipeStore
	matches       MatchCreator
	users         UserStore
	notifications *NotificationService
}

// NewSwipeService creates a new swipe service
func NewSwipeService(swipes SwipeStore, matches MatchCreator, users UserStore, notifications *NotificationService) *SwipeService {
	return &SwipeService{
		swipes:        swipes,
		matches:       matches,
		users:         users,
		notifications: notifications,
	}
}

// Swipe records a LIKE or PASS on a target profile. A LIKE notifies the
// target; a mutual LIKE creates a match and notifies both users.
func (s *SwipeService) Swipe(ctx context.Context, swiperID, targetID, direction string) (*SwipeResult, error) {
	if direction != models.SwipeLike && direction != models.SwipePass {
		return nil, apperrors.InvalidArg("direction must be LIKE or PASS")
	}
	if targetID == swiperID {
		return nil, apperrors.InvalidArg("cannot swipe on yourself")
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.NotFound("Profile not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "Failed to record swipe", err)
	}

	exists, err := s.swipes.Exists(ctx, swiperID, targetID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "Failed to record swipe", err)
	}
	if exists {
		return nil, apperrors.AlreadyExists("Profile already swiped")
	}

	swipe := &models.Swipe{
		ID:        uuid.New().String(),
		SwiperID:  swiperID,
		TargetID:  targetID,
		Direction: direction,
		CreatedAt: time.Now(),
	}
	if err := s.swipes.Create(ctx, swipe); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "Failed to record swipe", err)
	}

	if direction == models.SwipePass {
		return &SwipeResult{}, nil
	}

	swiper, err := s.users.GetByID(ctx, swiperID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "Failed to record swipe", err)
	}

	mutual, err := s.swipes.LikedBack(ctx, swiperID, targetID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "Failed to record swipe", err)
	}

	if !mutual {
		if err := s.notifications.NotifyLike(ctx, targetID, summaryOf(swiper)); err != nil {
			log.Error().Err(err).
				Str("target_id", targetID).
				Msg("Failed to create like notification")
		}
		return &SwipeResult{}, nil
	}

	match, err := s.createMatch(ctx, swiper, target)
	if err != nil {
		return nil, err
	}
	return &SwipeResult{Matched: true, Match: match}, nil
}

func (s *SwipeService) createMatch(ctx context.Context, swiper, target *models.User) (*models.Match, error) {
	userAID, userBID := swiper.ID, target.ID
	if userAID > userBID {
		userAID, userBID = userBID, userAID
	}

	now := time.Now()
	match := &models.Match{
		ID:        uuid.New().String(),
		UserAID:   userAID,
		UserBID:   userBID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.matches.Create(ctx, match); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "Failed to create match", err)
	}

	log.Info().
		Str("match_id", match.ID).
		Str("user_a_id", userAID).
		Str("user_b_id", userBID).
		Msg("Match created")

	// The match row exists at this point; notification failures must not
	// undo it.
	if err := s.notifications.NotifyMatch(ctx, target.ID, match.ID, summaryOf(swiper)); err != nil {
		log.Error().Err(err).Str("recipient_id", target.ID).Msg("Failed to create match notification")
	}
	if err := s.notifications.NotifyMatch(ctx, swiper.ID, match.ID, summaryOf(target)); err != nil {
		log.Error().Err(err).Str("recipient_id", swiper.ID).Msg("Failed to create match notification")
	}

	return match, nil
}

func summaryOf(user *models.User) *models.UserSummary {
	return &models.UserSummary{ID: user.ID, Name: user.Name, Image: user.Image}
}
