package services

import (
	"context"

	"mememates-backend/internal/apperrors"
	"mememates-backend/internal/models"
)

const discoverFeedSize = 25

// Discoverer supplies an ordered list of profiles for a viewer's swipe deck.
// Ranking is an external collaborator contract: implementations decide the
// order, callers only rely on getting a list.
type Discoverer interface {
	Discover(ctx context.Context, viewerID string) ([]*models.Profile, error)
}

// CandidateLister is the subset of the user repository the recency
// discoverer needs.
type CandidateLister interface {
	ListCandidates(ctx context.Context, viewerID string, limit int) ([]*models.User, error)
}

// RecencyDiscoverer returns profiles the viewer has not swiped on, newest
// first. It deliberately implements no scoring.
type RecencyDiscoverer struct {
	users CandidateLister
}

// NewRecencyDiscoverer creates the default discoverer
func NewRecencyDiscoverer(users CandidateLister) *RecencyDiscoverer {
	return &RecencyDiscoverer{users: users}
}

// Discover returns the viewer's current swipe deck
func (d *RecencyDiscoverer) Discover(ctx context.Context, viewerID string) ([]*models.Profile, error) {
	users, err := d.users.ListCandidates(ctx, viewerID, discoverFeedSize)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "Failed to fetch profiles", err)
	}

	profiles := make([]*models.Profile, 0, len(users))
	for _, user := range users {
		profiles = append(profiles, &models.Profile{
			ID:        user.ID,
			Name:      user.Name,
			Bio:       user.Bio,
			Photos:    user.Photos,
			Interests: user.Interests,
			Anthem:    user.Anthem,
		})
	}
	return profiles, nil
}
