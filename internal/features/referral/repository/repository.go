package repository

import (
	"context"

	"referral-rewards-backend/internal/features/referral/models"
)

// Repository persists referral edges and exposes a live feed of new ones.
type Repository interface {
	// Create stores a friend record and notifies subscribers of the
	// referrer's feed.
	Create(ctx context.Context, friend *models.Friend) error

	// ListByUser returns every friend referred by the user.
	ListByUser(ctx context.Context, userID string) ([]models.Friend, error)

	// GetByPair finds the edge between a referrer and one invitee.
	GetByPair(ctx context.Context, userID, friendID string) (*models.Friend, error)

	// MarkClaimed flips the claim flag. Reports whether this call won the
	// flip; false means the reward was already claimed.
	MarkClaimed(ctx context.Context, friendRecordID string) (bool, error)

	// CountByUser returns how many friends the user has referred.
	CountByUser(ctx context.Context, userID string) (int64, error)

	// Subscribe streams friends created for the user from now on. The
	// returned function tears the subscription down.
	Subscribe(ctx context.Context, userID string) (<-chan models.Friend, func(), error)
}
