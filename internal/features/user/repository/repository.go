package repository

import (
	"context"

	"referral-rewards-backend/internal/features/user/models"
)

// Repository persists account profiles and the indexes lookups depend on.
type Repository interface {
	Create(ctx context.Context, user *models.User) error
	Get(ctx context.Context, userID string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error

	GetIDByUsername(ctx context.Context, username string) (string, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)

	// MarkWelcomeClaimed reports whether this call won the one-shot claim.
	MarkWelcomeClaimed(ctx context.Context, userID string) (bool, error)
}
