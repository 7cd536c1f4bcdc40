package repository

import (
	"context"

	"referral-rewards-backend/internal/features/challenge/models"
)

// Repository persists challenges, per-challenge completion sets and the
// milestone claim flags.
type Repository interface {
	Create(ctx context.Context, challenge *models.Challenge) error
	Get(ctx context.Context, challengeID string) (*models.Challenge, error)
	List(ctx context.Context) ([]models.Challenge, error)

	// MarkCompleted adds the user to the challenge's completion set.
	// Returns false when the user already completed it.
	MarkCompleted(ctx context.Context, challengeID, userID string) (bool, error)

	// UnmarkCompleted removes the user again after a failed reward grant.
	UnmarkCompleted(ctx context.Context, challengeID, userID string) error

	IsCompleted(ctx context.Context, challengeID, userID string) (bool, error)

	// CompletedCount returns how many distinct challenges the user has
	// completed.
	CompletedCount(ctx context.Context, userID string) (int64, error)

	// ClaimReferralMilestone flips the set-once flag for a threshold.
	// Returns false when the flag was already set.
	ClaimReferralMilestone(ctx context.Context, userID string, threshold int) (bool, error)

	// UnclaimReferralMilestone clears the flag after a failed grant.
	UnclaimReferralMilestone(ctx context.Context, userID string, threshold int) error

	ReferralMilestones(ctx context.Context, userID string) (map[int]bool, error)

	// ClaimChallengeMilestone flips the one-time challenge-count bonus
	// flag. Returns false when already claimed.
	ClaimChallengeMilestone(ctx context.Context, userID string) (bool, error)

	// UnclaimChallengeMilestone clears the flag after a failed grant.
	UnclaimChallengeMilestone(ctx context.Context, userID string) error

	HasChallengeMilestone(ctx context.Context, userID string) (bool, error)
}
