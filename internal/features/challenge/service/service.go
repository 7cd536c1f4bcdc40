// Package service runs challenge completion and milestone claims. Every
// grant is gated by a set-once flag so rewards pay out at most once; a
// failed grant rolls the flag back.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"referral-rewards-backend/internal/common/errors"
	"referral-rewards-backend/internal/common/logger"
	"referral-rewards-backend/internal/features/challenge/models"
	"referral-rewards-backend/internal/features/challenge/predicates"
	"referral-rewards-backend/internal/features/challenge/repository"
	ledgerservice "referral-rewards-backend/internal/features/ledger/service"
	referralmodels "referral-rewards-backend/internal/features/referral/models"
)

// referralMilestones maps friend-count thresholds to token payouts, in
// ascending threshold order.
var referralMilestones = []models.Milestone{
	{Count: 5, Tokens: 75},
	{Count: 15, Tokens: 125},
	{Count: 25, Tokens: 200},
	{Count: 75, Tokens: 500},
	{Count: 100, Tokens: 1200},
}

const (
	challengeMilestoneTarget = 5
	challengeMilestoneReward = 1000
)

// ReferralSource supplies the referral history the predicates evaluate.
type ReferralSource interface {
	List(ctx context.Context, userID string) ([]referralmodels.Friend, error)
	Count(ctx context.Context, userID string) (int64, error)
}

type Service struct {
	repo      repository.Repository
	ledger    *ledgerservice.Service
	referrals ReferralSource
	now       func() time.Time
}

func NewService(repo repository.Repository, ledger *ledgerservice.Service, referrals ReferralSource) *Service {
	return &Service{repo: repo, ledger: ledger, referrals: referrals, now: time.Now}
}

// Create registers a new challenge. The method must name a known predicate.
func (s *Service) Create(ctx context.Context, title, description, method string, tokens float64) (*models.Challenge, error) {
	if !predicates.Known(method) {
		return nil, errors.NewValidationError("method", fmt.Sprintf("unknown completion method %q", method))
	}
	if tokens <= 0 {
		return nil, errors.NewValidationError("tokens", "must be positive")
	}

	challenge := &models.Challenge{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Tokens:      tokens,
		Method:      method,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.Create(ctx, challenge); err != nil {
		return nil, err
	}
	return challenge, nil
}

// List returns every challenge with the user's completion state.
func (s *Service) List(ctx context.Context, userID string) ([]models.ChallengeStatus, error) {
	challenges, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.ChallengeStatus, 0, len(challenges))
	for _, challenge := range challenges {
		completed, err := s.repo.IsCompleted(ctx, challenge.ID, userID)
		if err != nil {
			return nil, err
		}
		out = append(out, models.ChallengeStatus{Challenge: challenge, Completed: completed})
	}
	return out, nil
}

// Complete verifies the challenge predicate against the user's referral
// history, marks completion and grants the reward. The completion set is
// the at-most-once gate; a failed grant removes the user from it again.
func (s *Service) Complete(ctx context.Context, userID, challengeID string) (float64, error) {
	challenge, err := s.repo.Get(ctx, challengeID)
	if err != nil {
		return 0, err
	}

	invites, err := s.inviteTimes(ctx, userID)
	if err != nil {
		return 0, err
	}
	if !predicates.Evaluate(challenge.Method, invites, s.now()) {
		return 0, errors.New(errors.ErrCodeChallengePending, "Challenge not completed yet!").
			WithDetail("challenge_id", challengeID)
	}

	won, err := s.repo.MarkCompleted(ctx, challengeID, userID)
	if err != nil {
		return 0, err
	}
	if !won {
		return 0, errors.NewAlreadyClaimedError("challenge reward")
	}

	task := fmt.Sprintf("Challenge Completed: %s", challenge.Description)
	balance, err := s.ledger.Grant(ctx, userID, challenge.Tokens, task)
	if err != nil {
		if rbErr := s.repo.UnmarkCompleted(ctx, challengeID, userID); rbErr != nil {
			logger.Error().Err(rbErr).Str("challenge_id", challengeID).
				Str("user_id", userID).Msg("completion rollback failed")
		}
		return 0, err
	}
	return balance, nil
}

// Milestones returns the referral milestones with progress flags.
func (s *Service) Milestones(ctx context.Context, userID string) ([]models.Milestone, error) {
	claimed, err := s.repo.ReferralMilestones(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]models.Milestone, len(referralMilestones))
	copy(out, referralMilestones)
	for i := range out {
		out[i].Done = claimed[out[i].Count]
	}
	return out, nil
}

// ClaimMilestone pays the token bonus for a referral-count threshold. The
// flag is set before the grant and rolled back if granting fails.
func (s *Service) ClaimMilestone(ctx context.Context, userID string, threshold int) (float64, error) {
	milestone, ok := findMilestone(threshold)
	if !ok {
		return 0, errors.NewValidationError("threshold", "unknown milestone")
	}

	count, err := s.referrals.Count(ctx, userID)
	if err != nil {
		return 0, err
	}
	if count < int64(threshold) {
		return 0, errors.New(errors.ErrCodeChallengePending, "Milestone not reached yet").
			WithDetail("threshold", threshold).
			WithDetail("referrals", count)
	}

	won, err := s.repo.ClaimReferralMilestone(ctx, userID, threshold)
	if err != nil {
		return 0, err
	}
	if !won {
		return 0, errors.NewAlreadyClaimedError("referral milestone")
	}

	task := fmt.Sprintf("Bonus Claim: Received %v tokens", milestone.Tokens)
	balance, err := s.ledger.Grant(ctx, userID, milestone.Tokens, task)
	if err != nil {
		if rbErr := s.repo.UnclaimReferralMilestone(ctx, userID, threshold); rbErr != nil {
			logger.Error().Err(rbErr).Str("user_id", userID).
				Int("threshold", threshold).Msg("milestone rollback failed")
		}
		return 0, err
	}
	return balance, nil
}

// ClaimChallengeMilestone pays the one-time bonus for completing five
// distinct challenges.
func (s *Service) ClaimChallengeMilestone(ctx context.Context, userID string) (float64, error) {
	count, err := s.repo.CompletedCount(ctx, userID)
	if err != nil {
		return 0, err
	}
	if count < challengeMilestoneTarget {
		return 0, errors.New(errors.ErrCodeChallengePending, "Complete at least 5 challenges first").
			WithDetail("completed", count)
	}

	won, err := s.repo.ClaimChallengeMilestone(ctx, userID)
	if err != nil {
		return 0, err
	}
	if !won {
		return 0, errors.NewAlreadyClaimedError("challenge milestone")
	}

	balance, err := s.ledger.Grant(ctx, userID, challengeMilestoneReward,
		fmt.Sprintf("Bonus Claim: Received %d tokens", challengeMilestoneReward))
	if err != nil {
		if rbErr := s.repo.UnclaimChallengeMilestone(ctx, userID); rbErr != nil {
			logger.Error().Err(rbErr).Str("user_id", userID).Msg("challenge milestone rollback failed")
		}
		return 0, err
	}
	return balance, nil
}

func (s *Service) inviteTimes(ctx context.Context, userID string) ([]time.Time, error) {
	friends, err := s.referrals.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	times := make([]time.Time, 0, len(friends))
	for _, friend := range friends {
		times = append(times, friend.CreatedAt)
	}
	return times, nil
}

func findMilestone(threshold int) (models.Milestone, bool) {
	for _, m := range referralMilestones {
		if m.Count == threshold {
			return m, true
		}
	}
	return models.Milestone{}, false
}
