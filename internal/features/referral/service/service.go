// Package service implements referral creation and bonus claiming.
package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"referral-rewards-backend/internal/common/errors"
	"referral-rewards-backend/internal/common/logger"
	ledgerservice "referral-rewards-backend/internal/features/ledger/service"
	"referral-rewards-backend/internal/features/referral/models"
	"referral-rewards-backend/internal/features/referral/repository"
	"referral-rewards-backend/internal/features/topup/catalog"
	topupservice "referral-rewards-backend/internal/features/topup/service"
	"referral-rewards-backend/internal/utils/phone"
)

// referralTokens is the fixed token payout when the drawn reward is tokens.
const referralTokens = 50

// ProfileDirectory resolves the phone number rewards are delivered to.
type ProfileDirectory interface {
	PhoneNumber(ctx context.Context, userID string) (string, error)
}

type Service struct {
	repo     repository.Repository
	ledger   *ledgerservice.Service
	gateway  topupservice.Gateway
	profiles ProfileDirectory
}

func NewService(repo repository.Repository, ledger *ledgerservice.Service, gateway topupservice.Gateway, profiles ProfileDirectory) *Service {
	return &Service{repo: repo, ledger: ledger, gateway: gateway, profiles: profiles}
}

// Create records a referral edge with a randomly drawn reward. The reward is
// drawn for the referrer's network; when the referrer's operator cannot be
// resolved no record is created and no error is raised.
func (s *Service) Create(ctx context.Context, userID, friendID, referrerPhone string) (*models.Friend, error) {
	network := phone.Operator(referrerPhone)
	if network == phone.NetworkUnknown {
		logger.Warn().Str("user_id", userID).Msg("referrer operator unresolved, skipping referral reward")
		return nil, nil
	}

	friend := &models.Friend{
		ID:        uuid.NewString(),
		UserID:    userID,
		FriendID:  friendID,
		Reward:    drawReward(network),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, friend); err != nil {
		return nil, err
	}
	return friend, nil
}

func drawReward(network phone.Network) models.Reward {
	switch rand.Intn(3) {
	case 0:
		return models.Reward{Kind: models.RewardData, Data: catalog.RandomBundle(network)}
	case 1:
		return models.Reward{Kind: models.RewardAirtime, Airtime: catalog.RandomAirtime(network)}
	default:
		return models.Reward{Kind: models.RewardTokens, Tokens: referralTokens}
	}
}

// List returns every friend the user referred.
func (s *Service) List(ctx context.Context, userID string) ([]models.Friend, error) {
	return s.repo.ListByUser(ctx, userID)
}

// FilterUnclaimed drops friends whose bonus was already claimed.
func FilterUnclaimed(friends []models.Friend) []models.Friend {
	out := make([]models.Friend, 0, len(friends))
	for _, f := range friends {
		if !f.IsClaimed {
			out = append(out, f)
		}
	}
	return out
}

// Count returns the number of friends the user referred.
func (s *Service) Count(ctx context.Context, userID string) (int64, error) {
	return s.repo.CountByUser(ctx, userID)
}

// Subscribe streams new referrals for the user.
func (s *Service) Subscribe(ctx context.Context, userID string) (<-chan models.Friend, func(), error) {
	return s.repo.Subscribe(ctx, userID)
}

// Claim delivers the bonus attached to a friend record to the referrer and
// marks it claimed. Delivery happens before the claim flag is committed, so
// a failed delivery leaves the bonus claimable.
func (s *Service) Claim(ctx context.Context, userID, friendID string) (*models.Friend, error) {
	friend, err := s.repo.GetByPair(ctx, userID, friendID)
	if err != nil {
		return nil, err
	}
	if friend.IsClaimed {
		return nil, errors.NewAlreadyClaimedError("referral bonus")
	}

	if !s.gateway.Admissible(ctx) {
		return nil, errors.NewAdmissionDenied()
	}

	number, err := s.profiles.PhoneNumber(ctx, userID)
	if err != nil {
		return nil, err
	}

	switch friend.Reward.Kind {
	case models.RewardAirtime:
		if err := s.gateway.TopUpAirtime(ctx, number, friend.Reward.Airtime); err != nil {
			return nil, err
		}
	case models.RewardData:
		if err := s.gateway.TopUpData(ctx, number, friend.Reward.Data); err != nil {
			return nil, err
		}
	case models.RewardTokens:
		task := fmt.Sprintf("Bonus Claim: Received %v tokens", friend.Reward.Tokens)
		if _, err := s.ledger.Grant(ctx, userID, friend.Reward.Tokens, task); err != nil {
			return nil, err
		}
	default:
		return nil, errors.NewValidationError("reward", "unknown reward kind")
	}

	won, err := s.repo.MarkClaimed(ctx, friend.ID)
	if err != nil {
		return nil, err
	}
	if !won {
		// delivery already happened; report the conflict without undoing it
		return nil, errors.NewAlreadyClaimedError("referral bonus")
	}

	friend.IsClaimed = true
	return friend, nil
}
