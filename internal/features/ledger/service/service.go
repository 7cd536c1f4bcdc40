// Package service implements token grant and spend flows on top of the
// ledger repository.
package service

import (
	"context"
	"time"

	"referral-rewards-backend/internal/common/errors"
	"referral-rewards-backend/internal/common/logger"
	"referral-rewards-backend/internal/features/ledger/models"
	"referral-rewards-backend/internal/features/ledger/repository"
)

type Service struct {
	repo repository.Repository
}

func NewService(repo repository.Repository) *Service {
	return &Service{repo: repo}
}

// Grant credits tokens and records the task in history.
func (s *Service) Grant(ctx context.Context, userID string, amount float64, task string) (float64, error) {
	if amount <= 0 {
		return 0, errors.NewValidationError("amount", "must be positive")
	}

	balance, err := s.repo.Add(ctx, userID, amount)
	if err != nil {
		return 0, err
	}

	if err := s.appendHistory(ctx, userID, task, amount); err != nil {
		logger.Error().Err(err).Str("user_id", userID).Msg("failed to record grant history")
	}
	return balance, nil
}

// Spend debits tokens after verifying the balance covers the amount. The
// pre-check keeps the floor in Remove from silently eating partial amounts.
func (s *Service) Spend(ctx context.Context, userID string, amount float64, task string) (float64, error) {
	if amount <= 0 {
		return 0, errors.NewValidationError("amount", "must be positive")
	}

	current, err := s.repo.Balance(ctx, userID)
	if err != nil {
		return 0, err
	}
	if current.Tokens < amount {
		return 0, errors.NewInsufficientTokensError(current.Tokens, amount)
	}

	balance, err := s.repo.Remove(ctx, userID, amount)
	if err != nil {
		return 0, err
	}

	if err := s.appendHistory(ctx, userID, task, -amount); err != nil {
		logger.Error().Err(err).Str("user_id", userID).Msg("failed to record spend history")
	}
	return balance, nil
}

// Refund returns tokens after a failed delivery. Unlike Grant it leaves the
// lifetime total alone, so a refunded purchase cannot raise the level.
func (s *Service) Refund(ctx context.Context, userID string, amount float64, task string) (float64, error) {
	if amount <= 0 {
		return 0, errors.NewValidationError("amount", "must be positive")
	}

	balance, err := s.repo.Restore(ctx, userID, amount)
	if err != nil {
		return 0, err
	}

	if err := s.appendHistory(ctx, userID, task, amount); err != nil {
		logger.Error().Err(err).Str("user_id", userID).Msg("failed to record refund history")
	}
	return balance, nil
}

// Set overwrites the spendable balance. Administrative surface; no history
// entry is written.
func (s *Service) Set(ctx context.Context, userID string, amount float64) error {
	if amount < 0 {
		return errors.NewValidationError("amount", "must not be negative")
	}
	return s.repo.Set(ctx, userID, amount)
}

// Balance returns the user's counters plus the derived level.
func (s *Service) Balance(ctx context.Context, userID string) (*models.Balance, int, error) {
	balance, err := s.repo.Balance(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return balance, models.Level(balance.TotalTokens), nil
}

// History returns the recent ledger entries, newest first.
func (s *Service) History(ctx context.Context, userID string) ([]models.Entry, error) {
	return s.repo.History(ctx, userID)
}

func (s *Service) appendHistory(ctx context.Context, userID, task string, amount float64) error {
	return s.repo.AppendHistory(ctx, userID, models.Entry{
		Task:   task,
		Date:   time.Now().UTC().Format(time.RFC3339),
		Tokens: amount,
	})
}
