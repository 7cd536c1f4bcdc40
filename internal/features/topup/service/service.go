// Package service wraps the VTU provider with admission control. Every
// reward delivery and purchase goes through the gateway here.
package service

import (
	"context"
	"sync/atomic"

	"referral-rewards-backend/internal/common/errors"
	"referral-rewards-backend/internal/common/logger"
	"referral-rewards-backend/internal/features/topup/catalog"
	"referral-rewards-backend/internal/platform/vtu"
	"referral-rewards-backend/internal/utils/phone"
)

// Gateway is the top-up surface the other features depend on.
type Gateway interface {
	Balance(ctx context.Context) (float64, error)
	Admissible(ctx context.Context) bool
	TopUpAirtime(ctx context.Context, number string, amount int) error
	TopUpData(ctx context.Context, number, variationID string) error
}

type Service struct {
	client    *vtu.Client
	threshold float64

	// last observed admission state, refreshed by the balance monitor
	cached atomic.Bool
}

var _ Gateway = (*Service)(nil)

func NewService(client *vtu.Client, threshold float64) *Service {
	return &Service{client: client, threshold: threshold}
}

func (s *Service) Balance(ctx context.Context) (float64, error) {
	return s.client.Balance(ctx)
}

// Admissible reports whether the provider balance is high enough to serve
// deliveries. Any failure to read the balance counts as not admissible.
func (s *Service) Admissible(ctx context.Context) bool {
	balance, err := s.client.Balance(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("admission check failed, treating as inadmissible")
		s.cached.Store(false)
		return false
	}
	ok := balance > s.threshold
	s.cached.Store(ok)
	return ok
}

// CachedAdmissible returns the last observed admission state without a
// provider round trip. Used for read paths where staleness is acceptable.
func (s *Service) CachedAdmissible() bool {
	return s.cached.Load()
}

// RefreshAdmission is the balance monitor entry point.
func (s *Service) RefreshAdmission(ctx context.Context) {
	s.Admissible(ctx)
}

// TopUpAirtime credits airtime after resolving the operator from the number.
func (s *Service) TopUpAirtime(ctx context.Context, number string, amount int) error {
	network := phone.Operator(number)
	if network == phone.NetworkUnknown {
		return errors.NewValidationError("phone", "could not resolve network operator")
	}
	if amount <= 0 {
		return errors.NewValidationError("amount", "must be positive")
	}

	_, err := s.client.Airtime(ctx, phone.Normalize(number), string(network), float64(amount))
	return err
}

// TopUpData credits a data bundle. The variation id must belong to the
// number's operator; callers normally obtain it from the catalog.
func (s *Service) TopUpData(ctx context.Context, number, variationID string) error {
	network := phone.Operator(number)
	if network == phone.NetworkUnknown {
		return errors.NewValidationError("phone", "could not resolve network operator")
	}
	if variationID == "" {
		return errors.NewValidationError("variation_id", "is required")
	}

	_, err := s.client.Data(ctx, phone.Normalize(number), string(network), variationID)
	return err
}

// RandomAirtimeAmount draws an airtime reward amount for the number's
// operator. Zero means the operator is unknown.
func (s *Service) RandomAirtimeAmount(number string) int {
	return catalog.RandomAirtime(phone.Operator(number))
}

// RandomBundleID draws a data bundle reward for the number's operator.
func (s *Service) RandomBundleID(number string) string {
	return catalog.RandomBundle(phone.Operator(number))
}
