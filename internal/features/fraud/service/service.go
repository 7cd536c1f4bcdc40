// Package service implements the registration gate: nine ordered checks,
// short-circuiting on the first failure. Some failures also blacklist the
// submitted email so later attempts die at check one.
package service

import (
	"context"
	"strings"

	"referral-rewards-backend/internal/common/errors"
	"referral-rewards-backend/internal/common/logger"
	"referral-rewards-backend/internal/features/fraud/models"
	"referral-rewards-backend/internal/features/fraud/repository"
	topupservice "referral-rewards-backend/internal/features/topup/service"
	"referral-rewards-backend/internal/utils/phone"
)

// reuseCap is the number of existing accounts per IP or device fingerprint
// at which further registrations are flagged.
const reuseCap = 2

var disposableDomains = map[string]bool{
	"tempmail.com":     true,
	"10minutemail.com": true,
	"mailinator.com":   true,
}

const passwordSymbols = "!@#$%^&*"

type Service struct {
	repo    repository.Repository
	gateway topupservice.Gateway
}

func NewService(repo repository.Repository, gateway topupservice.Gateway) *Service {
	return &Service{repo: repo, gateway: gateway}
}

// Screen runs the registration checks in order and returns the first
// rejection. A nil error means the registration may proceed to account
// creation.
func (s *Service) Screen(ctx context.Context, in models.RegistrationInput) error {
	// 1. email blacklist
	blacklisted, err := s.repo.IsBlacklisted(ctx, in.Email)
	if err != nil {
		return err
	}
	if blacklisted {
		return errors.NewFraudRejection("email_blacklist", "This email has been flagged")
	}

	// 2. IP reuse cap
	ipCount, err := s.repo.CountByIP(ctx, in.IP)
	if err != nil {
		return err
	}
	if ipCount >= reuseCap {
		s.blacklist(ctx, in.Email)
		return errors.NewFraudRejection("ip_reuse", "Too many registrations from this network.")
	}

	// 3. device fingerprint reuse cap
	deviceCount, err := s.repo.CountByDevice(ctx, in.DeviceFingerprint)
	if err != nil {
		return err
	}
	if deviceCount >= reuseCap {
		s.blacklist(ctx, in.Email)
		return errors.NewFraudRejection("device_reuse", "Too many registrations from this device.")
	}

	// 4. disposable email domains
	if disposableDomains[emailDomain(in.Email)] {
		s.blacklist(ctx, in.Email)
		return errors.NewFraudRejection("disposable_email", "Please use a valid email address.")
	}

	// 5. registration rate limit
	allowed, err := s.repo.StampAttempt(ctx, attemptKey(in))
	if err != nil {
		return err
	}
	if !allowed {
		s.blacklist(ctx, in.Email)
		return errors.NewFraudRejection("rate_limit", "Too many registration attempts. Please wait and try again.")
	}

	// 6. phone uniqueness, via a reservation that the caller must release
	// if account creation fails later
	normalized := phone.Normalize(in.Phone)
	reserved, err := s.repo.ReservePhone(ctx, normalized, "pending")
	if err != nil {
		return err
	}
	if !reserved {
		return errors.NewFraudRejection("phone_taken", "A user with this phone number is already registered.")
	}

	reject := func(appErr *errors.AppError) error {
		if err := s.repo.ReleasePhone(ctx, normalized); err != nil {
			logger.Warn().Err(err).Str("phone", normalized).Msg("phone reservation release failed")
		}
		return appErr
	}

	// 7. operator resolvability
	if phone.Operator(normalized) == phone.NetworkUnknown {
		return reject(errors.NewFraudRejection("operator_unknown", "The entered number is invalid."))
	}

	// 8. provider admission
	if !s.gateway.Admissible(ctx) {
		return reject(errors.NewAdmissionDenied())
	}

	// 9. password strength
	if msg := passwordWeakness(in.Password); msg != "" {
		return reject(errors.NewFraudRejection("weak_password", msg))
	}

	return nil
}

// Commit binds the phone reservation to its owner and files the
// registration under its fraud-signal indexes.
func (s *Service) Commit(ctx context.Context, userID string, in models.RegistrationInput) error {
	if err := s.repo.BindPhone(ctx, phone.Normalize(in.Phone), userID); err != nil {
		return err
	}
	return s.repo.IndexRegistration(ctx, userID, in.IP, in.DeviceFingerprint)
}

// Rollback releases the phone reservation after a failed account creation.
func (s *Service) Rollback(ctx context.Context, in models.RegistrationInput) {
	if err := s.repo.ReleasePhone(ctx, phone.Normalize(in.Phone)); err != nil {
		logger.Warn().Err(err).Msg("registration rollback failed")
	}
}

// BlacklistedEmails exposes the blacklist for moderation tooling.
func (s *Service) BlacklistedEmails(ctx context.Context) ([]string, error) {
	return s.repo.BlacklistedEmails(ctx)
}

// BlockedUsers returns the IDs of accounts flagged as blocked or
// fraud-detected.
func (s *Service) BlockedUsers(ctx context.Context) ([]string, error) {
	return s.repo.BlockedUsers(ctx)
}

func (s *Service) blacklist(ctx context.Context, email string) {
	if err := s.repo.Blacklist(ctx, email); err != nil {
		logger.Error().Err(err).Str("email", email).Msg("failed to blacklist email")
	}
}

func emailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}

// attemptKey identifies the registering client for rate limiting.
func attemptKey(in models.RegistrationInput) string {
	if in.DeviceFingerprint != "" {
		return in.DeviceFingerprint
	}
	return in.IP
}

func passwordWeakness(password string) string {
	if len(password) < 6 {
		return "Password is weak: Must be at least 6 characters."
	}
	var upper, digit, symbol bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}
	if !upper {
		return "Password is weak: Add an uppercase letter."
	}
	if !digit {
		return "Password is weak: Add a number."
	}
	if !symbol {
		return "Password is weak: Add a special character."
	}
	return ""
}
