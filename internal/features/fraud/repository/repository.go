package repository

import "context"

// Repository holds the fraud signals: the email blacklist, per-IP and
// per-device registration indexes, the rate-limit stamps and the phone
// uniqueness reservations.
type Repository interface {
	IsBlacklisted(ctx context.Context, email string) (bool, error)
	Blacklist(ctx context.Context, email string) error
	BlacklistedEmails(ctx context.Context) ([]string, error)

	CountByIP(ctx context.Context, ip string) (int64, error)
	CountByDevice(ctx context.Context, fingerprint string) (int64, error)

	// StampAttempt records a registration attempt for the client key.
	// Returns false when a prior attempt is still inside the cooldown.
	StampAttempt(ctx context.Context, clientKey string) (bool, error)

	// ReservePhone claims a normalized phone number for a user. Returns
	// false when another user already holds it.
	ReservePhone(ctx context.Context, normalized, userID string) (bool, error)
	ReleasePhone(ctx context.Context, normalized string) error

	// BindPhone rewrites an existing reservation to its final owner.
	BindPhone(ctx context.Context, normalized, userID string) error

	// IndexRegistration files a successful registration under its IP and
	// device fingerprint for the reuse caps.
	IndexRegistration(ctx context.Context, userID, ip, fingerprint string) error

	// BlockedUsers scans registered accounts and returns the IDs flagged
	// as blocked or fraud-detected.
	BlockedUsers(ctx context.Context) ([]string, error)
}
