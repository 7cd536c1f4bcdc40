package repository

import (
	"context"

	"referral-rewards-backend/internal/features/ledger/models"
)

// Repository persists token balances and history. Add and Remove are atomic
// with respect to concurrent mutations of the same user.
type Repository interface {
	// Add credits tokens and grows the lifetime total. Returns the new
	// spendable balance.
	Add(ctx context.Context, userID string, amount float64) (float64, error)

	// Remove debits tokens, flooring the balance at zero. The lifetime
	// total is untouched. Returns the new spendable balance.
	Remove(ctx context.Context, userID string, amount float64) (float64, error)

	// Restore credits tokens without growing the lifetime total. Used to
	// return a spend after a failed delivery.
	Restore(ctx context.Context, userID string, amount float64) (float64, error)

	// Set overwrites the spendable balance unconditionally. The lifetime
	// total is untouched.
	Set(ctx context.Context, userID string, amount float64) error

	// Balance reads both counters for an existing user.
	Balance(ctx context.Context, userID string) (*models.Balance, error)

	// AppendHistory prepends an entry, keeping only the seven most recent.
	AppendHistory(ctx context.Context, userID string, entry models.Entry) error

	// History returns entries newest first, at most seven.
	History(ctx context.Context, userID string) ([]models.Entry, error)
}
