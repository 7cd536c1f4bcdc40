package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"referral-rewards-backend/internal/common/errors"
	"referral-rewards-backend/internal/features/fraud/models"
	fraudredis "referral-rewards-backend/internal/features/fraud/repository/redis"
	"referral-rewards-backend/internal/platform/redis"
)

type stubGateway struct{ admissible bool }

func (g stubGateway) Balance(ctx context.Context) (float64, error)                  { return 5000, nil }
func (g stubGateway) Admissible(ctx context.Context) bool                           { return g.admissible }
func (g stubGateway) TopUpAirtime(ctx context.Context, number string, amount int) error { return nil }
func (g stubGateway) TopUpData(ctx context.Context, number, variationID string) error   { return nil }

func newTestGate(t *testing.T) (*Service, *fraudredis.Repository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := &redis.Client{Client: goredis.NewClient(&goredis.Options{Addr: mr.Addr()})}
	repo := fraudredis.NewRepository(client, time.Minute)
	return NewService(repo, stubGateway{admissible: true}), repo, mr
}

func validInput(n int) models.RegistrationInput {
	return models.RegistrationInput{
		Email:             fmt.Sprintf("user%d@example.com", n),
		Phone:             fmt.Sprintf("080312345%02d", n),
		Password:          "Abc123!",
		IP:                fmt.Sprintf("10.0.0.%d", n),
		DeviceFingerprint: fmt.Sprintf("Linux-Firefox-PC-%d", n),
	}
}

func rejectionCheck(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, errors.ErrCodeFraudRejected, appErr.Code)
	check, _ := appErr.Details["check"].(string)
	return check
}

func TestScreenPassesCleanRegistration(t *testing.T) {
	gate, _, _ := newTestGate(t)

	assert.NoError(t, gate.Screen(context.Background(), validInput(1)))
}

func TestScreenRejectsBlacklistedEmail(t *testing.T) {
	gate, repo, _ := newTestGate(t)
	ctx := context.Background()

	in := validInput(1)
	require.NoError(t, repo.Blacklist(ctx, in.Email))

	assert.Equal(t, "email_blacklist", rejectionCheck(t, gate.Screen(ctx, in)))
}

func TestScreenIPReuseCapBlacklists(t *testing.T) {
	gate, repo, _ := newTestGate(t)
	ctx := context.Background()

	require.NoError(t, repo.IndexRegistration(ctx, "u1", "10.0.0.1", "fp-1"))
	require.NoError(t, repo.IndexRegistration(ctx, "u2", "10.0.0.1", "fp-2"))

	in := validInput(3)
	in.IP = "10.0.0.1"
	assert.Equal(t, "ip_reuse", rejectionCheck(t, gate.Screen(ctx, in)))

	// the email is poisoned for future attempts
	blacklisted, err := repo.IsBlacklisted(ctx, in.Email)
	require.NoError(t, err)
	assert.True(t, blacklisted)
}

func TestScreenDuplicateDeviceBlacklists(t *testing.T) {
	gate, repo, _ := newTestGate(t)
	ctx := context.Background()

	require.NoError(t, repo.IndexRegistration(ctx, "u1", "10.0.0.1", "Windows-Chrome-PC"))
	require.NoError(t, repo.IndexRegistration(ctx, "u2", "10.0.0.2", "Windows-Chrome-PC"))

	in := validInput(3)
	in.DeviceFingerprint = "Windows-Chrome-PC"
	assert.Equal(t, "device_reuse", rejectionCheck(t, gate.Screen(ctx, in)))

	blacklisted, err := repo.IsBlacklisted(ctx, in.Email)
	require.NoError(t, err)
	assert.True(t, blacklisted)
}

func TestScreenDisposableDomain(t *testing.T) {
	gate, repo, _ := newTestGate(t)
	ctx := context.Background()

	in := validInput(1)
	in.Email = "throwaway@tempmail.com"
	assert.Equal(t, "disposable_email", rejectionCheck(t, gate.Screen(ctx, in)))

	blacklisted, err := repo.IsBlacklisted(ctx, in.Email)
	require.NoError(t, err)
	assert.True(t, blacklisted)
}

func TestScreenRateLimitInsideCooldown(t *testing.T) {
	gate, _, _ := newTestGate(t)
	ctx := context.Background()

	first := validInput(1)
	require.NoError(t, gate.Screen(ctx, first))

	// same device, fresh email and phone, inside the cooldown
	second := validInput(2)
	second.DeviceFingerprint = first.DeviceFingerprint
	assert.Equal(t, "rate_limit", rejectionCheck(t, gate.Screen(ctx, second)))
}

func TestScreenRateLimitExpires(t *testing.T) {
	gate, _, mr := newTestGate(t)
	ctx := context.Background()

	first := validInput(1)
	require.NoError(t, gate.Screen(ctx, first))

	mr.FastForward(61 * time.Second)

	second := validInput(2)
	second.DeviceFingerprint = first.DeviceFingerprint
	assert.NoError(t, gate.Screen(ctx, second))
}

func TestScreenPhoneUniqueness(t *testing.T) {
	gate, _, _ := newTestGate(t)
	ctx := context.Background()

	first := validInput(1)
	require.NoError(t, gate.Screen(ctx, first))
	require.NoError(t, gate.Commit(ctx, "u1", first))

	second := validInput(2)
	second.Phone = "+234" + first.Phone[1:]
	assert.Equal(t, "phone_taken", rejectionCheck(t, gate.Screen(ctx, second)))
}

func TestScreenUnresolvableOperator(t *testing.T) {
	gate, _, _ := newTestGate(t)

	in := validInput(1)
	in.Phone = "09991234567"
	assert.Equal(t, "operator_unknown", rejectionCheck(t, gate.Screen(context.Background(), in)))
}

func TestScreenAdmissionDenied(t *testing.T) {
	mr := miniredis.RunT(t)
	client := &redis.Client{Client: goredis.NewClient(&goredis.Options{Addr: mr.Addr()})}
	gate := NewService(fraudredis.NewRepository(client, time.Minute), stubGateway{admissible: false})

	err := gate.Screen(context.Background(), validInput(1))
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeAdmissionDenied, appErr.Code)
}

func TestScreenWeakPasswords(t *testing.T) {
	gate, _, _ := newTestGate(t)
	ctx := context.Background()

	cases := []string{
		"Ab1!",     // too short
		"abc123!x", // no uppercase
		"Abcdef!x", // no digit
		"Abc12345", // no symbol
	}
	for i, password := range cases {
		in := validInput(i + 1)
		in.Password = password
		assert.Equal(t, "weak_password", rejectionCheck(t, gate.Screen(ctx, in)), password)
	}
}

func TestRejectedPhoneStaysAvailable(t *testing.T) {
	gate, _, _ := newTestGate(t)
	ctx := context.Background()

	in := validInput(1)
	in.Password = "weak"
	require.Error(t, gate.Screen(ctx, in))

	// the reservation was released, so a proper retry succeeds
	retry := validInput(2)
	retry.Phone = in.Phone
	assert.NoError(t, gate.Screen(ctx, retry))
}

func TestBlockedUsersScansFlaggedProfiles(t *testing.T) {
	gate, _, mr := newTestGate(t)
	ctx := context.Background()

	mr.HSet("user:u1", "profile", `{"id":"u1","username":"Lucky Lark"}`)
	mr.HSet("user:u2", "profile", `{"id":"u2","is_blocked":true}`)
	mr.HSet("user:u3", "profile", `{"id":"u3","fraud_detected":true}`)
	mr.SAdd("users:all", "u1", "u2", "u3")

	blocked, err := gate.BlockedUsers(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u2", "u3"}, blocked)
}

func TestBlockedUsersEmptyRegistry(t *testing.T) {
	gate, _, _ := newTestGate(t)

	blocked, err := gate.BlockedUsers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, blocked)
}
