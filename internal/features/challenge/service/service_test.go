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
	challengeredis "referral-rewards-backend/internal/features/challenge/repository/redis"
	ledgerredis "referral-rewards-backend/internal/features/ledger/repository/redis"
	ledgerservice "referral-rewards-backend/internal/features/ledger/service"
	referralmodels "referral-rewards-backend/internal/features/referral/models"
	"referral-rewards-backend/internal/platform/redis"
)

type fakeReferrals struct {
	friends map[string][]referralmodels.Friend
}

func (f *fakeReferrals) List(ctx context.Context, userID string) ([]referralmodels.Friend, error) {
	return f.friends[userID], nil
}

func (f *fakeReferrals) Count(ctx context.Context, userID string) (int64, error) {
	return int64(len(f.friends[userID])), nil
}

func (f *fakeReferrals) add(userID string, at time.Time) {
	n := len(f.friends[userID])
	f.friends[userID] = append(f.friends[userID], referralmodels.Friend{
		ID:        fmt.Sprintf("rec-%d", n),
		UserID:    userID,
		FriendID:  fmt.Sprintf("friend-%d", n),
		Reward:    referralmodels.Reward{Kind: referralmodels.RewardTokens, Tokens: 50},
		CreatedAt: at,
	})
}

func newTestService(t *testing.T) (*Service, *ledgerservice.Service, *fakeReferrals) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := &redis.Client{Client: goredis.NewClient(&goredis.Options{Addr: mr.Addr()})}

	ledger := ledgerservice.NewService(ledgerredis.NewRepository(client))
	referrals := &fakeReferrals{friends: make(map[string][]referralmodels.Friend)}
	svc := NewService(challengeredis.NewRepository(client), ledger, referrals)
	svc.now = func() time.Time { return time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC) }
	return svc, ledger, referrals
}

func TestCreateRejectsUnknownMethod(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), "t", "d", "teleportToMars", 100)
	assert.Error(t, err)
}

func TestCompletePaysOnce(t *testing.T) {
	svc, ledger, referrals := newTestService(t)
	ctx := context.Background()

	challenge, err := svc.Create(ctx, "Sprint", "Invite 5 friends in an hour", "countHourlySprintInvites", 120)
	require.NoError(t, err)

	now := svc.now()
	for i := 0; i < 5; i++ {
		referrals.add("u1", now.Add(-time.Duration(i)*5*time.Minute))
	}

	balance, err := svc.Complete(ctx, "u1", challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, 120.0, balance)

	// second completion attempt is rejected
	_, err = svc.Complete(ctx, "u1", challenge.ID)
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeAlreadyClaimed, appErr.Code)

	// and nothing was granted twice
	got, _, err := ledger.Balance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 120.0, got.Tokens)
}

func TestCompleteRejectsIncomplete(t *testing.T) {
	svc, _, referrals := newTestService(t)
	ctx := context.Background()

	challenge, err := svc.Create(ctx, "Sprint", "Invite 5 friends in an hour", "countHourlySprintInvites", 120)
	require.NoError(t, err)

	referrals.add("u1", svc.now().Add(-10*time.Minute))

	_, err = svc.Complete(ctx, "u1", challenge.ID)
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeChallengePending, appErr.Code)
}

func TestCompleteUnknownChallenge(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Complete(context.Background(), "u1", "ghost")
	assert.Error(t, err)
}

func TestListReflectsCompletion(t *testing.T) {
	svc, _, referrals := newTestService(t)
	ctx := context.Background()

	challenge, err := svc.Create(ctx, "Night owl", "Invite 3 friends at night", "countNightTimeInvites", 80)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		referrals.add("u1", time.Date(2026, 3, 2, 2, i, 0, 0, time.UTC))
	}
	_, err = svc.Complete(ctx, "u1", challenge.ID)
	require.NoError(t, err)

	list, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Completed)

	list, err = svc.List(ctx, "u2")
	require.NoError(t, err)
	assert.False(t, list[0].Completed)
}

func TestClaimMilestone(t *testing.T) {
	svc, ledger, referrals := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		referrals.add("u1", svc.now())
	}

	balance, err := svc.ClaimMilestone(ctx, "u1", 5)
	require.NoError(t, err)
	assert.Equal(t, 75.0, balance)

	// claiming the same threshold again fails and grants nothing
	_, err = svc.ClaimMilestone(ctx, "u1", 5)
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeAlreadyClaimed, appErr.Code)

	got, _, err := ledger.Balance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 75.0, got.Tokens)
}

func TestClaimMilestoneNotReached(t *testing.T) {
	svc, _, referrals := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		referrals.add("u1", svc.now())
	}

	_, err := svc.ClaimMilestone(ctx, "u1", 5)
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeChallengePending, appErr.Code)
}

func TestClaimMilestoneUnknownThreshold(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.ClaimMilestone(context.Background(), "u1", 42)
	assert.Error(t, err)
}

func TestMilestonesProgress(t *testing.T) {
	svc, _, referrals := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		referrals.add("u1", svc.now())
	}
	_, err := svc.ClaimMilestone(ctx, "u1", 5)
	require.NoError(t, err)

	milestones, err := svc.Milestones(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, milestones, 5)
	assert.True(t, milestones[0].Done)
	assert.False(t, milestones[1].Done)
}

func TestChallengeMilestoneRequiresFiveCompletions(t *testing.T) {
	svc, ledger, referrals := newTestService(t)
	ctx := context.Background()

	// build five completable challenges on distinct predicates
	methods := []string{
		"countHourlySprintInvites", "trackTwelveHourInvitations", "countDailyInvites",
		"countNightTimeInvites", "checkDailyInvitationStreak",
	}
	now := svc.now()
	for i := 0; i < 10; i++ {
		referrals.add("u1", now.Add(-time.Duration(i)*3*time.Minute))
	}
	// night invites
	for i := 0; i < 3; i++ {
		referrals.add("u1", time.Date(2026, 3, 2, 1, i, 0, 0, time.UTC))
	}
	// five-day streak
	for d := 1; d <= 5; d++ {
		referrals.add("u1", now.AddDate(0, 0, -d))
	}

	for i, method := range methods {
		challenge, err := svc.Create(ctx, method, fmt.Sprintf("challenge %d", i), method, 10)
		require.NoError(t, err)
		_, err = svc.Complete(ctx, "u1", challenge.ID)
		require.NoError(t, err, method)
	}

	balance, err := svc.ClaimChallengeMilestone(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1050.0, balance)

	_, err = svc.ClaimChallengeMilestone(ctx, "u1")
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeAlreadyClaimed, appErr.Code)

	got, _, err := ledger.Balance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1050.0, got.Tokens)
}

func TestChallengeMilestoneTooEarly(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.ClaimChallengeMilestone(context.Background(), "u1")
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeChallengePending, appErr.Code)
}
