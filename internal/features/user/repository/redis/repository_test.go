package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"referral-rewards-backend/internal/common/errors"
	"referral-rewards-backend/internal/features/user/models"
	"referral-rewards-backend/internal/platform/redis"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	mr := miniredis.RunT(t)
	client := &redis.Client{Client: goredis.NewClient(&goredis.Options{Addr: mr.Addr()})}
	return NewRepository(client)
}

func TestCreateAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := &models.User{
		ID:       "u1",
		Username: "Happy Hedgehog",
		Email:    "a@b.com",
		MNO:      "mtn",
		Welcome:  models.Welcome{BundleCode: "M1024"},
	}
	require.NoError(t, repo.Create(ctx, user))

	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Happy Hedgehog", got.Username)
	assert.Equal(t, "M1024", got.Welcome.BundleCode)
}

func TestGetUnknownUser(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Get(context.Background(), "nope")
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.True(t, appErr.IsNotFound())
}

func TestUsernameIndexIsCaseInsensitive(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{ID: "u1", Username: "Lucky Lark"}))

	id, err := repo.GetIDByUsername(ctx, "lucky lark")
	require.NoError(t, err)
	assert.Equal(t, "u1", id)

	taken, err := repo.UsernameTaken(ctx, "LUCKY LARK")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.UsernameTaken(ctx, "Gentle Gazelle")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestUpdateRewritesProfile(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := &models.User{ID: "u1", Username: "Lucky Lark"}
	require.NoError(t, repo.Create(ctx, user))

	user.IsBlocked = true
	require.NoError(t, repo.Update(ctx, user))

	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, got.IsBlocked)
}

func TestMarkWelcomeClaimedWinsOnce(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{ID: "u1", Username: "Lucky Lark"}))

	won, err := repo.MarkWelcomeClaimed(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, won)

	won, err = repo.MarkWelcomeClaimed(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, won)
}

func TestGetOverlaysWelcomeClaim(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{ID: "u1", Username: "Lucky Lark"}))

	won, err := repo.MarkWelcomeClaimed(ctx, "u1")
	require.NoError(t, err)
	require.True(t, won)

	// the profile blob was never rewritten, the claim field still governs
	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, got.Welcome.IsClaimed)
}
