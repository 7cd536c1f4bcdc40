package redis

import (
	"context"
	"encoding/json"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"referral-rewards-backend/internal/common/errors"
	"referral-rewards-backend/internal/features/user/models"
	"referral-rewards-backend/internal/features/user/repository"
	"referral-rewards-backend/internal/platform/redis"
)

const (
	allUsersKey         = "users:all"
	usernameIndexKey    = "users:by_username"
	profileField        = "profile"
	welcomeClaimedField = "welcome_claimed"
)

// Repository stores each profile as a JSON field inside the user hash. The
// token counters written by the ledger live in the same hash, so creating a
// profile also makes the user visible to balance reads.
type Repository struct {
	client *redis.Client
}

var _ repository.Repository = (*Repository)(nil)

func NewRepository(client *redis.Client) *Repository {
	return &Repository{client: client}
}

func userKey(userID string) string { return "user:" + userID }

func usernameField(username string) string { return strings.ToLower(username) }

func (r *Repository) Create(ctx context.Context, user *models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return errors.NewDatabaseError("user marshal", err)
	}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, userKey(user.ID), profileField, raw)
	pipe.HSetNX(ctx, userKey(user.ID), "tokens", "0")
	pipe.HSetNX(ctx, userKey(user.ID), "total_tokens", "0")
	pipe.HSet(ctx, usernameIndexKey, usernameField(user.Username), user.ID)
	pipe.SAdd(ctx, allUsersKey, user.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.NewDatabaseError("user create", err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, userID string) (*models.User, error) {
	vals, err := r.client.HMGet(ctx, userKey(userID), profileField, welcomeClaimedField).Result()
	if err != nil {
		return nil, errors.NewDatabaseError("user get", err)
	}

	raw, ok := vals[0].(string)
	if !ok {
		return nil, errors.NewUserNotFoundError(userID)
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, errors.NewDatabaseError("user decode", err)
	}

	// The set-once claim field is authoritative over the profile copy,
	// which is only synced best-effort after a claim.
	if vals[1] != nil {
		user.Welcome.IsClaimed = true
	}
	return &user, nil
}

func (r *Repository) Update(ctx context.Context, user *models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return errors.NewDatabaseError("user marshal", err)
	}
	if err := r.client.HSet(ctx, userKey(user.ID), profileField, raw).Err(); err != nil {
		return errors.NewDatabaseError("user update", err)
	}
	return nil
}

func (r *Repository) GetIDByUsername(ctx context.Context, username string) (string, error) {
	id, err := r.client.HGet(ctx, usernameIndexKey, usernameField(username)).Result()
	if err == goredis.Nil {
		return "", errors.NewUserNotFoundError(username)
	}
	if err != nil {
		return "", errors.NewDatabaseError("username lookup", err)
	}
	return id, nil
}

func (r *Repository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	taken, err := r.client.HExists(ctx, usernameIndexKey, usernameField(username)).Result()
	if err != nil {
		return false, errors.NewDatabaseError("username check", err)
	}
	return taken, nil
}

func (r *Repository) MarkWelcomeClaimed(ctx context.Context, userID string) (bool, error) {
	won, err := r.client.HSetNX(ctx, userKey(userID), welcomeClaimedField, "1").Result()
	if err != nil {
		return false, errors.NewDatabaseError("welcome claim", err)
	}
	return won, nil
}
