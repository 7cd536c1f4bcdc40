package redis

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"referral-rewards-backend/internal/common/errors"
	"referral-rewards-backend/internal/features/fraud/repository"
	"referral-rewards-backend/internal/platform/redis"
)

const (
	blacklistKey = "fraud:blacklist_emails"
	allUsersKey  = "users:all"
	profileField = "profile"
)

type Repository struct {
	client   *redis.Client
	cooldown time.Duration
}

var _ repository.Repository = (*Repository)(nil)

func NewRepository(client *redis.Client, cooldown time.Duration) *Repository {
	if cooldown <= 0 {
		cooldown = time.Minute
	}
	return &Repository{client: client, cooldown: cooldown}
}

func ipKey(ip string) string              { return "users:by_ip:" + ip }
func deviceKey(fingerprint string) string { return "users:by_device:" + fingerprint }
func rateKey(clientKey string) string     { return "fraud:ratelimit:" + clientKey }
func phoneKey(normalized string) string   { return "users:by_phone:" + normalized }

func (r *Repository) IsBlacklisted(ctx context.Context, email string) (bool, error) {
	ok, err := r.client.SIsMember(ctx, blacklistKey, email).Result()
	if err != nil {
		return false, errors.NewDatabaseError("blacklist check", err)
	}
	return ok, nil
}

func (r *Repository) Blacklist(ctx context.Context, email string) error {
	if err := r.client.SAdd(ctx, blacklistKey, email).Err(); err != nil {
		return errors.NewDatabaseError("blacklist add", err)
	}
	return nil
}

func (r *Repository) BlacklistedEmails(ctx context.Context) ([]string, error) {
	emails, err := r.client.SMembers(ctx, blacklistKey).Result()
	if err != nil {
		return nil, errors.NewDatabaseError("blacklist list", err)
	}
	return emails, nil
}

func (r *Repository) CountByIP(ctx context.Context, ip string) (int64, error) {
	count, err := r.client.SCard(ctx, ipKey(ip)).Result()
	if err != nil {
		return 0, errors.NewDatabaseError("ip count", err)
	}
	return count, nil
}

func (r *Repository) CountByDevice(ctx context.Context, fingerprint string) (int64, error) {
	count, err := r.client.SCard(ctx, deviceKey(fingerprint)).Result()
	if err != nil {
		return 0, errors.NewDatabaseError("device count", err)
	}
	return count, nil
}

func (r *Repository) StampAttempt(ctx context.Context, clientKey string) (bool, error) {
	ok, err := r.client.SetNX(ctx, rateKey(clientKey), "1", r.cooldown).Result()
	if err != nil {
		return false, errors.NewDatabaseError("rate limit stamp", err)
	}
	return ok, nil
}

func (r *Repository) ReservePhone(ctx context.Context, normalized, userID string) (bool, error) {
	ok, err := r.client.SetNX(ctx, phoneKey(normalized), userID, 0).Result()
	if err != nil {
		return false, errors.NewDatabaseError("phone reserve", err)
	}
	return ok, nil
}

func (r *Repository) BindPhone(ctx context.Context, normalized, userID string) error {
	if err := r.client.Set(ctx, phoneKey(normalized), userID, 0).Err(); err != nil {
		return errors.NewDatabaseError("phone bind", err)
	}
	return nil
}

func (r *Repository) ReleasePhone(ctx context.Context, normalized string) error {
	if err := r.client.Del(ctx, phoneKey(normalized)).Err(); err != nil {
		return errors.NewDatabaseError("phone release", err)
	}
	return nil
}

func (r *Repository) IndexRegistration(ctx context.Context, userID, ip, fingerprint string) error {
	pipe := r.client.TxPipeline()
	pipe.SAdd(ctx, ipKey(ip), userID)
	pipe.SAdd(ctx, deviceKey(fingerprint), userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.NewDatabaseError("registration index", err)
	}
	return nil
}

// BlockedUsers walks the account set and picks out profiles carrying either
// restriction flag. The profile blob is owned by the user repository; only
// the two flags are decoded here.
func (r *Repository) BlockedUsers(ctx context.Context) ([]string, error) {
	ids, err := r.client.SMembers(ctx, allUsersKey).Result()
	if err != nil {
		return nil, errors.NewDatabaseError("blocked users scan", err)
	}

	blocked := make([]string, 0)
	for _, id := range ids {
		raw, err := r.client.HGet(ctx, "user:"+id, profileField).Result()
		if err == goredis.Nil {
			continue
		}
		if err != nil {
			return nil, errors.NewDatabaseError("blocked users scan", err)
		}

		var flags struct {
			IsBlocked     bool `json:"is_blocked"`
			FraudDetected bool `json:"fraud_detected"`
		}
		if err := json.Unmarshal([]byte(raw), &flags); err != nil {
			continue
		}
		if flags.IsBlocked || flags.FraudDetected {
			blocked = append(blocked, id)
		}
	}
	return blocked, nil
}
