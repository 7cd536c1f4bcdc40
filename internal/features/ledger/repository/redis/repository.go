package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	goredis "github.com/redis/go-redis/v9"

	"referral-rewards-backend/internal/common/errors"
	"referral-rewards-backend/internal/features/ledger/models"
	"referral-rewards-backend/internal/features/ledger/repository"
	"referral-rewards-backend/internal/platform/redis"
)

const historyLimit = 7

// addScript credits both counters in one atomic step.
var addScript = goredis.NewScript(`
local new = redis.call('HINCRBYFLOAT', KEYS[1], 'tokens', ARGV[1])
redis.call('HINCRBYFLOAT', KEYS[1], 'total_tokens', ARGV[1])
return new
`)

// removeScript debits the spendable balance, flooring at zero. The lifetime
// total stays put.
var removeScript = goredis.NewScript(`
local cur = tonumber(redis.call('HGET', KEYS[1], 'tokens') or '0')
local new = cur - tonumber(ARGV[1])
if new < 0 then new = 0 end
redis.call('HSET', KEYS[1], 'tokens', tostring(new))
return tostring(new)
`)

type Repository struct {
	client *redis.Client
}

var _ repository.Repository = (*Repository)(nil)

func NewRepository(client *redis.Client) *Repository {
	return &Repository{client: client}
}

func userKey(userID string) string    { return "user:" + userID }
func historyKey(userID string) string { return "user:" + userID + ":history" }

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (r *Repository) Add(ctx context.Context, userID string, amount float64) (float64, error) {
	res, err := addScript.Run(ctx, r.client, []string{userKey(userID)}, amount).Result()
	if err != nil {
		return 0, errors.NewDatabaseError("ledger add", err)
	}
	return parseBalance(res)
}

func (r *Repository) Remove(ctx context.Context, userID string, amount float64) (float64, error) {
	res, err := removeScript.Run(ctx, r.client, []string{userKey(userID)}, amount).Result()
	if err != nil {
		return 0, errors.NewDatabaseError("ledger remove", err)
	}
	return parseBalance(res)
}

func (r *Repository) Restore(ctx context.Context, userID string, amount float64) (float64, error) {
	res, err := r.client.HIncrByFloat(ctx, userKey(userID), "tokens", amount).Result()
	if err != nil {
		return 0, errors.NewDatabaseError("ledger restore", err)
	}
	return round2(res), nil
}

func (r *Repository) Set(ctx context.Context, userID string, amount float64) error {
	if err := r.client.HSet(ctx, userKey(userID), "tokens",
		strconv.FormatFloat(round2(amount), 'f', -1, 64)).Err(); err != nil {
		return errors.NewDatabaseError("ledger set", err)
	}
	return nil
}

func (r *Repository) Balance(ctx context.Context, userID string) (*models.Balance, error) {
	exists, err := r.client.Exists(ctx, userKey(userID)).Result()
	if err != nil {
		return nil, errors.NewDatabaseError("ledger balance", err)
	}
	if exists == 0 {
		return nil, errors.NewUserNotFoundError(userID)
	}

	vals, err := r.client.HMGet(ctx, userKey(userID), "tokens", "total_tokens").Result()
	if err != nil {
		return nil, errors.NewDatabaseError("ledger balance", err)
	}

	balance := &models.Balance{}
	balance.Tokens = fieldToFloat(vals[0])
	balance.TotalTokens = fieldToFloat(vals[1])
	return balance, nil
}

func (r *Repository) AppendHistory(ctx context.Context, userID string, entry models.Entry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return errors.NewDatabaseError("history marshal", err)
	}

	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, historyKey(userID), raw)
	pipe.LTrim(ctx, historyKey(userID), 0, historyLimit-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.NewDatabaseError("history append", err)
	}
	return nil
}

func (r *Repository) History(ctx context.Context, userID string) ([]models.Entry, error) {
	raws, err := r.client.LRange(ctx, historyKey(userID), 0, historyLimit-1).Result()
	if err != nil {
		return nil, errors.NewDatabaseError("history read", err)
	}

	entries := make([]models.Entry, 0, len(raws))
	for _, raw := range raws {
		var entry models.Entry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			return nil, errors.NewDatabaseError("history decode", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseBalance(res interface{}) (float64, error) {
	s, ok := res.(string)
	if !ok {
		return 0, errors.NewDatabaseError("ledger script",
			fmt.Errorf("unexpected script reply type %T", res))
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.NewDatabaseError("ledger script", err)
	}
	return round2(v), nil
}

func fieldToFloat(v interface{}) float64 {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return round2(f)
}
