package redis

import (
	"context"
	"encoding/json"
	"strconv"

	goredis "github.com/redis/go-redis/v9"

	"referral-rewards-backend/internal/common/errors"
	"referral-rewards-backend/internal/features/challenge/models"
	"referral-rewards-backend/internal/features/challenge/repository"
	"referral-rewards-backend/internal/platform/redis"
)

const (
	allChallengesKey        = "challenges:all"
	challengeMilestoneField = "challenge_milestone"
)

type Repository struct {
	client *redis.Client
}

var _ repository.Repository = (*Repository)(nil)

func NewRepository(client *redis.Client) *Repository {
	return &Repository{client: client}
}

func challengeKey(id string) string  { return "challenge:" + id }
func completedKey(id string) string  { return "challenge:" + id + ":completed" }
func userKey(userID string) string   { return "user:" + userID }
func milestonesKey(userID string) string { return "user:" + userID + ":milestones" }

func (r *Repository) Create(ctx context.Context, challenge *models.Challenge) error {
	raw, err := json.Marshal(challenge)
	if err != nil {
		return errors.NewDatabaseError("challenge marshal", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, challengeKey(challenge.ID), raw, 0)
	pipe.SAdd(ctx, allChallengesKey, challenge.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.NewDatabaseError("challenge create", err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, challengeID string) (*models.Challenge, error) {
	raw, err := r.client.Get(ctx, challengeKey(challengeID)).Result()
	if err == goredis.Nil {
		return nil, errors.NewChallengeNotFoundError(challengeID)
	}
	if err != nil {
		return nil, errors.NewDatabaseError("challenge get", err)
	}

	var challenge models.Challenge
	if err := json.Unmarshal([]byte(raw), &challenge); err != nil {
		return nil, errors.NewDatabaseError("challenge decode", err)
	}
	return &challenge, nil
}

func (r *Repository) List(ctx context.Context) ([]models.Challenge, error) {
	ids, err := r.client.SMembers(ctx, allChallengesKey).Result()
	if err != nil {
		return nil, errors.NewDatabaseError("challenge list", err)
	}

	challenges := make([]models.Challenge, 0, len(ids))
	for _, id := range ids {
		challenge, err := r.Get(ctx, id)
		if err != nil {
			if appErr, ok := errors.AsAppError(err); ok && appErr.IsNotFound() {
				continue
			}
			return nil, err
		}
		challenges = append(challenges, *challenge)
	}
	return challenges, nil
}

func (r *Repository) MarkCompleted(ctx context.Context, challengeID, userID string) (bool, error) {
	added, err := r.client.SAdd(ctx, completedKey(challengeID), userID).Result()
	if err != nil {
		return false, errors.NewDatabaseError("challenge complete", err)
	}
	return added == 1, nil
}

func (r *Repository) UnmarkCompleted(ctx context.Context, challengeID, userID string) error {
	if err := r.client.SRem(ctx, completedKey(challengeID), userID).Err(); err != nil {
		return errors.NewDatabaseError("challenge uncomplete", err)
	}
	return nil
}

func (r *Repository) IsCompleted(ctx context.Context, challengeID, userID string) (bool, error) {
	ok, err := r.client.SIsMember(ctx, completedKey(challengeID), userID).Result()
	if err != nil {
		return false, errors.NewDatabaseError("challenge completion check", err)
	}
	return ok, nil
}

func (r *Repository) CompletedCount(ctx context.Context, userID string) (int64, error) {
	ids, err := r.client.SMembers(ctx, allChallengesKey).Result()
	if err != nil {
		return 0, errors.NewDatabaseError("challenge count", err)
	}

	var count int64
	for _, id := range ids {
		ok, err := r.IsCompleted(ctx, id, userID)
		if err != nil {
			return 0, err
		}
		if ok {
			count++
		}
	}
	return count, nil
}

func (r *Repository) ClaimReferralMilestone(ctx context.Context, userID string, threshold int) (bool, error) {
	won, err := r.client.HSetNX(ctx, milestonesKey(userID), strconv.Itoa(threshold), "1").Result()
	if err != nil {
		return false, errors.NewDatabaseError("milestone claim", err)
	}
	return won, nil
}

func (r *Repository) UnclaimReferralMilestone(ctx context.Context, userID string, threshold int) error {
	if err := r.client.HDel(ctx, milestonesKey(userID), strconv.Itoa(threshold)).Err(); err != nil {
		return errors.NewDatabaseError("milestone unclaim", err)
	}
	return nil
}

func (r *Repository) ReferralMilestones(ctx context.Context, userID string) (map[int]bool, error) {
	fields, err := r.client.HGetAll(ctx, milestonesKey(userID)).Result()
	if err != nil {
		return nil, errors.NewDatabaseError("milestone list", err)
	}

	out := make(map[int]bool, len(fields))
	for field := range fields {
		threshold, err := strconv.Atoi(field)
		if err != nil {
			continue
		}
		out[threshold] = true
	}
	return out, nil
}

func (r *Repository) ClaimChallengeMilestone(ctx context.Context, userID string) (bool, error) {
	won, err := r.client.HSetNX(ctx, userKey(userID), challengeMilestoneField, "1").Result()
	if err != nil {
		return false, errors.NewDatabaseError("challenge milestone claim", err)
	}
	return won, nil
}

func (r *Repository) UnclaimChallengeMilestone(ctx context.Context, userID string) error {
	if err := r.client.HDel(ctx, userKey(userID), challengeMilestoneField).Err(); err != nil {
		return errors.NewDatabaseError("challenge milestone unclaim", err)
	}
	return nil
}

func (r *Repository) HasChallengeMilestone(ctx context.Context, userID string) (bool, error) {
	ok, err := r.client.HExists(ctx, userKey(userID), challengeMilestoneField).Result()
	if err != nil {
		return false, errors.NewDatabaseError("challenge milestone check", err)
	}
	return ok, nil
}
