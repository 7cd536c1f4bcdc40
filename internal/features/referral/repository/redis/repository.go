package redis

import (
	"context"
	"encoding/json"

	goredis "github.com/redis/go-redis/v9"

	"referral-rewards-backend/internal/common/errors"
	"referral-rewards-backend/internal/common/logger"
	"referral-rewards-backend/internal/features/referral/models"
	"referral-rewards-backend/internal/features/referral/repository"
	"referral-rewards-backend/internal/platform/redis"
)

type Repository struct {
	client *redis.Client
}

var _ repository.Repository = (*Repository)(nil)

func NewRepository(client *redis.Client) *Repository {
	return &Repository{client: client}
}

func friendKey(id string) string            { return "friend:" + id }
func userFriendsKey(userID string) string   { return "user:" + userID + ":friends" }
func pairKey(userID, friendID string) string {
	return "user:" + userID + ":friend:" + friendID
}
func feedChannel(userID string) string { return "user:" + userID + ":friends:events" }
func claimedKey(recordID string) string { return "friend:" + recordID + ":claimed" }

func (r *Repository) Create(ctx context.Context, friend *models.Friend) error {
	raw, err := json.Marshal(friend)
	if err != nil {
		return errors.NewDatabaseError("friend marshal", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, friendKey(friend.ID), raw, 0)
	pipe.SAdd(ctx, userFriendsKey(friend.UserID), friend.ID)
	pipe.Set(ctx, pairKey(friend.UserID, friend.FriendID), friend.ID, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.NewDatabaseError("friend create", err)
	}

	if err := r.client.Publish(ctx, feedChannel(friend.UserID), raw).Err(); err != nil {
		// the record is stored; a lost notification only delays the feed
		logger.Warn().Err(err).Str("user_id", friend.UserID).Msg("friend feed publish failed")
	}
	return nil
}

func (r *Repository) get(ctx context.Context, recordID string) (*models.Friend, error) {
	raw, err := r.client.Get(ctx, friendKey(recordID)).Result()
	if err == goredis.Nil {
		return nil, errors.New(errors.ErrCodeFriendNotFound, "Friend not found").
			WithDetail("record_id", recordID)
	}
	if err != nil {
		return nil, errors.NewDatabaseError("friend get", err)
	}

	var friend models.Friend
	if err := json.Unmarshal([]byte(raw), &friend); err != nil {
		return nil, errors.NewDatabaseError("friend decode", err)
	}

	// the claim flag lives in its own key so claims stay atomic
	claimed, err := r.client.Exists(ctx, claimedKey(recordID)).Result()
	if err != nil {
		return nil, errors.NewDatabaseError("friend get", err)
	}
	friend.IsClaimed = claimed > 0
	return &friend, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID string) ([]models.Friend, error) {
	ids, err := r.client.SMembers(ctx, userFriendsKey(userID)).Result()
	if err != nil {
		return nil, errors.NewDatabaseError("friend list", err)
	}

	friends := make([]models.Friend, 0, len(ids))
	for _, id := range ids {
		friend, err := r.get(ctx, id)
		if err != nil {
			if appErr, ok := errors.AsAppError(err); ok && appErr.IsNotFound() {
				continue
			}
			return nil, err
		}
		friends = append(friends, *friend)
	}
	return friends, nil
}

func (r *Repository) GetByPair(ctx context.Context, userID, friendID string) (*models.Friend, error) {
	recordID, err := r.client.Get(ctx, pairKey(userID, friendID)).Result()
	if err == goredis.Nil {
		return nil, errors.NewFriendNotFoundError(userID, friendID)
	}
	if err != nil {
		return nil, errors.NewDatabaseError("friend pair lookup", err)
	}
	return r.get(ctx, recordID)
}

// MarkClaimed sets the claim flag with SETNX so two concurrent claims
// cannot both win.
func (r *Repository) MarkClaimed(ctx context.Context, friendRecordID string) (bool, error) {
	exists, err := r.client.Exists(ctx, friendKey(friendRecordID)).Result()
	if err != nil {
		return false, errors.NewDatabaseError("friend claim", err)
	}
	if exists == 0 {
		return false, errors.New(errors.ErrCodeFriendNotFound, "Friend not found").
			WithDetail("record_id", friendRecordID)
	}

	won, err := r.client.SetNX(ctx, claimedKey(friendRecordID), "1", 0).Result()
	if err != nil {
		return false, errors.NewDatabaseError("friend claim", err)
	}
	return won, nil
}

func (r *Repository) CountByUser(ctx context.Context, userID string) (int64, error) {
	count, err := r.client.SCard(ctx, userFriendsKey(userID)).Result()
	if err != nil {
		return 0, errors.NewDatabaseError("friend count", err)
	}
	return count, nil
}

func (r *Repository) Subscribe(ctx context.Context, userID string) (<-chan models.Friend, func(), error) {
	sub := r.client.Subscribe(ctx, feedChannel(userID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, errors.NewDatabaseError("friend feed subscribe", err)
	}

	out := make(chan models.Friend)
	done := make(chan struct{})

	go func() {
		defer close(out)
		for {
			select {
			case <-done:
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				var friend models.Friend
				if err := json.Unmarshal([]byte(msg.Payload), &friend); err != nil {
					logger.Warn().Err(err).Msg("friend feed decode failed")
					continue
				}
				select {
				case out <- friend:
				case <-done:
					return
				}
			}
		}
	}()

	teardown := func() {
		close(done)
		_ = sub.Close()
	}
	return out, teardown, nil
}
