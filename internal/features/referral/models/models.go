package models

import (
	"encoding/json"
	"time"

	"referral-rewards-backend/internal/common/errors"
)

// RewardKind is what a friend record pays out when claimed.
type RewardKind string

const (
	RewardAirtime RewardKind = "airtime"
	RewardData    RewardKind = "data"
	RewardTokens  RewardKind = "tokens"
)

// Reward holds exactly one payout. Airtime carries a naira amount, Data a
// bundle variation id, Tokens a token amount.
type Reward struct {
	Kind    RewardKind
	Airtime int
	Data    string
	Tokens  float64
}

// rewardJSON is the stored shape: three nullable fields, exactly one set.
type rewardJSON struct {
	Airtime *int     `json:"airtime"`
	Data    *string  `json:"data"`
	Tokens  *float64 `json:"tokens"`
}

func (r Reward) MarshalJSON() ([]byte, error) {
	var out rewardJSON
	switch r.Kind {
	case RewardAirtime:
		out.Airtime = &r.Airtime
	case RewardData:
		out.Data = &r.Data
	case RewardTokens:
		out.Tokens = &r.Tokens
	default:
		return nil, errors.NewValidationError("reward", "unknown reward kind")
	}
	return json.Marshal(out)
}

func (r *Reward) UnmarshalJSON(data []byte) error {
	var in rewardJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	set := 0
	if in.Airtime != nil {
		set++
		r.Kind = RewardAirtime
		r.Airtime = *in.Airtime
	}
	if in.Data != nil {
		set++
		r.Kind = RewardData
		r.Data = *in.Data
	}
	if in.Tokens != nil {
		set++
		r.Kind = RewardTokens
		r.Tokens = *in.Tokens
	}
	if set != 1 {
		return errors.NewValidationError("reward", "exactly one of airtime, data, tokens must be set")
	}
	return nil
}

// Friend is one referral edge: FriendID invited by UserID, carrying the
// reward the referrer may claim.
type Friend struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FriendID  string    `json:"friend_id"`
	Reward    Reward    `json:"reward"`
	IsClaimed bool      `json:"is_claimed"`
	CreatedAt time.Time `json:"created_at"`
}

// legacyFriend is the flat wire shape with the reward fields inlined.
type legacyFriend struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FriendID  string    `json:"friend_id"`
	Airtime   *int      `json:"airtime"`
	Data      *string   `json:"data"`
	Tokens    *float64  `json:"tokens"`
	IsClaimed bool      `json:"is_claimed"`
	CreatedAt time.Time `json:"created_at"`
}

func (f Friend) MarshalJSON() ([]byte, error) {
	out := legacyFriend{
		ID:        f.ID,
		UserID:    f.UserID,
		FriendID:  f.FriendID,
		IsClaimed: f.IsClaimed,
		CreatedAt: f.CreatedAt,
	}
	switch f.Reward.Kind {
	case RewardAirtime:
		out.Airtime = &f.Reward.Airtime
	case RewardData:
		out.Data = &f.Reward.Data
	case RewardTokens:
		out.Tokens = &f.Reward.Tokens
	default:
		return nil, errors.NewValidationError("reward", "unknown reward kind")
	}
	return json.Marshal(out)
}

func (f *Friend) UnmarshalJSON(data []byte) error {
	var in legacyFriend
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	f.ID = in.ID
	f.UserID = in.UserID
	f.FriendID = in.FriendID
	f.IsClaimed = in.IsClaimed
	f.CreatedAt = in.CreatedAt

	set := 0
	if in.Airtime != nil {
		set++
		f.Reward = Reward{Kind: RewardAirtime, Airtime: *in.Airtime}
	}
	if in.Data != nil {
		set++
		f.Reward = Reward{Kind: RewardData, Data: *in.Data}
	}
	if in.Tokens != nil {
		set++
		f.Reward = Reward{Kind: RewardTokens, Tokens: *in.Tokens}
	}
	if set != 1 {
		return errors.NewValidationError("reward", "exactly one of airtime, data, tokens must be set")
	}
	return nil
}
