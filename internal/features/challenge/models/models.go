package models

import "time"

// Challenge is an invite-based task paying a fixed token reward. Method
// names the predicate that decides completion from the user's referral
// timestamps.
type Challenge struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tokens      float64   `json:"tokens"`
	Method      string    `json:"method"`
	CreatedAt   time.Time `json:"created_at"`
}

// ChallengeStatus pairs a challenge with one user's completion state.
type ChallengeStatus struct {
	Challenge
	Completed bool `json:"completed"`
}

// Milestone is one referral-count threshold with its token payout.
type Milestone struct {
	Count  int     `json:"count"`
	Tokens float64 `json:"tokens"`
	Done   bool    `json:"done"`
}
