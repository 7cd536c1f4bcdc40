package models

// Entry is one line of a user's token history. History keeps the seven most
// recent entries, newest first.
type Entry struct {
	Task   string  `json:"task"`
	Date   string  `json:"date"`
	Tokens float64 `json:"tokens"`
}

// Balance is the pair of counters kept per user. Tokens is spendable;
// TotalTokens only ever grows and drives level progression.
type Balance struct {
	Tokens      float64 `json:"tokens"`
	TotalTokens float64 `json:"total_tokens"`
}

// Level thresholds on TotalTokens. Index i is the minimum lifetime total for
// level i+2 (everyone starts at level 1).
var LevelThresholds = []float64{120, 250, 340, 460, 600, 750, 920, 1100, 1300}

// Level computes the user level from lifetime earned tokens.
func Level(totalTokens float64) int {
	level := 1
	for _, threshold := range LevelThresholds {
		if totalTokens >= threshold {
			level++
		}
	}
	return level
}
