// Package predicates decides challenge completion from a user's referral
// timestamps. Every predicate is total: any input, including none, yields a
// clean true or false.
package predicates

import (
	"sort"
	"time"
)

// Predicate reports whether the referral timestamps complete a challenge,
// evaluated at now.
type Predicate func(invites []time.Time, now time.Time) bool

// byMethod maps stored challenge method names to their predicates.
var byMethod = map[string]Predicate{
	"checkDailyInvitationStreak": func(invites []time.Time, _ time.Time) bool {
		return maxDayStreak(invites, 1) >= 5
	},
	"checkWeekLongStreak": func(invites []time.Time, _ time.Time) bool {
		return maxDayStreak(invites, 1) >= 7
	},
	"checkDoubleReferralStreak": func(invites []time.Time, _ time.Time) bool {
		return maxDayStreak(invites, 2) >= 3
	},
	"countHourlySprintInvites": func(invites []time.Time, now time.Time) bool {
		return countInWindow(invites, now, time.Hour) >= 5
	},
	"trackTwelveHourInvitations": func(invites []time.Time, now time.Time) bool {
		return countInWindow(invites, now, 12*time.Hour) >= 5
	},
	"countDailyInvites": func(invites []time.Time, now time.Time) bool {
		return countInWindow(invites, now, 24*time.Hour) >= 10
	},
	"countWeeklyInvites": func(invites []time.Time, now time.Time) bool {
		return countInWindow(invites, now, 7*24*time.Hour) >= 50
	},
	"countNightTimeInvites": func(invites []time.Time, _ time.Time) bool {
		return countNight(invites) >= 3
	},
	"countWeekendInvites": func(invites []time.Time, _ time.Time) bool {
		return countWeekend(invites) >= 5
	},
}

// Known reports whether a stored method name has a predicate.
func Known(method string) bool {
	_, ok := byMethod[method]
	return ok
}

// Evaluate runs the named predicate. Unknown methods are incomplete.
func Evaluate(method string, invites []time.Time, now time.Time) bool {
	predicate, ok := byMethod[method]
	if !ok {
		return false
	}
	return predicate(invites, now)
}

// maxDayStreak returns the longest run of consecutive calendar days that
// each saw at least minPerDay invites.
func maxDayStreak(invites []time.Time, minPerDay int) int {
	perDay := make(map[string]int)
	dayTimes := make(map[string]time.Time)
	for _, t := range invites {
		key := t.Format("2006-01-02")
		perDay[key]++
		dayTimes[key] = t
	}

	days := make([]time.Time, 0, len(perDay))
	for key, count := range perDay {
		if count >= minPerDay {
			t := dayTimes[key]
			days = append(days, time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()))
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	best, run := 0, 0
	for i, day := range days {
		if i > 0 && day.Sub(days[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}
	return best
}

func countInWindow(invites []time.Time, now time.Time, window time.Duration) int {
	start := now.Add(-window)
	count := 0
	for _, t := range invites {
		if !t.Before(start) && !t.After(now) {
			count++
		}
	}
	return count
}

func countNight(invites []time.Time) int {
	count := 0
	for _, t := range invites {
		if h := t.Hour(); h >= 0 && h < 6 {
			count++
		}
	}
	return count
}

func countWeekend(invites []time.Time) int {
	count := 0
	for _, t := range invites {
		if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
			count++
		}
	}
	return count
}
