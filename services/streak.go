package services

import (
	"time"

	"dealMintAPI/internal/drop"
)

// StreakThreshold is the longest gap between claims that keeps a streak alive.
// Gaps are measured in whole hours, truncated.
const StreakThreshold = 36 * time.Hour

// NextStreak returns the streak after a claim made at now. The longest streak
// never decreases.
func NextStreak(prev drop.Streak, now time.Time) drop.Streak {
	next := drop.Streak{UserID: prev.UserID, LastClaimAt: &now}

	switch {
	case prev.LastClaimAt == nil:
		next.CurrentStreak = 1
	case now.Sub(*prev.LastClaimAt).Truncate(time.Hour) <= StreakThreshold:
		next.CurrentStreak = prev.CurrentStreak + 1
	default:
		next.CurrentStreak = 1
	}

	next.LongestStreak = max(next.CurrentStreak, prev.LongestStreak)
	return next
}
