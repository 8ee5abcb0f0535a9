// Package streak implements the consecutive-day activity counter.
// A day counts when the user logs at least one streak-qualifying
// activity (workouts and yoga; mood, menstrual, and screen-time logs
// never touch the streak). Streaks compare calendar dates in UTC.
package streak

import (
	"fmt"
	"time"

	"github.com/nova-wellness/nova/internal/domain"
	"github.com/nova-wellness/nova/internal/infra/metrics"
)

// Tracker computes and persists streak-day counts.
type Tracker struct {
	users domain.UserStore
}

// NewTracker creates a streak tracker backed by the given user store.
func NewTracker(users domain.UserStore) *Tracker {
	return &Tracker{users: users}
}

// UpdateStreak advances the user's streak for today and returns the new
// streak-day count. Multiple calls on the same day are idempotent.
// Returns domain.ErrUserNotFound if the user does not exist; callers
// treat that as non-fatal to the activity-logging flow.
func (t *Tracker) UpdateStreak(userID string) (int, error) {
	return t.UpdateStreakAt(userID, time.Now())
}

// UpdateStreakAt advances the streak as of the given instant.
// Accepts a time parameter for testability.
//
// State machine over (lastStreakDate, today):
//   never logged   → 1
//   logged today   → unchanged (no write)
//   logged yesterday → streak + 1
//   anything older → reset to 1
func (t *Tracker) UpdateStreakAt(userID string, now time.Time) (int, error) {
	state, err := t.users.GetGamification(userID)
	if err != nil {
		return 0, fmt.Errorf("load user: %w", err)
	}
	if state == nil {
		return 0, domain.ErrUserNotFound
	}

	today := now.UTC().Format(domain.DateLayout)
	yesterday := now.UTC().AddDate(0, 0, -1).Format(domain.DateLayout)

	var newStreak int
	switch state.LastStreakDate {
	case "":
		newStreak = 1
	case today:
		// Already counted today, nothing to write.
		return state.StreakDays, nil
	case yesterday:
		newStreak = state.StreakDays + 1
		metrics.StreakExtensions.Inc()
	default:
		newStreak = 1
		metrics.StreakResets.Inc()
	}

	longest := state.LongestStreakDays
	if newStreak > longest {
		longest = newStreak
	}

	if err := t.users.SaveStreak(userID, newStreak, longest, today); err != nil {
		return 0, fmt.Errorf("save streak: %w", err)
	}
	return newStreak, nil
}

// Current returns the stored streak without advancing it.
func (t *Tracker) Current(userID string) (int, error) {
	state, err := t.users.GetGamification(userID)
	if err != nil {
		return 0, fmt.Errorf("load user: %w", err)
	}
	if state == nil {
		return 0, domain.ErrUserNotFound
	}
	return state.StreakDays, nil
}
