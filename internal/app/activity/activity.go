// Package activity orchestrates the activity-logging pipeline: persist
// the log entry, then run the gamification side effects.
package activity

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/nova-wellness/nova/internal/app/quest"
	"github.com/nova-wellness/nova/internal/app/reward"
	"github.com/nova-wellness/nova/internal/app/streak"
	"github.com/nova-wellness/nova/internal/domain"
	"github.com/nova-wellness/nova/internal/infra/metrics"
)

// Result is what one activity log produced.
type Result struct {
	Activity        domain.Activity `json:"activity"`
	NovaCoinsEarned int64           `json:"nova_coins_earned"`
	StreakDays      int             `json:"streak_days"`
}

// Logger runs the logging pipeline. The activity insert is the primary
// write and must succeed; everything after it (coins, streak, quests)
// is best effort and never fails the request.
type Logger struct {
	activities domain.ActivityStore
	users      domain.UserStore
	rewards    *reward.Service
	streaks    *streak.Tracker
	quests     *quest.Evaluator
}

// NewLogger wires the logging pipeline.
func NewLogger(activities domain.ActivityStore, users domain.UserStore,
	rewards *reward.Service, streaks *streak.Tracker, quests *quest.Evaluator) *Logger {
	return &Logger{
		activities: activities,
		users:      users,
		rewards:    rewards,
		streaks:    streaks,
		quests:     quests,
	}
}

// Log records one activity for the user and returns the coins earned
// and the streak after the log.
func (l *Logger) Log(userID string, typ domain.ActivityType, value float64) (Result, error) {
	return l.LogAt(userID, typ, value, time.Now())
}

// LogAt records one activity as of the given instant.
func (l *Logger) LogAt(userID string, typ domain.ActivityType, value float64, now time.Time) (Result, error) {
	start := time.Now()

	if !typ.Valid() {
		return Result{}, fmt.Errorf("%w: %s", domain.ErrUnknownActivityType, typ)
	}
	if value < 0 {
		return Result{}, domain.ErrNegativeValue
	}

	state, err := l.users.GetGamification(userID)
	if err != nil {
		return Result{}, fmt.Errorf("load user: %w", err)
	}
	if state == nil {
		return Result{}, domain.ErrUserNotFound
	}

	a := domain.Activity{
		ID:       uuid.NewString(),
		UserID:   userID,
		Type:     typ,
		Value:    value,
		LoggedAt: now,
	}
	if err := l.activities.InsertActivity(a); err != nil {
		return Result{}, fmt.Errorf("insert activity: %w", err)
	}
	metrics.ActivityLogs.WithLabelValues(string(typ)).Inc()

	res := Result{Activity: a, StreakDays: state.StreakDays}

	// Gamification is best effort from here on. The activity row is
	// committed; a failing side effect loses coins or streak progress
	// for this log, never the log itself.
	coins, err := l.rewards.GrantActivityCoins(userID, typ, value, now)
	if err != nil {
		log.Printf("[activity] coin grant for user %s: %v", userID, err)
	} else {
		res.NovaCoinsEarned = coins
	}

	if typ.CountsTowardStreak() {
		days, err := l.streaks.UpdateStreakAt(userID, now)
		if err != nil {
			log.Printf("[activity] streak update for user %s: %v", userID, err)
		} else {
			res.StreakDays = days
		}
	}

	l.quests.Evaluate(userID, l.statsFor(userID))

	metrics.ActivityLogLatency.Observe(time.Since(start).Seconds())
	return res, nil
}

// statsFor builds the quest-evaluation overlay: the user's cumulative
// per-type log counts. Streak and coin totals come from the stored
// state inside the evaluator.
func (l *Logger) statsFor(userID string) domain.StatsSnapshot {
	counts, err := l.activities.CountActivities(userID)
	if err != nil {
		log.Printf("[activity] count activities for user %s: %v", userID, err)
		return nil
	}
	stats := make(domain.StatsSnapshot, len(counts))
	for name, n := range counts {
		stats[name] = float64(n)
	}
	return stats
}

// History returns the user's recent activity log, newest first.
func (l *Logger) History(userID string, limit int) ([]domain.Activity, error) {
	state, err := l.users.GetGamification(userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if state == nil {
		return nil, domain.ErrUserNotFound
	}
	return l.activities.ListActivities(userID, limit)
}
