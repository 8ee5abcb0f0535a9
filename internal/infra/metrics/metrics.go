// Package metrics provides Prometheus metrics for Nova.
// Counters, gauges, and histograms covering activity logging, streaks,
// quest evaluation, and the reward ledger.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Activities ─────────────────────────────────────────────────────────────

// ActivityLogs tracks persisted activity records by type.
var ActivityLogs = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "nova",
	Name:      "activity_logs_total",
	Help:      "Total activity records persisted.",
}, []string{"type"})

// ActivityLogLatency tracks the activity-logging request duration.
var ActivityLogLatency = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "nova",
	Name:      "activity_log_latency_seconds",
	Help:      "Activity logging request duration in seconds.",
	Buckets:   prometheus.DefBuckets,
})

// ─── Streaks ────────────────────────────────────────────────────────────────

// StreakExtensions tracks streak continuations (yesterday → today).
var StreakExtensions = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "nova",
	Name:      "streak_extensions_total",
	Help:      "Total streak-day increments.",
})

// StreakResets tracks streaks broken by a gap of two or more days.
var StreakResets = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "nova",
	Name:      "streak_resets_total",
	Help:      "Total streak resets after missed days.",
})

// ─── Quests ─────────────────────────────────────────────────────────────────

// QuestsCompleted tracks one-time quest completions across all users.
var QuestsCompleted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "nova",
	Name:      "quests_completed_total",
	Help:      "Total quest completions.",
})

// QuestEvaluations tracks quest evaluation batches.
var QuestEvaluations = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "nova",
	Name:      "quest_evaluations_total",
	Help:      "Total quest evaluation batches.",
})

// ExpressionErrors tracks quest conditions that failed to parse or
// evaluate. Each failure is isolated to its quest.
var ExpressionErrors = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "nova",
	Name:      "expression_errors_total",
	Help:      "Total quest condition parse/eval failures.",
})

// ─── Rewards ────────────────────────────────────────────────────────────────

// CoinsGranted tracks NovaCoins granted by source (quest, activity).
var CoinsGranted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "nova",
	Name:      "coins_granted_total",
	Help:      "Total NovaCoins granted.",
}, []string{"source"})

// BadgesUnlocked tracks badge unlocks.
var BadgesUnlocked = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "nova",
	Name:      "badges_unlocked_total",
	Help:      "Total badges unlocked.",
})

// RewardWriteFailures tracks lost gamification writes. The primary
// activity record has already committed when these occur.
var RewardWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "nova",
	Name:      "reward_write_failures_total",
	Help:      "Total best-effort gamification writes that failed.",
})
