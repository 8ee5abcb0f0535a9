// Package domain holds the core gamification types.
// The engine tracks per-user NovaCoins, levels, streaks, badges, and
// quest completions. State is owned by the user aggregate and mutated
// only through the streak tracker and the reward ledger.
package domain

import "time"

// CoinsPerLevel is the NovaCoin cost of each level step.
// level = coins/200 + 1, always derived, never set directly.
const CoinsPerLevel = 200

// DateLayout is the calendar-date format used for streak bookkeeping.
// Streaks compare calendar dates in UTC; time of day is ignored.
const DateLayout = "2006-01-02"

// LevelForCoins derives the level for a coin balance.
func LevelForCoins(coins int64) int {
	if coins < 0 {
		coins = 0
	}
	return int(coins/CoinsPerLevel) + 1
}

// Badge is an unlocked cosmetic achievement. Append-only; slice order
// is unlock order.
type Badge struct {
	Name       string    `json:"name"`
	Icon       string    `json:"icon"`
	UnlockedAt time.Time `json:"unlocked_at"`
}

// BadgeDef describes the badge a quest grants, before it is unlocked.
type BadgeDef struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// QuestCompletion records a quest completing for a user.
// A quest completes at most once per user, ever.
type QuestCompletion struct {
	QuestID     string    `json:"quest_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// GamificationState is the per-user gamification document.
// It is read and written as a whole; no field-level partial update is
// relied upon for correctness.
type GamificationState struct {
	UserID            string            `json:"user_id"`
	CreatedAt         time.Time         `json:"created_at"`
	NovaCoins         int64             `json:"nova_coins"`
	Level             int               `json:"level"`
	StreakDays        int               `json:"streak_days"`
	LongestStreakDays int               `json:"longest_streak_days"`
	LastStreakDate    string            `json:"last_streak_date,omitempty"` // "2006-01-02", "" if never
	Badges            []Badge           `json:"badges"`
	QuestsCompleted   []QuestCompletion `json:"quests_completed"`
}

// NewGamificationState returns the zeroed state for a fresh user:
// coins=0, level=1, streak=0, no badges, no quests.
func NewGamificationState(userID string, now time.Time) GamificationState {
	return GamificationState{
		UserID:    userID,
		CreatedAt: now,
		Level:     1,
	}
}

// HasCompleted reports whether the user already completed a quest.
func (g GamificationState) HasCompleted(questID string) bool {
	for _, c := range g.QuestsCompleted {
		if c.QuestID == questID {
			return true
		}
	}
	return false
}

// Quest is an admin-authored challenge: a condition over activity
// counters that grants a one-time reward when first satisfied.
type Quest struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Condition   string    `json:"condition"` // e.g. "streakDays >= 7 && totalNovaCoins >= 100"
	RewardCoins int64     `json:"reward_coins"`
	Badge       *BadgeDef `json:"badge,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// ─── Stats Snapshot ─────────────────────────────────────────────────────────

// StatsSnapshot is the ephemeral counter bundle a logging endpoint hands
// to quest evaluation. Keys are expression variable names. Counters not
// present default to the stored value (streakDays, totalNovaCoins) or to
// zero (the per-call *Logs counters).
type StatsSnapshot map[string]float64

// Well-known snapshot variable names.
const (
	StatStreakDays     = "streakDays"
	StatTotalNovaCoins = "totalNovaCoins"
)

// ─── Reward Ledger ──────────────────────────────────────────────────────────

// RewardSource categorizes how coins were granted.
type RewardSource string

const (
	RewardQuest    RewardSource = "quest"
	RewardActivity RewardSource = "activity"
)

// RewardEntry is one audit row in the reward ledger. Balance is the
// user's running coin total after the grant.
type RewardEntry struct {
	ID          int64        `json:"id"`
	UserID      string       `json:"user_id"`
	Timestamp   time.Time    `json:"timestamp"`
	Source      RewardSource `json:"source"`
	Reference   string       `json:"reference"` // quest ID or activity type
	Amount      int64        `json:"amount"`
	Balance     int64        `json:"balance"`
	Description string       `json:"description"`
}
