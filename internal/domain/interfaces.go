package domain

// ─── Store Interfaces ───────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; application layer depends on them, so
// the core stays testable against an in-memory fake.

// UserStore abstracts persistent per-user gamification state.
// Missing users are reported as (nil, nil); callers map that to
// ErrUserNotFound where the distinction matters.
type UserStore interface {
	// CreateUser inserts a fresh gamification document.
	CreateUser(state GamificationState) error

	// GetGamification loads the whole state document for one user.
	GetGamification(userID string) (*GamificationState, error)

	// SaveGamification writes the whole state document in one
	// transaction: coins, level, streak fields, badge appends, and
	// quest-completion appends.
	SaveGamification(state GamificationState) error

	// SaveStreak persists only the streak fields. Used by the streak
	// tracker, which never touches coins or badges.
	SaveStreak(userID string, days, longest int, lastDate string) error
}

// QuestStore abstracts the read-mostly quest catalog.
type QuestStore interface {
	InsertQuest(q Quest) error
	GetQuest(id string) (*Quest, error)

	// ListActiveQuests returns active quests in insertion order.
	ListActiveQuests() ([]Quest, error)

	CountQuests() (int, error)
}

// ActivityStore abstracts the primary activity log.
type ActivityStore interface {
	InsertActivity(a Activity) error
	ListActivities(userID string, limit int) ([]Activity, error)

	// CountActivities returns per-type log counts keyed by the
	// expression counter names (mealLogs, workoutLogs, ...).
	CountActivities(userID string) (map[string]int, error)
}

// RewardLog abstracts the append-only reward audit ledger.
type RewardLog interface {
	AppendRewardEntries(entries []RewardEntry) error
	ListRewardEntries(userID string, limit int) ([]RewardEntry, error)
}
