// Package reward implements the NovaCoin ledger.
// Every grant appends an audit entry with the user's running balance.
// Coins are monotonically non-decreasing: nothing in the engine ever
// deducts, and level is always re-derived from the balance.
package reward

import (
	"fmt"
	"math"
	"time"

	"github.com/nova-wellness/nova/internal/domain"
	"github.com/nova-wellness/nova/internal/infra/metrics"
)

// ApplyQuestReward returns a copy of state with the quest's reward
// applied: coins added, badge (if any) and completion entry appended,
// level recomputed. Pure function over the state it is given; the
// caller persists the result exactly once per evaluation batch.
func ApplyQuestReward(state domain.GamificationState, quest domain.Quest, now time.Time) domain.GamificationState {
	next := state
	next.Badges = append([]domain.Badge(nil), state.Badges...)
	next.QuestsCompleted = append([]domain.QuestCompletion(nil), state.QuestsCompleted...)

	if quest.RewardCoins > 0 {
		next.NovaCoins += quest.RewardCoins
	}
	if quest.Badge != nil {
		next.Badges = append(next.Badges, domain.Badge{
			Name:       quest.Badge.Name,
			Icon:       quest.Badge.Icon,
			UnlockedAt: now,
		})
	}
	next.QuestsCompleted = append(next.QuestsCompleted, domain.QuestCompletion{
		QuestID:     quest.ID,
		CompletedAt: now,
	})
	next.Level = domain.LevelForCoins(next.NovaCoins)
	return next
}

// ─── Activity Coin Formulas ─────────────────────────────────────────────────
// Carried over from the original product: each activity type earns
// coins from its logged value (minutes, kcal, or steps).

// CoinsForActivity computes the coins earned by logging one activity.
func CoinsForActivity(typ domain.ActivityType, value float64) int64 {
	if value < 0 {
		return 0
	}
	switch typ {
	case domain.ActivityWorkout:
		return int64(math.Floor(value / 100)) // 1 coin per 100 kcal
	case domain.ActivityYoga, domain.ActivityMeditation:
		return int64(math.Floor(value / 5)) // 1 coin per 5 min
	case domain.ActivityScreenTime:
		return int64(math.Floor(value / 30))
	case domain.ActivityReading:
		return int64(math.Floor(value / 10))
	case domain.ActivitySteps:
		return int64(math.Floor(value / 1000)) // 1 coin per 1000 steps
	case domain.ActivityMood, domain.ActivityMenstrual:
		return 20
	case domain.ActivityMeal, domain.ActivitySleep, domain.ActivityMeasurement:
		return 5
	case domain.ActivityMedicine:
		return 1
	}
	return 0
}

// ─── Ledger Service ─────────────────────────────────────────────────────────

// Service persists coin grants and their audit trail.
type Service struct {
	users  domain.UserStore
	ledger domain.RewardLog
}

// NewService creates a reward ledger service.
func NewService(users domain.UserStore, ledger domain.RewardLog) *Service {
	return &Service{users: users, ledger: ledger}
}

// GrantActivityCoins credits the coins earned by one activity log and
// appends the audit entry. Returns the amount granted. A zero-coin
// activity is a no-op.
func (s *Service) GrantActivityCoins(userID string, typ domain.ActivityType, value float64, now time.Time) (int64, error) {
	amount := CoinsForActivity(typ, value)
	if amount == 0 {
		return 0, nil
	}

	state, err := s.users.GetGamification(userID)
	if err != nil {
		return 0, fmt.Errorf("load user: %w", err)
	}
	if state == nil {
		return 0, domain.ErrUserNotFound
	}

	next := *state
	next.NovaCoins += amount
	next.Level = domain.LevelForCoins(next.NovaCoins)

	if err := s.users.SaveGamification(next); err != nil {
		return 0, fmt.Errorf("save coins: %w", err)
	}

	entry := domain.RewardEntry{
		UserID:      userID,
		Timestamp:   now,
		Source:      domain.RewardActivity,
		Reference:   string(typ),
		Amount:      amount,
		Balance:     next.NovaCoins,
		Description: fmt.Sprintf("%s log", typ),
	}
	if err := s.ledger.AppendRewardEntries([]domain.RewardEntry{entry}); err != nil {
		return 0, fmt.Errorf("append ledger: %w", err)
	}

	metrics.CoinsGranted.WithLabelValues(string(domain.RewardActivity)).Add(float64(amount))
	return amount, nil
}

// History returns recent ledger entries for the user.
func (s *Service) History(userID string, limit int) ([]domain.RewardEntry, error) {
	return s.ledger.ListRewardEntries(userID, limit)
}
