// Package quest implements the quest catalog and the evaluation engine
// that grants rewards when a user's counters first satisfy a quest
// condition.
package quest

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nova-wellness/nova/internal/app/expr"
	"github.com/nova-wellness/nova/internal/domain"
)

// Catalog manages the admin-authored quest definitions. Evaluation only
// ever sees active quests, in insertion order.
type Catalog struct {
	quests domain.QuestStore
}

// NewCatalog creates a quest catalog over the given store.
func NewCatalog(quests domain.QuestStore) *Catalog {
	return &Catalog{quests: quests}
}

// Create validates and stores a new quest. The condition must parse
// under the restricted grammar; malformed conditions are rejected here
// so they never reach evaluation.
func (c *Catalog) Create(q domain.Quest) (domain.Quest, error) {
	if q.Title == "" {
		return domain.Quest{}, domain.ErrQuestTitleMissing
	}
	if q.Condition == "" {
		return domain.Quest{}, domain.ErrEmptyCondition
	}
	if q.RewardCoins < 0 {
		return domain.Quest{}, domain.ErrNegativeReward
	}
	if err := expr.Validate(q.Condition); err != nil {
		return domain.Quest{}, fmt.Errorf("invalid condition: %w", err)
	}

	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now()
	}
	if err := c.quests.InsertQuest(q); err != nil {
		return domain.Quest{}, fmt.Errorf("insert quest: %w", err)
	}
	return q, nil
}

// ListActive returns the active quest catalog in insertion order.
func (c *Catalog) ListActive() ([]domain.Quest, error) {
	return c.quests.ListActiveQuests()
}

// Get returns one quest by ID.
func (c *Catalog) Get(id string) (*domain.Quest, error) {
	q, err := c.quests.GetQuest(id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, domain.ErrQuestNotFound
	}
	return q, nil
}

// defaultQuests is the starter catalog seeded on first run.
var defaultQuests = []domain.Quest{
	{
		ID: "first-meal", Title: "First Bite",
		Description: "Log your first meal.",
		Condition:   "mealLogs >= 1", RewardCoins: 10, IsActive: true,
	},
	{
		ID: "first-workout", Title: "Warming Up",
		Description: "Log your first workout.",
		Condition:   "workoutLogs >= 1", RewardCoins: 15, IsActive: true,
	},
	{
		ID: "streak-7", Title: "Week Warrior",
		Description: "Stay active for 7 days straight.",
		Condition:   "streakDays >= 7", RewardCoins: 50, IsActive: true,
		Badge: &domain.BadgeDef{Name: "Week Warrior", Icon: "🔥"},
	},
	{
		ID: "streak-30", Title: "Monthly Machine",
		Description: "Stay active for 30 days straight.",
		Condition:   "streakDays >= 30", RewardCoins: 200, IsActive: true,
		Badge: &domain.BadgeDef{Name: "Monthly Machine", Icon: "💪"},
	},
	{
		ID: "coins-100", Title: "Coin Collector",
		Description: "Accumulate 100 NovaCoins.",
		Condition:   "totalNovaCoins >= 100", RewardCoins: 25, IsActive: true,
	},
	{
		ID: "zen-session", Title: "Inner Peace",
		Description: "Log yoga or meditation.",
		Condition:   "yogaLogs >= 1 || meditationLogs >= 1", RewardCoins: 20, IsActive: true,
		Badge: &domain.BadgeDef{Name: "Zen", Icon: "🧘"},
	},
	{
		ID: "streak-and-coins", Title: "Committed",
		Description: "Hold a week-long streak with 100 coins banked.",
		Condition:   "streakDays >= 7 && totalNovaCoins >= 100", RewardCoins: 75, IsActive: true,
	},
}

// SeedDefaults inserts the starter catalog if the store is empty.
// Idempotent: a non-empty catalog is left untouched.
func (c *Catalog) SeedDefaults() ([]domain.Quest, error) {
	count, err := c.quests.CountQuests()
	if err != nil {
		return nil, fmt.Errorf("count quests: %w", err)
	}
	if count > 0 {
		return nil, nil
	}

	now := time.Now()
	var seeded []domain.Quest
	for _, q := range defaultQuests {
		q.CreatedAt = now
		if err := c.quests.InsertQuest(q); err != nil {
			return seeded, fmt.Errorf("seed quest %s: %w", q.ID, err)
		}
		seeded = append(seeded, q)
	}
	return seeded, nil
}
