package quest

import (
	"fmt"
	"log"
	"time"

	"github.com/nova-wellness/nova/internal/app/expr"
	"github.com/nova-wellness/nova/internal/app/reward"
	"github.com/nova-wellness/nova/internal/domain"
	"github.com/nova-wellness/nova/internal/infra/metrics"
)

// Evaluator checks the active quest catalog against a user's current
// stats and applies rewards for quests that newly pass. Evaluation is
// best effort: failures are logged, never surfaced to the activity
// path that triggered them.
type Evaluator struct {
	users  domain.UserStore
	quests domain.QuestStore
	ledger domain.RewardLog
}

// NewEvaluator creates a quest evaluator over the given stores.
func NewEvaluator(users domain.UserStore, quests domain.QuestStore, ledger domain.RewardLog) *Evaluator {
	return &Evaluator{users: users, quests: quests, ledger: ledger}
}

// Evaluate runs a full evaluation pass for the user and swallows any
// error after logging it. Use EvaluateAt when the caller cares about
// the result.
func (e *Evaluator) Evaluate(userID string, stats domain.StatsSnapshot) {
	if _, err := e.EvaluateAt(userID, stats, time.Now()); err != nil {
		log.Printf("[quest] evaluation for user %s failed: %v", userID, err)
	}
}

// EvaluateAt evaluates every active quest the user has not yet
// completed against a merged stat context and applies all passing
// quests in a single state write. It returns the quests completed by
// this pass.
//
// The context seen by every condition in one pass comes from a single
// state read: streakDays and totalNovaCoins default to the stored
// values, every per-activity counter defaults to 0, and entries in
// stats override the defaults. A quest whose condition fails to
// evaluate is skipped; the rest of the pass continues.
func (e *Evaluator) EvaluateAt(userID string, stats domain.StatsSnapshot, now time.Time) ([]domain.Quest, error) {
	metrics.QuestEvaluations.Inc()

	state, err := e.users.GetGamification(userID)
	if err != nil {
		return nil, fmt.Errorf("load gamification: %w", err)
	}
	if state == nil {
		return nil, domain.ErrUserNotFound
	}

	active, err := e.quests.ListActiveQuests()
	if err != nil {
		return nil, fmt.Errorf("list quests: %w", err)
	}
	if len(active) == 0 {
		return nil, nil
	}

	ctx := buildContext(state, stats)

	next := *state
	var completed []domain.Quest
	var entries []domain.RewardEntry
	coinsBefore := state.NovaCoins

	for _, q := range active {
		if next.HasCompleted(q.ID) {
			continue
		}
		ok, err := expr.Evaluate(q.Condition, ctx)
		if err != nil {
			metrics.ExpressionErrors.Inc()
			log.Printf("[quest] condition %q for quest %s: %v", q.Condition, q.ID, err)
			continue
		}
		if !ok {
			continue
		}

		next = reward.ApplyQuestReward(next, q, now)
		completed = append(completed, q)
		if q.Badge != nil {
			metrics.BadgesUnlocked.Inc()
		}
		entries = append(entries, domain.RewardEntry{
			UserID:      userID,
			Timestamp:   now,
			Source:      domain.RewardQuest,
			Reference:   q.ID,
			Amount:      q.RewardCoins,
			Balance:     next.NovaCoins,
			Description: q.Title,
		})
	}

	if len(completed) == 0 {
		return nil, nil
	}

	next.Level = domain.LevelForCoins(next.NovaCoins)
	if err := e.users.SaveGamification(next); err != nil {
		return nil, fmt.Errorf("save gamification: %w", err)
	}
	if err := e.ledger.AppendRewardEntries(entries); err != nil {
		metrics.RewardWriteFailures.Inc()
		log.Printf("[quest] ledger append for user %s: %v", userID, err)
	}

	metrics.QuestsCompleted.Add(float64(len(completed)))
	if granted := next.NovaCoins - coinsBefore; granted > 0 {
		metrics.CoinsGranted.WithLabelValues("quest").Add(float64(granted))
	}
	return completed, nil
}

// buildContext assembles the evaluation context for one pass: stored
// streak and coin totals, zeroed activity counters, then caller
// overrides on top.
func buildContext(state *domain.GamificationState, stats domain.StatsSnapshot) map[string]float64 {
	ctx := make(map[string]float64, len(stats)+len(domain.ActivityTypes())+2)
	ctx[domain.StatStreakDays] = float64(state.StreakDays)
	ctx[domain.StatTotalNovaCoins] = float64(state.NovaCoins)
	for _, t := range domain.ActivityTypes() {
		ctx[t.LogCounter()] = 0
	}
	for k, v := range stats {
		ctx[k] = v
	}
	return ctx
}
