package quest

import (
	"errors"
	"testing"
	"time"

	"github.com/nova-wellness/nova/internal/domain"
)

// ─── In-memory fakes ─────────────────────────────────────────────────

type memStore struct {
	states    map[string]*domain.GamificationState
	quests    []domain.Quest
	entries   []domain.RewardEntry
	saveCalls int
	appendErr error
}

func newMemStore() *memStore {
	return &memStore{states: make(map[string]*domain.GamificationState)}
}

func (m *memStore) CreateUser(state domain.GamificationState) error {
	if _, ok := m.states[state.UserID]; ok {
		return domain.ErrUserExists
	}
	m.states[state.UserID] = &state
	return nil
}

func (m *memStore) GetGamification(userID string) (*domain.GamificationState, error) {
	s, ok := m.states[userID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) SaveGamification(state domain.GamificationState) error {
	m.saveCalls++
	m.states[state.UserID] = &state
	return nil
}

func (m *memStore) SaveStreak(userID string, days, longest int, lastDate string) error {
	s, ok := m.states[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	s.StreakDays = days
	s.LongestStreakDays = longest
	s.LastStreakDate = lastDate
	return nil
}

func (m *memStore) InsertQuest(q domain.Quest) error {
	for _, existing := range m.quests {
		if existing.ID == q.ID {
			return domain.ErrQuestExists
		}
	}
	m.quests = append(m.quests, q)
	return nil
}

func (m *memStore) GetQuest(id string) (*domain.Quest, error) {
	for i := range m.quests {
		if m.quests[i].ID == id {
			cp := m.quests[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListActiveQuests() ([]domain.Quest, error) {
	var out []domain.Quest
	for _, q := range m.quests {
		if q.IsActive {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *memStore) CountQuests() (int, error) {
	return len(m.quests), nil
}

func (m *memStore) AppendRewardEntries(entries []domain.RewardEntry) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.entries = append(m.entries, entries...)
	return nil
}

func (m *memStore) ListRewardEntries(userID string, limit int) ([]domain.RewardEntry, error) {
	var out []domain.RewardEntry
	for _, e := range m.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

// ─── Catalog ─────────────────────────────────────────────────────────

func TestCatalogCreateValidation(t *testing.T) {
	store := newMemStore()
	cat := NewCatalog(store)

	tests := []struct {
		name    string
		quest   domain.Quest
		wantErr error
	}{
		{
			name:    "missing title",
			quest:   domain.Quest{Condition: "streakDays >= 1"},
			wantErr: domain.ErrQuestTitleMissing,
		},
		{
			name:    "empty condition",
			quest:   domain.Quest{Title: "Q"},
			wantErr: domain.ErrEmptyCondition,
		},
		{
			name:    "negative reward",
			quest:   domain.Quest{Title: "Q", Condition: "streakDays >= 1", RewardCoins: -5},
			wantErr: domain.ErrNegativeReward,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cat.Create(tt.quest)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCatalogCreateRejectsMalformedCondition(t *testing.T) {
	cat := NewCatalog(newMemStore())
	_, err := cat.Create(domain.Quest{Title: "Broken", Condition: "streakDays >>> 7"})
	if err == nil {
		t.Fatal("expected error for malformed condition")
	}
}

func TestCatalogCreateAssignsID(t *testing.T) {
	store := newMemStore()
	cat := NewCatalog(store)
	q, err := cat.Create(domain.Quest{Title: "Q", Condition: "mealLogs >= 1", IsActive: true})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if q.ID == "" {
		t.Error("expected generated ID")
	}
	if q.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	got, err := cat.Get(q.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Title != "Q" {
		t.Errorf("Get() title = %q, want %q", got.Title, "Q")
	}
}

func TestCatalogGetNotFound(t *testing.T) {
	cat := NewCatalog(newMemStore())
	_, err := cat.Get("nope")
	if !errors.Is(err, domain.ErrQuestNotFound) {
		t.Fatalf("Get() error = %v, want ErrQuestNotFound", err)
	}
}

func TestCatalogSeedDefaults(t *testing.T) {
	store := newMemStore()
	cat := NewCatalog(store)

	seeded, err := cat.SeedDefaults()
	if err != nil {
		t.Fatalf("SeedDefaults() error = %v", err)
	}
	if len(seeded) != len(defaultQuests) {
		t.Fatalf("seeded %d quests, want %d", len(seeded), len(defaultQuests))
	}

	// Second call must be a no-op.
	again, err := cat.SeedDefaults()
	if err != nil {
		t.Fatalf("SeedDefaults() second call error = %v", err)
	}
	if again != nil {
		t.Errorf("second seed inserted %d quests, want 0", len(again))
	}
	if n, _ := store.CountQuests(); n != len(defaultQuests) {
		t.Errorf("quest count = %d, want %d", n, len(defaultQuests))
	}
}

func TestDefaultQuestConditionsAreValid(t *testing.T) {
	cat := NewCatalog(newMemStore())
	for _, q := range defaultQuests {
		if _, err := cat.Create(domain.Quest{Title: q.Title, Condition: q.Condition}); err != nil {
			t.Errorf("default quest %s: %v", q.ID, err)
		}
	}
}

// ─── Evaluator ───────────────────────────────────────────────────────

func seedUser(t *testing.T, store *memStore, coins int64, streak int) {
	t.Helper()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	state := domain.NewGamificationState("u1", now)
	state.NovaCoins = coins
	state.Level = domain.LevelForCoins(coins)
	state.StreakDays = streak
	if err := store.CreateUser(state); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
}

func TestEvaluateGrantsRewardAndLevels(t *testing.T) {
	store := newMemStore()
	seedUser(t, store, 190, 7)
	store.quests = []domain.Quest{
		{
			ID: "streak-and-coins", Title: "Committed",
			Condition:   "streakDays >= 7 && totalNovaCoins >= 100",
			RewardCoins: 50, IsActive: true,
			Badge: &domain.BadgeDef{Name: "Committed", Icon: "⭐"},
		},
	}

	ev := NewEvaluator(store, store, store)
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	completed, err := ev.EvaluateAt("u1", nil, now)
	if err != nil {
		t.Fatalf("EvaluateAt() error = %v", err)
	}
	if len(completed) != 1 || completed[0].ID != "streak-and-coins" {
		t.Fatalf("completed = %+v, want the one quest", completed)
	}

	state, _ := store.GetGamification("u1")
	if state.NovaCoins != 240 {
		t.Errorf("NovaCoins = %d, want 240", state.NovaCoins)
	}
	if state.Level != 2 {
		t.Errorf("Level = %d, want 2", state.Level)
	}
	if len(state.Badges) != 1 || state.Badges[0].Name != "Committed" {
		t.Errorf("Badges = %+v, want Committed badge", state.Badges)
	}
	if !state.HasCompleted("streak-and-coins") {
		t.Error("quest not recorded as completed")
	}
	if len(store.entries) != 1 {
		t.Fatalf("ledger entries = %d, want 1", len(store.entries))
	}
	entry := store.entries[0]
	if entry.Source != domain.RewardQuest || entry.Amount != 50 || entry.Balance != 240 {
		t.Errorf("ledger entry = %+v", entry)
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	store := newMemStore()
	seedUser(t, store, 0, 10)
	store.quests = []domain.Quest{
		{ID: "streak-7", Title: "Week", Condition: "streakDays >= 7", RewardCoins: 50, IsActive: true},
	}

	ev := NewEvaluator(store, store, store)
	now := time.Now()
	if _, err := ev.EvaluateAt("u1", nil, now); err != nil {
		t.Fatalf("first pass: %v", err)
	}
	completed, err := ev.EvaluateAt("u1", nil, now)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if completed != nil {
		t.Errorf("second pass completed %d quests, want 0", len(completed))
	}
	state, _ := store.GetGamification("u1")
	if state.NovaCoins != 50 {
		t.Errorf("NovaCoins = %d, want 50 (no double grant)", state.NovaCoins)
	}
	if store.saveCalls != 1 {
		t.Errorf("saveCalls = %d, want 1 (no write on second pass)", store.saveCalls)
	}
}

func TestEvaluateSkipsMalformedCondition(t *testing.T) {
	store := newMemStore()
	seedUser(t, store, 0, 10)
	store.quests = []domain.Quest{
		{ID: "broken", Title: "Broken", Condition: "streakDays >= ", RewardCoins: 100, IsActive: true},
		{ID: "fine", Title: "Fine", Condition: "streakDays >= 7", RewardCoins: 10, IsActive: true},
	}

	ev := NewEvaluator(store, store, store)
	completed, err := ev.EvaluateAt("u1", nil, time.Now())
	if err != nil {
		t.Fatalf("EvaluateAt() error = %v", err)
	}
	if len(completed) != 1 || completed[0].ID != "fine" {
		t.Fatalf("completed = %+v, want only the well-formed quest", completed)
	}
	state, _ := store.GetGamification("u1")
	if state.NovaCoins != 10 {
		t.Errorf("NovaCoins = %d, want 10", state.NovaCoins)
	}
}

func TestEvaluateStatsOverrideDefaults(t *testing.T) {
	store := newMemStore()
	seedUser(t, store, 0, 0)
	store.quests = []domain.Quest{
		{ID: "first-meal", Title: "First Bite", Condition: "mealLogs >= 1", RewardCoins: 10, IsActive: true},
	}

	ev := NewEvaluator(store, store, store)

	// Without an overlay every activity counter defaults to zero.
	completed, err := ev.EvaluateAt("u1", nil, time.Now())
	if err != nil {
		t.Fatalf("EvaluateAt() error = %v", err)
	}
	if completed != nil {
		t.Fatalf("completed = %+v, want none", completed)
	}

	completed, err = ev.EvaluateAt("u1", domain.StatsSnapshot{"mealLogs": 3}, time.Now())
	if err != nil {
		t.Fatalf("EvaluateAt() with stats error = %v", err)
	}
	if len(completed) != 1 {
		t.Fatalf("completed = %+v, want 1", completed)
	}
}

func TestEvaluateMultipleQuestsSinglePass(t *testing.T) {
	store := newMemStore()
	seedUser(t, store, 95, 7)
	store.quests = []domain.Quest{
		{ID: "streak-7", Title: "Week", Condition: "streakDays >= 7", RewardCoins: 50, IsActive: true},
		{ID: "coins-100", Title: "Coins", Condition: "totalNovaCoins >= 100", RewardCoins: 25, IsActive: true},
	}

	ev := NewEvaluator(store, store, store)
	completed, err := ev.EvaluateAt("u1", nil, time.Now())
	if err != nil {
		t.Fatalf("EvaluateAt() error = %v", err)
	}

	// totalNovaCoins in the context is the value read at the start of
	// the pass (95), so coins-100 does not fire even though the first
	// grant pushes the balance past 100.
	if len(completed) != 1 || completed[0].ID != "streak-7" {
		t.Fatalf("completed = %+v, want only streak-7", completed)
	}
	if store.saveCalls != 1 {
		t.Errorf("saveCalls = %d, want 1", store.saveCalls)
	}

	// A later pass sees the committed balance and fires the second.
	completed, err = ev.EvaluateAt("u1", nil, time.Now())
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if len(completed) != 1 || completed[0].ID != "coins-100" {
		t.Fatalf("second pass completed = %+v, want coins-100", completed)
	}
}

func TestEvaluateUnknownUser(t *testing.T) {
	store := newMemStore()
	ev := NewEvaluator(store, store, store)
	_, err := ev.EvaluateAt("ghost", nil, time.Now())
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("error = %v, want ErrUserNotFound", err)
	}
}

func TestEvaluateInactiveQuestIgnored(t *testing.T) {
	store := newMemStore()
	seedUser(t, store, 0, 10)
	store.quests = []domain.Quest{
		{ID: "retired", Title: "Retired", Condition: "streakDays >= 1", RewardCoins: 10, IsActive: false},
	}

	ev := NewEvaluator(store, store, store)
	completed, err := ev.EvaluateAt("u1", nil, time.Now())
	if err != nil {
		t.Fatalf("EvaluateAt() error = %v", err)
	}
	if completed != nil {
		t.Errorf("completed = %+v, want none", completed)
	}
}
