package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nova-wellness/nova/internal/app/activity"
	"github.com/nova-wellness/nova/internal/app/quest"
	"github.com/nova-wellness/nova/internal/app/reward"
	"github.com/nova-wellness/nova/internal/app/streak"
	"github.com/nova-wellness/nova/internal/infra/sqlite"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	rewards := reward.NewService(db, db)
	streaks := streak.NewTracker(db)
	evaluator := quest.NewEvaluator(db, db, db)
	catalog := quest.NewCatalog(db)
	logger := activity.NewLogger(db, db, rewards, streaks, evaluator)

	if _, err := catalog.SeedDefaults(); err != nil {
		t.Fatalf("SeedDefaults() error: %v", err)
	}

	return NewServer(db, logger, catalog, rewards).Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("invalid JSON response: %v\nbody: %s", err, rec.Body.String())
		}
	}
	return rec, out
}

func createUser(t *testing.T, h http.Handler, userID string) {
	t.Helper()
	rec, _ := doJSON(t, h, http.MethodPost, "/api/v1/users", map[string]string{"user_id": userID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create user: status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func data(t *testing.T, out map[string]any) map[string]any {
	t.Helper()
	d, ok := out["data"].(map[string]any)
	if !ok {
		t.Fatalf("no data envelope in %v", out)
	}
	return d
}

// ─── Health & Version ───────────────────────────────────────────────────────

func TestHealthEndpoint(t *testing.T) {
	h := newTestServer(t)
	rec, out := doJSON(t, h, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if out["status"] != "ok" {
		t.Errorf("status = %v", out["status"])
	}
}

func TestVersionEndpoint(t *testing.T) {
	h := newTestServer(t)
	rec, out := doJSON(t, h, http.MethodGet, "/api/version", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if out["version"] == "" {
		t.Error("missing version")
	}
}

// ─── Users ──────────────────────────────────────────────────────────────────

func TestCreateUser(t *testing.T) {
	h := newTestServer(t)
	rec, out := doJSON(t, h, http.MethodPost, "/api/v1/users", map[string]string{"user_id": "u1"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	d := data(t, out)
	if d["user_id"] != "u1" {
		t.Errorf("user_id = %v", d["user_id"])
	}
	if d["level"] != float64(1) || d["nova_coins"] != float64(0) {
		t.Errorf("fresh user = %v", d)
	}
}

func TestCreateUser_GeneratedID(t *testing.T) {
	h := newTestServer(t)
	rec, out := doJSON(t, h, http.MethodPost, "/api/v1/users", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	if data(t, out)["user_id"] == "" {
		t.Error("expected generated user_id")
	}
}

func TestCreateUser_Duplicate(t *testing.T) {
	h := newTestServer(t)
	createUser(t, h, "u1")
	rec, _ := doJSON(t, h, http.MethodPost, "/api/v1/users", map[string]string{"user_id": "u1"})
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestGamification_NotFound(t *testing.T) {
	h := newTestServer(t)
	rec, _ := doJSON(t, h, http.MethodGet, "/api/v1/users/ghost/gamification", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

// ─── Activities ─────────────────────────────────────────────────────────────

func TestLogActivity(t *testing.T) {
	h := newTestServer(t)
	createUser(t, h, "u1")

	rec, out := doJSON(t, h, http.MethodPost, "/api/v1/users/u1/activities",
		map[string]any{"type": "workout", "value": 350})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	d := data(t, out)
	if d["nova_coins_earned"] != float64(3) {
		t.Errorf("nova_coins_earned = %v, want 3", d["nova_coins_earned"])
	}
	if d["streak_days"] != float64(1) {
		t.Errorf("streak_days = %v, want 1", d["streak_days"])
	}

	// The workout triggered the seeded first-workout quest.
	_, out = doJSON(t, h, http.MethodGet, "/api/v1/users/u1/gamification", nil)
	g := data(t, out)
	// 3 activity coins + 15 quest coins.
	if g["nova_coins"] != float64(18) {
		t.Errorf("nova_coins = %v, want 18", g["nova_coins"])
	}
}

func TestLogActivity_BadType(t *testing.T) {
	h := newTestServer(t)
	createUser(t, h, "u1")
	rec, _ := doJSON(t, h, http.MethodPost, "/api/v1/users/u1/activities",
		map[string]any{"type": "juggling", "value": 1})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestLogActivity_UnknownUser(t *testing.T) {
	h := newTestServer(t)
	rec, _ := doJSON(t, h, http.MethodPost, "/api/v1/users/ghost/activities",
		map[string]any{"type": "meal", "value": 1})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestListActivities(t *testing.T) {
	h := newTestServer(t)
	createUser(t, h, "u1")
	for i := 0; i < 3; i++ {
		doJSON(t, h, http.MethodPost, "/api/v1/users/u1/activities",
			map[string]any{"type": "meal", "value": 1})
	}

	rec, out := doJSON(t, h, http.MethodGet, "/api/v1/users/u1/activities?limit=2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	activities := data(t, out)["activities"].([]any)
	if len(activities) != 2 {
		t.Errorf("len = %d, want 2", len(activities))
	}
}

// ─── Rewards ────────────────────────────────────────────────────────────────

func TestListRewards(t *testing.T) {
	h := newTestServer(t)
	createUser(t, h, "u1")
	doJSON(t, h, http.MethodPost, "/api/v1/users/u1/activities",
		map[string]any{"type": "steps", "value": 5000})

	rec, out := doJSON(t, h, http.MethodGet, "/api/v1/users/u1/rewards", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	d := data(t, out)
	if d["balance"] != float64(5) {
		t.Errorf("balance = %v, want 5", d["balance"])
	}
	entries := d["entries"].([]any)
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
}

// ─── Quests ─────────────────────────────────────────────────────────────────

func TestListQuests_Seeded(t *testing.T) {
	h := newTestServer(t)
	rec, out := doJSON(t, h, http.MethodGet, "/api/v1/quests", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	quests := data(t, out)["quests"].([]any)
	if len(quests) == 0 {
		t.Error("expected seeded quest catalog")
	}
}

func TestCreateQuest(t *testing.T) {
	h := newTestServer(t)
	rec, out := doJSON(t, h, http.MethodPost, "/api/v1/quests", map[string]any{
		"title":        "Ten Thousand",
		"condition":    "stepLogs >= 10",
		"reward_coins": 30,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	id := data(t, out)["id"].(string)

	rec, out = doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/v1/quests/%s", id), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	if data(t, out)["title"] != "Ten Thousand" {
		t.Errorf("title = %v", data(t, out)["title"])
	}
}

func TestCreateQuest_MalformedCondition(t *testing.T) {
	h := newTestServer(t)
	rec, _ := doJSON(t, h, http.MethodPost, "/api/v1/quests", map[string]any{
		"title":     "Broken",
		"condition": "streakDays >>> 7",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCreateQuest_StoreFailure(t *testing.T) {
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	rewards := reward.NewService(db, db)
	streaks := streak.NewTracker(db)
	evaluator := quest.NewEvaluator(db, db, db)
	catalog := quest.NewCatalog(db)
	logger := activity.NewLogger(db, db, rewards, streaks, evaluator)
	h := NewServer(db, logger, catalog, rewards).Handler()

	// A closed database makes the insert fail after validation passes.
	db.Close()

	rec, _ := doJSON(t, h, http.MethodPost, "/api/v1/quests", map[string]any{
		"title":        "Valid",
		"condition":    "stepLogs >= 10",
		"reward_coins": 30,
	})
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestGetQuest_NotFound(t *testing.T) {
	h := newTestServer(t)
	rec, _ := doJSON(t, h, http.MethodGet, "/api/v1/quests/ghost", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
