package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/nova-wellness/nova/internal/domain"
)

// ─── User Gamification State ────────────────────────────────────────────────

// CreateUser inserts a fresh gamification document.
// Returns domain.ErrUserExists if the user already has one.
func (d *DB) CreateUser(state domain.GamificationState) error {
	_, err := d.db.Exec(
		`INSERT INTO users (user_id, created_at, nova_coins, level, streak_days, longest_streak_days, last_streak_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		state.UserID, state.CreatedAt.Unix(), state.NovaCoins, state.Level,
		state.StreakDays, state.LongestStreakDays, state.LastStreakDate,
	)
	if err != nil && isUniqueViolation(err) {
		return domain.ErrUserExists
	}
	return err
}

// GetGamification loads the whole state document: the user row plus
// badges and quest completions. Returns (nil, nil) if the user does
// not exist.
func (d *DB) GetGamification(userID string) (*domain.GamificationState, error) {
	row := d.db.QueryRow(
		`SELECT user_id, created_at, nova_coins, level, streak_days, longest_streak_days, last_streak_date
		 FROM users WHERE user_id = ?`, userID,
	)

	var g domain.GamificationState
	var createdAt int64
	err := row.Scan(&g.UserID, &createdAt, &g.NovaCoins, &g.Level,
		&g.StreakDays, &g.LongestStreakDays, &g.LastStreakDate)
	if err == sql.ErrNoRows {
		return nil, nil // Not found, no error
	}
	if err != nil {
		return nil, err
	}
	g.CreatedAt = time.Unix(createdAt, 0)

	if g.Badges, err = d.listBadges(userID); err != nil {
		return nil, fmt.Errorf("load badges: %w", err)
	}
	if g.QuestsCompleted, err = d.listCompletions(userID); err != nil {
		return nil, fmt.Errorf("load completions: %w", err)
	}
	return &g, nil
}

// SaveGamification writes the whole document in one transaction:
// coins, level (recomputed from coins), streak fields, badge appends,
// and quest-completion appends. Appends use INSERT OR IGNORE so a
// replayed save never double-grants.
func (d *DB) SaveGamification(state domain.GamificationState) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	level := domain.LevelForCoins(state.NovaCoins)
	result, err := tx.Exec(
		`UPDATE users SET nova_coins = ?, level = ?, streak_days = ?, longest_streak_days = ?, last_streak_date = ?
		 WHERE user_id = ?`,
		state.NovaCoins, level, state.StreakDays,
		state.LongestStreakDays, state.LastStreakDate, state.UserID,
	)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.ErrUserNotFound
	}

	for _, b := range state.Badges {
		_, err := tx.Exec(
			`INSERT OR IGNORE INTO badges (user_id, name, icon, unlocked_at) VALUES (?, ?, ?, ?)`,
			state.UserID, b.Name, b.Icon, b.UnlockedAt.Unix(),
		)
		if err != nil {
			return fmt.Errorf("save badge %s: %w", b.Name, err)
		}
	}
	for _, c := range state.QuestsCompleted {
		_, err := tx.Exec(
			`INSERT OR IGNORE INTO quests_completed (user_id, quest_id, completed_at) VALUES (?, ?, ?)`,
			state.UserID, c.QuestID, c.CompletedAt.Unix(),
		)
		if err != nil {
			return fmt.Errorf("save completion %s: %w", c.QuestID, err)
		}
	}

	return tx.Commit()
}

// SaveStreak persists only the streak fields.
func (d *DB) SaveStreak(userID string, days, longest int, lastDate string) error {
	result, err := d.db.Exec(
		`UPDATE users SET streak_days = ?, longest_streak_days = ?, last_streak_date = ? WHERE user_id = ?`,
		days, longest, lastDate, userID,
	)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (d *DB) listBadges(userID string) ([]domain.Badge, error) {
	rows, err := d.db.Query(
		`SELECT name, icon, unlocked_at FROM badges WHERE user_id = ? ORDER BY unlocked_at ASC, name ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var badges []domain.Badge
	for rows.Next() {
		var b domain.Badge
		var unlockedAt int64
		if err := rows.Scan(&b.Name, &b.Icon, &unlockedAt); err != nil {
			return nil, err
		}
		b.UnlockedAt = time.Unix(unlockedAt, 0)
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

func (d *DB) listCompletions(userID string) ([]domain.QuestCompletion, error) {
	rows, err := d.db.Query(
		`SELECT quest_id, completed_at FROM quests_completed WHERE user_id = ? ORDER BY completed_at ASC, quest_id ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var completions []domain.QuestCompletion
	for rows.Next() {
		var c domain.QuestCompletion
		var completedAt int64
		if err := rows.Scan(&c.QuestID, &completedAt); err != nil {
			return nil, err
		}
		c.CompletedAt = time.Unix(completedAt, 0)
		completions = append(completions, c)
	}
	return completions, rows.Err()
}
