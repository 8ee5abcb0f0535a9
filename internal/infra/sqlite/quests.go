package sqlite

import (
	"database/sql"
	"time"

	"github.com/nova-wellness/nova/internal/domain"
)

// ─── Quest Catalog ──────────────────────────────────────────────────────────

// InsertQuest creates a new quest definition.
// Returns domain.ErrQuestExists on a duplicate ID.
func (d *DB) InsertQuest(q domain.Quest) error {
	var badgeName, badgeIcon sql.NullString
	if q.Badge != nil {
		badgeName = sql.NullString{String: q.Badge.Name, Valid: true}
		badgeIcon = sql.NullString{String: q.Badge.Icon, Valid: true}
	}
	_, err := d.db.Exec(
		`INSERT INTO quests (id, title, description, condition, reward_coins, badge_name, badge_icon, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.Title, q.Description, q.Condition, q.RewardCoins,
		badgeName, badgeIcon, q.IsActive, q.CreatedAt.Unix(),
	)
	if err != nil && isUniqueViolation(err) {
		return domain.ErrQuestExists
	}
	return err
}

// GetQuest retrieves a quest by ID. Returns (nil, nil) if not found.
func (d *DB) GetQuest(id string) (*domain.Quest, error) {
	row := d.db.QueryRow(
		`SELECT id, title, description, condition, reward_coins, badge_name, badge_icon, is_active, created_at
		 FROM quests WHERE id = ?`, id,
	)
	return scanQuest(row)
}

// ListActiveQuests returns active quests in insertion order.
func (d *DB) ListActiveQuests() ([]domain.Quest, error) {
	rows, err := d.db.Query(
		`SELECT id, title, description, condition, reward_coins, badge_name, badge_icon, is_active, created_at
		 FROM quests WHERE is_active = 1 ORDER BY rowid ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quests []domain.Quest
	for rows.Next() {
		q, err := scanQuest(rows)
		if err != nil {
			return nil, err
		}
		quests = append(quests, *q)
	}
	return quests, rows.Err()
}

// CountQuests returns the total catalog size, active or not.
func (d *DB) CountQuests() (int, error) {
	var count int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM quests`).Scan(&count)
	return count, err
}

func scanQuest(s scanner) (*domain.Quest, error) {
	var q domain.Quest
	var badgeName, badgeIcon sql.NullString
	var createdAt int64
	err := s.Scan(&q.ID, &q.Title, &q.Description, &q.Condition,
		&q.RewardCoins, &badgeName, &badgeIcon, &q.IsActive, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if badgeName.Valid {
		q.Badge = &domain.BadgeDef{Name: badgeName.String, Icon: badgeIcon.String}
	}
	q.CreatedAt = time.Unix(createdAt, 0)
	return &q, nil
}
