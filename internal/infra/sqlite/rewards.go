package sqlite

import (
	"time"

	"github.com/nova-wellness/nova/internal/domain"
)

// ─── Reward Ledger ──────────────────────────────────────────────────────────

// AppendRewardEntries appends a batch of audit rows in one transaction.
func (d *DB) AppendRewardEntries(entries []domain.RewardEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range entries {
		_, err := tx.Exec(
			`INSERT INTO reward_ledger (user_id, timestamp, source, reference, amount, balance, description)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.UserID, e.Timestamp.Unix(), string(e.Source), e.Reference,
			e.Amount, e.Balance, e.Description,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListRewardEntries returns the user's most recent ledger rows, newest
// first.
func (d *DB) ListRewardEntries(userID string, limit int) ([]domain.RewardEntry, error) {
	rows, err := d.db.Query(
		`SELECT id, user_id, timestamp, source, reference, amount, balance, description
		 FROM reward_ledger WHERE user_id = ? ORDER BY id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.RewardEntry
	for rows.Next() {
		var e domain.RewardEntry
		var ts int64
		if err := rows.Scan(&e.ID, &e.UserID, &ts, &e.Source, &e.Reference,
			&e.Amount, &e.Balance, &e.Description); err != nil {
			return nil, err
		}
		e.Timestamp = time.Unix(ts, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
