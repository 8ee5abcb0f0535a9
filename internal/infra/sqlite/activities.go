package sqlite

import (
	"time"

	"github.com/nova-wellness/nova/internal/domain"
)

// ─── Activity Log ───────────────────────────────────────────────────────────

// InsertActivity appends one activity log entry.
func (d *DB) InsertActivity(a domain.Activity) error {
	_, err := d.db.Exec(
		`INSERT INTO activities (id, user_id, type, value, logged_at) VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.UserID, string(a.Type), a.Value, a.LoggedAt.Unix(),
	)
	return err
}

// ListActivities returns the user's most recent activities, newest
// first.
func (d *DB) ListActivities(userID string, limit int) ([]domain.Activity, error) {
	rows, err := d.db.Query(
		`SELECT id, user_id, type, value, logged_at
		 FROM activities WHERE user_id = ? ORDER BY logged_at DESC, rowid DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []domain.Activity
	for rows.Next() {
		var a domain.Activity
		var loggedAt int64
		if err := rows.Scan(&a.ID, &a.UserID, &a.Type, &a.Value, &loggedAt); err != nil {
			return nil, err
		}
		a.LoggedAt = time.Unix(loggedAt, 0)
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

// CountActivities returns per-type log counts for one user. Keys are
// the expression-context counter names (mealLogs, workoutLogs, ...).
func (d *DB) CountActivities(userID string) (map[string]int, error) {
	rows, err := d.db.Query(
		`SELECT type, COUNT(*) FROM activities WHERE user_id = ? GROUP BY type`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var typ domain.ActivityType
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, err
		}
		if typ.Valid() {
			counts[typ.LogCounter()] = n
		}
	}
	return counts, rows.Err()
}
