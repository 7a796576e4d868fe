package store

import (
	"context"
	"database/sql"
	"time"
)

// Notification is a message waiting in a user's inbox.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Kind      string    `json:"kind"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// PutNotification appends a message to a user's inbox.
func PutNotification(ctx context.Context, q DBTX, userID int64, kind, text string, now time.Time) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO notifications (user_id, kind, text, created_at) VALUES (?, ?, ?, ?)`,
		userID, kind, text, toMillis(now),
	)
	if err != nil {
		return storeErr("storing notification", err)
	}
	return nil
}

// TakeNotifications returns a user's undelivered messages, oldest first, and
// marks them delivered in the same transaction.
func TakeNotifications(ctx context.Context, db *sql.DB, userID int64, now time.Time) ([]Notification, error) {
	var out []Notification
	err := RunAtomic(ctx, db, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT id, user_id, kind, text, created_at FROM notifications
			 WHERE user_id = ? AND delivered_at IS NULL
			 ORDER BY id`, userID,
		)
		if err != nil {
			return storeErr("listing notifications", err)
		}
		defer rows.Close()

		for rows.Next() {
			var n Notification
			var createdAt int64
			if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Text, &createdAt); err != nil {
				return storeErr("scanning notification", err)
			}
			n.CreatedAt = fromMillis(createdAt)
			out = append(out, n)
		}
		if err := rows.Err(); err != nil {
			return storeErr("listing notifications", err)
		}
		rows.Close()

		if len(out) == 0 {
			return nil
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE notifications SET delivered_at = ?
			 WHERE user_id = ? AND delivered_at IS NULL AND id <= ?`,
			toMillis(now), userID, out[len(out)-1].ID,
		)
		if err != nil {
			return storeErr("marking notifications delivered", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
