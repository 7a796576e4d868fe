package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/bio33/TeleShare/internal/model"
)

// UpsertUser creates the user on first contact or refreshes the username and
// display name. Calling it repeatedly with the same id yields one row.
func UpsertUser(ctx context.Context, q DBTX, id int64, username, displayName string, now time.Time) (*model.User, error) {
	_, err := q.ExecContext(ctx,
		`INSERT INTO users (id, username, display_name, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		     username = excluded.username,
		     display_name = excluded.display_name,
		     updated_at = excluded.updated_at`,
		id, username, displayName, toMillis(now), toMillis(now),
	)
	if err != nil {
		return nil, storeErr("upserting user", err)
	}

	return GetUser(ctx, q, id)
}

// GetUser returns a user by ID.
func GetUser(ctx context.Context, q DBTX, id int64) (*model.User, error) {
	u := &model.User{}
	var createdAt, updatedAt int64
	err := q.QueryRowContext(ctx,
		`SELECT id, username, display_name, created_at, updated_at
		 FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Username, &u.DisplayName, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("getting user", err)
	}
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updatedAt)
	return u, nil
}

// CountUsers returns the number of registered users.
func CountUsers(ctx context.Context, q DBTX) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, storeErr("counting users", err)
	}
	return n, nil
}
