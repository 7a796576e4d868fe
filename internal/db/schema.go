package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema. Timestamps are unix milliseconds (UTC).
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id           INTEGER PRIMARY KEY,
    username     TEXT NOT NULL DEFAULT '',
    display_name TEXT NOT NULL,
    created_at   INTEGER NOT NULL,
    updated_at   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS items (
    id          INTEGER PRIMARY KEY,
    name        TEXT NOT NULL,
    name_key    TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    search_key  TEXT NOT NULL,
    owner_id    INTEGER NOT NULL REFERENCES users(id),
    photo       BLOB,
    photo_mime  TEXT,
    created_at  INTEGER NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_items_name_key ON items(name_key);
CREATE INDEX IF NOT EXISTS idx_items_owner ON items(owner_id);

CREATE TABLE IF NOT EXISTS requests (
    id                   INTEGER PRIMARY KEY,
    item_id              INTEGER NOT NULL REFERENCES items(id),
    requester_id         INTEGER NOT NULL REFERENCES users(id),
    owner_id_at_creation INTEGER NOT NULL REFERENCES users(id),
    message              TEXT NOT NULL DEFAULT '',
    status               TEXT NOT NULL DEFAULT 'pending'
                         CHECK (status IN ('pending', 'accepted', 'rejected', 'cancelled')),
    created_at           INTEGER NOT NULL,
    resolved_at          INTEGER
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_requests_pending_unique
    ON requests(item_id, requester_id) WHERE status = 'pending';
CREATE INDEX IF NOT EXISTS idx_requests_status_item ON requests(status, item_id);
CREATE INDEX IF NOT EXISTS idx_requests_requester ON requests(requester_id, created_at);

CREATE TABLE IF NOT EXISTS transactions (
    id           INTEGER PRIMARY KEY,
    item_id      INTEGER NOT NULL REFERENCES items(id),
    from_user_id INTEGER REFERENCES users(id),
    to_user_id   INTEGER NOT NULL REFERENCES users(id),
    request_id   INTEGER UNIQUE REFERENCES requests(id),
    occurred_at  INTEGER NOT NULL,
    CHECK ((from_user_id IS NULL) = (request_id IS NULL))
);

CREATE INDEX IF NOT EXISTS idx_transactions_item ON transactions(item_id, occurred_at, id);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS notifications (
    id           INTEGER PRIMARY KEY,
    user_id      INTEGER NOT NULL,
    kind         TEXT NOT NULL,
    text         TEXT NOT NULL,
    created_at   INTEGER NOT NULL,
    delivered_at INTEGER
);

CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, delivered_at, id);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
