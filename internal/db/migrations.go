package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: transactions are append-only.
	`CREATE TRIGGER IF NOT EXISTS trg_transactions_no_update
	     BEFORE UPDATE ON transactions
	 BEGIN
	     SELECT RAISE(ABORT, 'transactions are append-only');
	 END`,
	`CREATE TRIGGER IF NOT EXISTS trg_transactions_no_delete
	     BEFORE DELETE ON transactions
	 BEGIN
	     SELECT RAISE(ABORT, 'transactions are append-only');
	 END`,
	// Migration 2: resolved requests are retained for audit.
	`CREATE TRIGGER IF NOT EXISTS trg_requests_no_delete
	     BEFORE DELETE ON requests
	 BEGIN
	     SELECT RAISE(ABORT, 'requests are retained for audit');
	 END`,
}

// Migrate ensures the schema and applies all migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
