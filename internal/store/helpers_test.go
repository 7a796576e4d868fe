package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func seedUser(t *testing.T, q DBTX, id int64, name string) {
	t.Helper()
	if _, err := UpsertUser(context.Background(), q, id, strings.ToLower(name), name, testNow); err != nil {
		t.Fatalf("UpsertUser(%d): %v", id, err)
	}
}

func seedItem(t *testing.T, q DBTX, name, description string, ownerID int64, createdAt time.Time) int64 {
	t.Helper()
	key := strings.ToLower(name)
	id, err := InsertItem(context.Background(), q, NewItem{
		Name:        name,
		NameKey:     key,
		Description: description,
		SearchKey:   key + "\n" + strings.ToLower(description),
		OwnerID:     ownerID,
		CreatedAt:   createdAt,
	})
	if err != nil {
		t.Fatalf("InsertItem(%q): %v", name, err)
	}
	return id
}

func countRows(t *testing.T, database *sql.DB, table string) int {
	t.Helper()
	var n int
	if err := database.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
		t.Fatalf("counting %s: %v", table, err)
	}
	return n
}
