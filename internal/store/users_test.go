package store

import (
	"context"
	"testing"
	"time"

	"github.com/bio33/TeleShare/internal/db"
)

func TestUpsertUserIsIdempotent(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	first, err := UpsertUser(ctx, database, 42, "ana", "Ana", now)
	if err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}
	second, err := UpsertUser(ctx, database, 42, "ana_n", "Ana N.", now.Add(time.Hour))
	if err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}

	n, _ := CountUsers(ctx, database)
	if n != 1 {
		t.Errorf("expected 1 user row, got %d", n)
	}
	if second.DisplayName != "Ana N." || second.Username != "ana_n" {
		t.Errorf("expected refreshed names, got %+v", second)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("created_at changed: %v -> %v", first.CreatedAt, second.CreatedAt)
	}
	if !second.UpdatedAt.Equal(now.Add(time.Hour)) {
		t.Errorf("expected updated_at %v, got %v", now.Add(time.Hour), second.UpdatedAt)
	}
}

func TestGetUserMissing(t *testing.T) {
	database := db.NewTestDB(t)

	u, err := GetUser(context.Background(), database, 7)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if u != nil {
		t.Error("expected nil for missing user")
	}
}
