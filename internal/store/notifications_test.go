package store

import (
	"context"
	"testing"
	"time"

	"github.com/bio33/TeleShare/internal/db"
)

func TestTakeNotificationsDrainsInbox(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	PutNotification(ctx, database, 1, "request_created", "first", testNow)
	PutNotification(ctx, database, 1, "request_created", "second", testNow.Add(time.Second))
	PutNotification(ctx, database, 2, "request_accepted", "other user", testNow)

	got, err := TakeNotifications(ctx, database, 1, testNow.Add(time.Minute))
	if err != nil {
		t.Fatalf("TakeNotifications: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(got))
	}
	if got[0].Text != "first" || got[1].Text != "second" {
		t.Errorf("expected oldest first, got %q, %q", got[0].Text, got[1].Text)
	}

	again, _ := TakeNotifications(ctx, database, 1, testNow.Add(time.Minute))
	if len(again) != 0 {
		t.Errorf("expected inbox to be drained, got %d", len(again))
	}

	other, _ := TakeNotifications(ctx, database, 2, testNow.Add(time.Minute))
	if len(other) != 1 {
		t.Errorf("expected 1 notification for user 2, got %d", len(other))
	}
}
