package store

import (
	"context"
	"testing"
	"time"

	"github.com/bio33/TeleShare/internal/db"
)

func TestInsertAndGetItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seedUser(t, database, 1, "Ana")

	id := seedItem(t, database, "Drive-1", "64 GB", 1, testNow)

	item, err := GetItem(ctx, database, id)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if item.Name != "Drive-1" || item.Description != "64 GB" {
		t.Errorf("unexpected item %+v", item)
	}
	if item.OwnerID != 1 || item.OwnerName != "Ana" {
		t.Errorf("expected owner Ana (1), got %q (%d)", item.OwnerName, item.OwnerID)
	}
	if !item.CreatedAt.Equal(testNow) {
		t.Errorf("expected created_at %v, got %v", testNow, item.CreatedAt)
	}
	if item.HasPhoto {
		t.Error("expected no photo")
	}
}

func TestGetItemMissing(t *testing.T) {
	database := db.NewTestDB(t)

	item, err := GetItem(context.Background(), database, 99)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if item != nil {
		t.Error("expected nil for missing item")
	}
}

func TestItemNameKeyUnique(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seedUser(t, database, 1, "Ana")
	seedItem(t, database, "Drive", "", 1, testNow)

	taken, err := ItemNameTaken(ctx, database, "drive")
	if err != nil {
		t.Fatalf("ItemNameTaken: %v", err)
	}
	if !taken {
		t.Error("expected name to be taken")
	}

	_, err = InsertItem(ctx, database, NewItem{Name: "DRIVE", NameKey: "drive", SearchKey: "drive", OwnerID: 1, CreatedAt: testNow})
	if err == nil {
		t.Fatal("expected unique violation")
	}
	if !IsUniqueViolation(err) {
		t.Errorf("expected IsUniqueViolation, got %v", err)
	}
}

func TestListItemsOrderAndFilters(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seedUser(t, database, 1, "Ana")
	seedUser(t, database, 2, "Bor")

	seedItem(t, database, "Camera", "Mirrorless body", 2, testNow.Add(2*time.Minute))
	seedItem(t, database, "Drive-1", "USB stick", 1, testNow)
	seedItem(t, database, "Drive-2", "", 2, testNow.Add(time.Minute))

	all, err := ListItems(ctx, database, ItemFilter{})
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 items, got %d", len(all))
	}
	want := []string{"Drive-1", "Drive-2", "Camera"}
	for i, name := range want {
		if all[i].Name != name {
			t.Errorf("position %d: expected %q, got %q", i, name, all[i].Name)
		}
	}

	owned, _ := ListItems(ctx, database, ItemFilter{OwnerID: 2})
	if len(owned) != 2 {
		t.Errorf("expected 2 items for Bor, got %d", len(owned))
	}

	byDescription, _ := ListItems(ctx, database, ItemFilter{SearchKey: "usb"})
	if len(byDescription) != 1 || byDescription[0].Name != "Drive-1" {
		t.Errorf("expected Drive-1 for 'usb', got %v", byDescription)
	}

	byName, _ := ListItems(ctx, database, ItemFilter{SearchKey: "drive"})
	if len(byName) != 2 {
		t.Errorf("expected 2 items for 'drive', got %d", len(byName))
	}
}

func TestSetItemOwnerCompareAndSet(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seedUser(t, database, 1, "Ana")
	seedUser(t, database, 2, "Bor")
	seedUser(t, database, 3, "Cene")
	id := seedItem(t, database, "Drive", "", 1, testNow)

	ok, err := SetItemOwner(ctx, database, id, 1, 2)
	if err != nil || !ok {
		t.Fatalf("SetItemOwner: ok=%v err=%v", ok, err)
	}

	// Ana no longer owns it, so a second move from Ana must not apply.
	ok, err = SetItemOwner(ctx, database, id, 1, 3)
	if err != nil {
		t.Fatalf("SetItemOwner: %v", err)
	}
	if ok {
		t.Error("expected stale owner update to be refused")
	}

	item, _ := GetItem(ctx, database, id)
	if item.OwnerID != 2 {
		t.Errorf("expected owner 2, got %d", item.OwnerID)
	}
}

func TestItemPhoto(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seedUser(t, database, 1, "Ana")
	id := seedItem(t, database, "Photo Item", "", 1, testNow)

	SetItemPhoto(ctx, database, id, []byte("fake image data"), "image/jpeg")

	data, mime, err := GetItemPhoto(ctx, database, id)
	if err != nil {
		t.Fatalf("GetItemPhoto: %v", err)
	}
	if string(data) != "fake image data" {
		t.Errorf("expected photo data, got %q", string(data))
	}
	if mime != "image/jpeg" {
		t.Errorf("expected 'image/jpeg', got %q", mime)
	}

	item, _ := GetItem(ctx, database, id)
	if !item.HasPhoto {
		t.Error("expected HasPhoto after upload")
	}
}
