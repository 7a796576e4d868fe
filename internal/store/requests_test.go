package store

import (
	"context"
	"testing"
	"time"

	"github.com/bio33/TeleShare/internal/db"
	"github.com/bio33/TeleShare/internal/model"
)

func TestInsertAndGetRequest(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seedUser(t, database, 1, "Ana")
	seedUser(t, database, 2, "Bor")
	itemID := seedItem(t, database, "Drive", "", 1, testNow)

	id, err := InsertRequest(ctx, database, itemID, 2, 1, "please", testNow)
	if err != nil {
		t.Fatalf("InsertRequest: %v", err)
	}

	req, err := GetRequest(ctx, database, id)
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if req.Status != model.RequestPending {
		t.Errorf("expected pending, got %q", req.Status)
	}
	if req.ItemName != "Drive" || req.RequesterName != "Bor" || req.OwnerName != "Ana" {
		t.Errorf("unexpected joined names %+v", req)
	}
	if req.ResolvedAt != nil {
		t.Error("expected no resolved_at on pending request")
	}
	if req.Stale {
		t.Error("fresh request should not be stale")
	}

	pending, _ := HasPendingRequest(ctx, database, itemID, 2)
	if !pending {
		t.Error("expected pending request to be detected")
	}
}

func TestResolveRequestOnlyFromPending(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seedUser(t, database, 1, "Ana")
	seedUser(t, database, 2, "Bor")
	itemID := seedItem(t, database, "Drive", "", 1, testNow)
	id, _ := InsertRequest(ctx, database, itemID, 2, 1, "", testNow)

	ok, err := ResolveRequest(ctx, database, id, model.RequestRejected, testNow.Add(time.Minute))
	if err != nil || !ok {
		t.Fatalf("ResolveRequest: ok=%v err=%v", ok, err)
	}

	ok, err = ResolveRequest(ctx, database, id, model.RequestAccepted, testNow.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("ResolveRequest: %v", err)
	}
	if ok {
		t.Error("expected second resolution to be refused")
	}

	req, _ := GetRequest(ctx, database, id)
	if req.Status != model.RequestRejected {
		t.Errorf("expected rejected, got %q", req.Status)
	}
	if req.ResolvedAt == nil || !req.ResolvedAt.Equal(testNow.Add(time.Minute)) {
		t.Errorf("unexpected resolved_at %v", req.ResolvedAt)
	}
}

func TestListPendingForOwnerFollowsCurrentOwner(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seedUser(t, database, 1, "Ana")
	seedUser(t, database, 2, "Bor")
	seedUser(t, database, 3, "Cene")
	itemID := seedItem(t, database, "Drive", "", 1, testNow)

	InsertRequest(ctx, database, itemID, 2, 1, "", testNow)
	InsertRequest(ctx, database, itemID, 3, 1, "", testNow.Add(time.Minute))

	pending, err := ListPendingForOwner(ctx, database, 1)
	if err != nil {
		t.Fatalf("ListPendingForOwner: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(pending))
	}
	if pending[0].RequesterID != 3 {
		t.Errorf("expected newest first, got requester %d", pending[0].RequesterID)
	}

	// Move the item to Cene: Bor's request now shows up for Cene, flagged stale.
	SetItemOwner(ctx, database, itemID, 1, 3)

	if pending, _ := ListPendingForOwner(ctx, database, 1); len(pending) != 0 {
		t.Errorf("expected no pending for former owner, got %d", len(pending))
	}
	forCene, _ := ListPendingForOwner(ctx, database, 3)
	var bor *model.Request
	for i := range forCene {
		if forCene[i].RequesterID == 2 {
			bor = &forCene[i]
		}
	}
	if bor == nil {
		t.Fatal("expected Bor's request in Cene's queue")
	}
	if !bor.Stale {
		t.Error("expected request to be flagged stale")
	}
	if bor.OwnerName != "Cene" {
		t.Errorf("expected current owner name Cene, got %q", bor.OwnerName)
	}
}

func TestListRequestsByRequester(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seedUser(t, database, 1, "Ana")
	seedUser(t, database, 2, "Bor")
	first := seedItem(t, database, "Drive-1", "", 1, testNow)
	second := seedItem(t, database, "Drive-2", "", 1, testNow)

	InsertRequest(ctx, database, first, 2, 1, "", testNow)
	InsertRequest(ctx, database, second, 2, 1, "", testNow.Add(time.Minute))

	reqs, err := ListRequestsByRequester(ctx, database, 2)
	if err != nil {
		t.Fatalf("ListRequestsByRequester: %v", err)
	}
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(reqs))
	}
	if reqs[0].ItemName != "Drive-2" {
		t.Errorf("expected newest first, got %q", reqs[0].ItemName)
	}

	if none, _ := ListRequestsByRequester(ctx, database, 1); len(none) != 0 {
		t.Errorf("expected no requests for Ana, got %d", len(none))
	}
}
