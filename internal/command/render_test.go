package command

import (
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"

	"github.com/bio33/TeleShare/internal/model"
)

var (
	day1 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	day2 = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	day4 = time.Date(2026, 3, 4, 18, 5, 0, 0, time.UTC)
)

// dump renders a reply the way golden files store it.
func dump(r Reply) []byte {
	var b strings.Builder
	b.WriteString(r.Text + "\n")
	if len(r.Buttons) > 0 {
		b.WriteString("--- buttons\n")
		for _, row := range r.Buttons {
			cells := make([]string, 0, len(row))
			for _, btn := range row {
				cells = append(cells, "["+btn.Text+"] "+btn.Data)
			}
			b.WriteString(strings.Join(cells, " | ") + "\n")
		}
	}
	return []byte(b.String())
}

func assertGolden(t *testing.T, name string, r Reply) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, dump(r))
}

func TestRenderGolden(t *testing.T) {
	one := int64(1)
	two := int64(2)
	reqA, reqB := int64(7), int64(9)

	cases := []struct {
		name  string
		reply Reply
	}{
		{"help", renderHelp()},
		{"items_list", renderItems("📦 All items:", "No items registered yet.", []model.Item{
			{ID: 1, Name: "Drive-1", Description: "Portable SSD", OwnerID: 1, OwnerName: "Ana", CreatedAt: day1},
			{ID: 2, Name: "Ladder", OwnerID: 2, OwnerName: "Bor", CreatedAt: day2},
		}, 1)},
		{"items_empty", renderItems("📦 All items:", "No items registered yet.", nil, 1)},
		{"my_requests", renderMyRequests([]model.Request{
			{ID: 4, ItemName: "Ladder", OwnerName: "Bor", Status: model.RequestPending, CreatedAt: day2},
			{ID: 3, ItemName: "Tent", OwnerName: "Cene", Status: model.RequestRejected, CreatedAt: day1},
		})},
		{"pending_requests", renderPending([]model.Request{
			{ID: 7, ItemName: "Drive-1", RequesterName: "Bor", Message: "for the trip", Status: model.RequestPending, CreatedAt: day2},
			{ID: 5, ItemName: "Drive-1", RequesterName: "Cene", Status: model.RequestPending, Stale: true, CreatedAt: day1},
		})},
		{"history", renderHistory(
			&model.Item{ID: 1, Name: "Drive-1", OwnerID: 3, OwnerName: "Cene"},
			[]model.Transaction{
				{ID: 1, ItemID: 1, ToUserID: 1, ToUserName: "Ana", OccurredAt: day1},
				{ID: 2, ItemID: 1, FromUserID: &one, FromUserName: "Ana", ToUserID: 2, ToUserName: "Bor", RequestID: &reqA, OccurredAt: day2},
				{ID: 3, ItemID: 1, FromUserID: &two, FromUserName: "Bor", ToUserID: 3, ToUserName: "Cene", RequestID: &reqB, OccurredAt: day4},
			})},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assertGolden(t, tc.name, tc.reply)
		})
	}
}

func TestUpperFirst(t *testing.T) {
	tests := map[string]string{
		"":        "",
		"pending": "Pending",
		"émile":   "Émile",
		`"x" now`: `"x" now`,
	}
	for in, want := range tests {
		if got := upperFirst(in); got != want {
			t.Errorf("upperFirst(%q) = %q, want %q", in, got, want)
		}
	}
}
