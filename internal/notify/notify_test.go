package notify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bio33/TeleShare/internal/db"
	"github.com/bio33/TeleShare/internal/metrics"
	"github.com/bio33/TeleShare/internal/model"
	"github.com/bio33/TeleShare/internal/store"
)

type delivery struct {
	userID int64
	kind   model.EventKind
	text   string
}

type recordingSender struct {
	mu   sync.Mutex
	got  []delivery
	fail bool
}

func (s *recordingSender) Send(_ context.Context, userID int64, kind model.EventKind, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("no chat session")
	}
	s.got = append(s.got, delivery{userID, kind, text})
	return nil
}

func (s *recordingSender) deliveries() []delivery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]delivery(nil), s.got...)
}

func TestRender(t *testing.T) {
	tests := []struct {
		ev   model.Event
		want []string
	}{
		{model.Event{Kind: model.EventRequestCreated, ActorName: "Bor", ItemName: "Drive-1", Message: "for the trip"},
			[]string{"Bor would like your Drive-1", "Message: for the trip", "/pending_requests"}},
		{model.Event{Kind: model.EventRequestCreated, ActorName: "Bor", ItemName: "Drive-1"},
			[]string{"Bor would like your Drive-1"}},
		{model.Event{Kind: model.EventRequestAccepted, ActorName: "Ana", ItemName: "Drive-1"},
			[]string{"Ana accepted", "Drive-1 is now yours"}},
		{model.Event{Kind: model.EventRequestRejected, ActorName: "Ana", ItemName: "Drive-1"},
			[]string{"Ana declined your request for Drive-1"}},
		{model.Event{Kind: model.EventRequestCancelled, ActorName: "Bor", ItemName: "Drive-1"},
			[]string{"Bor withdrew their request for Drive-1"}},
	}

	for _, tt := range tests {
		got := Render(tt.ev)
		for _, w := range tt.want {
			assert.Contains(t, got, w, "kind %s", tt.ev.Kind)
		}
	}
	assert.NotContains(t, Render(model.Event{Kind: model.EventRequestCreated, ItemName: "x"}), "Message:")
}

func TestDispatcherDeliversAsynchronously(t *testing.T) {
	sender := &recordingSender{}
	d, err := NewDispatcher(sender, slog.New(slog.DiscardHandler), metrics.New(), 16)
	require.NoError(t, err)
	defer d.Close()

	ctx := context.Background()
	d.Notify(ctx, model.Event{Kind: model.EventRequestCreated, UserID: 1, ItemName: "Drive-1", ActorName: "Bor"})
	d.Notify(ctx, model.Event{Kind: model.EventRequestAccepted, UserID: 2, ItemName: "Drive-1", ActorName: "Ana"})

	require.Eventually(t, func() bool { return len(sender.deliveries()) == 2 }, 2*time.Second, 5*time.Millisecond)

	byUser := map[int64]delivery{}
	for _, dl := range sender.deliveries() {
		byUser[dl.userID] = dl
	}
	assert.Equal(t, model.EventRequestCreated, byUser[1].kind)
	assert.Equal(t, model.EventRequestAccepted, byUser[2].kind)
	assert.Contains(t, byUser[2].text, "Drive-1 is now yours")
}

// gatedSender blocks every Send until release is closed.
type gatedSender struct {
	recordingSender
	release chan struct{}
}

func (s *gatedSender) Send(ctx context.Context, userID int64, kind model.EventKind, text string) error {
	<-s.release
	return s.recordingSender.Send(ctx, userID, kind, text)
}

func TestNotifyDoesNotBlockOnSlowSender(t *testing.T) {
	sender := &gatedSender{release: make(chan struct{})}
	d, err := NewDispatcher(sender, slog.New(slog.DiscardHandler), nil, 1)
	require.NoError(t, err)
	defer d.Close()

	// More events than the channel buffer holds, while the sender is stuck.
	const n = 10
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := range n {
			d.Notify(context.Background(), model.Event{Kind: model.EventRequestCreated, UserID: int64(i + 1), ItemName: "Drive-1"})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Notify blocked behind a slow sender")
	}

	close(sender.release)
	require.Eventually(t, func() bool { return len(sender.deliveries()) == n }, 2*time.Second, 5*time.Millisecond)
}

func TestDispatcherLogsFailures(t *testing.T) {
	var buf bytes.Buffer
	var mu sync.Mutex
	logger := slog.New(slog.NewTextHandler(&lockedWriter{w: &buf, mu: &mu}, nil))

	d, err := NewDispatcher(&recordingSender{fail: true}, logger, nil, 4)
	require.NoError(t, err)

	d.Notify(context.Background(), model.Event{Kind: model.EventRequestRejected, UserID: 7, ItemName: "Tent"})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return bytes.Contains(buf.Bytes(), []byte("could not notify user"))
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, d.Close())
	// Publishing after Close drops the event without panicking.
	d.Notify(context.Background(), model.Event{Kind: model.EventRequestRejected, UserID: 7})
}

func TestInboxSender(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	_, err := store.UpsertUser(ctx, database, 5, "", "Eva", now)
	require.NoError(t, err)

	sender := Fanout{InboxSender{DB: database, Now: func() time.Time { return now }}, LogSender{Logger: slog.New(slog.DiscardHandler)}}
	require.NoError(t, sender.Send(ctx, 5, model.EventRequestAccepted, "hello"))

	got, err := store.TakeNotifications(ctx, database, 5, now)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "hello", got[0].Text)
	assert.Equal(t, string(model.EventRequestAccepted), got[0].Kind)
}

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
