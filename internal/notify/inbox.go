package notify

import (
	"context"
	"database/sql"
	"time"

	"github.com/bio33/TeleShare/internal/model"
	"github.com/bio33/TeleShare/internal/store"
)

// InboxSender stores notifications for the chat bridge to collect.
type InboxSender struct {
	DB  *sql.DB
	Now func() time.Time
}

func (s InboxSender) Send(ctx context.Context, userID int64, kind model.EventKind, text string) error {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return store.PutNotification(ctx, s.DB, userID, string(kind), text, now())
}

// Fanout sends to every sender and returns the first error.
type Fanout []Sender

func (f Fanout) Send(ctx context.Context, userID int64, kind model.EventKind, text string) error {
	var first error
	for _, s := range f {
		if err := s.Send(ctx, userID, kind, text); err != nil && first == nil {
			first = err
		}
	}
	return first
}
