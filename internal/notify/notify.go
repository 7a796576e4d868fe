// Package notify delivers lifecycle events to users' chat sessions.
//
// Delivery is best effort. Notify never blocks on delivery and never
// returns an error; failures are logged here and nowhere else.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bio33/TeleShare/internal/model"
)

// Notifier is the capability the transfer engine calls after a commit.
type Notifier interface {
	Notify(ctx context.Context, ev model.Event)
}

// Sender delivers one rendered message to a user.
type Sender interface {
	Send(ctx context.Context, userID int64, kind model.EventKind, text string) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Notify(context.Context, model.Event) {}

// LogSender writes notifications to a logger. It stands in for a chat
// transport when none is attached.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(ctx context.Context, userID int64, kind model.EventKind, text string) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "notification", "user_id", userID, "kind", kind, "text", text)
	return nil
}

// Render returns the chat text for ev.
func Render(ev model.Event) string {
	switch ev.Kind {
	case model.EventRequestCreated:
		text := fmt.Sprintf("🔔 New request!\n\n%s would like your %s.", ev.ActorName, ev.ItemName)
		if ev.Message != "" {
			text += fmt.Sprintf("\nMessage: %s", ev.Message)
		}
		return text + "\nUse /pending_requests to respond."
	case model.EventRequestAccepted:
		return fmt.Sprintf("✅ %s accepted your request. %s is now yours.", ev.ActorName, ev.ItemName)
	case model.EventRequestRejected:
		return fmt.Sprintf("❌ %s declined your request for %s.", ev.ActorName, ev.ItemName)
	case model.EventRequestCancelled:
		return fmt.Sprintf("↩️ %s withdrew their request for %s.", ev.ActorName, ev.ItemName)
	default:
		return fmt.Sprintf("Update on %s.", ev.ItemName)
	}
}
