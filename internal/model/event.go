package model

// EventKind identifies a notification sent to a user's chat session.
type EventKind string

// Event kinds.
const (
	EventRequestCreated   EventKind = "request_created"
	EventRequestAccepted  EventKind = "request_accepted"
	EventRequestRejected  EventKind = "request_rejected"
	EventRequestCancelled EventKind = "request_cancelled"
)

// Event is the payload handed to a Notifier after a successful commit.
type Event struct {
	Kind      EventKind `json:"kind"`
	UserID    int64     `json:"user_id"`
	RequestID int64     `json:"request_id"`
	ItemID    int64     `json:"item_id"`
	ItemName  string    `json:"item_name"`
	// ActorName is the display name of the user whose action caused the event.
	ActorName string `json:"actor_name"`
	Message   string `json:"message,omitempty"`
}
