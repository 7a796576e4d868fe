package model

import (
	"fmt"
	"strings"
	"time"
)

// RequestStatus is the lifecycle state of a Request.
type RequestStatus string

// Request statuses. Only pending requests may change status.
const (
	RequestPending   RequestStatus = "pending"
	RequestAccepted  RequestStatus = "accepted"
	RequestRejected  RequestStatus = "rejected"
	RequestCancelled RequestStatus = "cancelled"
)

// Terminal reports whether no further transition is defined out of s.
func (s RequestStatus) Terminal() bool {
	return s != RequestPending
}

// Decision is the owner's answer to a pending request.
type Decision string

// Decisions.
const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// ParseDecision parses "accept" or "reject", ignoring case and surrounding space.
func ParseDecision(s string) (Decision, error) {
	switch d := Decision(strings.ToLower(strings.TrimSpace(s))); d {
	case DecisionAccept, DecisionReject:
		return d, nil
	default:
		return "", fmt.Errorf("%w: unknown decision %q", ErrValidation, s)
	}
}

// Request is a user's ask to receive an item from its owner.
type Request struct {
	ID                int64         `json:"id"`
	ItemID            int64         `json:"item_id"`
	RequesterID       int64         `json:"requester_id"`
	OwnerIDAtCreation int64         `json:"owner_id_at_creation"`
	Message           string        `json:"message,omitempty"`
	Status            RequestStatus `json:"status"`
	CreatedAt         time.Time     `json:"created_at"`
	ResolvedAt        *time.Time    `json:"resolved_at,omitempty"`

	// Joined fields (not always populated).
	ItemName      string `json:"item_name,omitempty"`
	RequesterName string `json:"requester_name,omitempty"`
	OwnerName     string `json:"owner_name,omitempty"`
	// Stale is set on pending requests whose item changed hands after creation.
	Stale bool `json:"stale,omitempty"`
}
