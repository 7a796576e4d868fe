package model

import "time"

// Transaction records one ownership change. FromUserID and RequestID are nil
// only for the registration row that starts an item's chain.
type Transaction struct {
	ID         int64     `json:"id" yaml:"id"`
	ItemID     int64     `json:"item_id" yaml:"item_id"`
	FromUserID *int64    `json:"from_user_id,omitempty" yaml:"from_user_id,omitempty"`
	ToUserID   int64     `json:"to_user_id" yaml:"to_user_id"`
	RequestID  *int64    `json:"request_id,omitempty" yaml:"request_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at" yaml:"occurred_at"`

	// Joined fields (not always populated).
	FromUserName string `json:"from_user_name,omitempty" yaml:"from,omitempty"`
	ToUserName   string `json:"to_user_name,omitempty" yaml:"to,omitempty"`
}

// IsRegistration reports whether t is the null-origin row of an item.
func (t Transaction) IsRegistration() bool {
	return t.FromUserID == nil
}
