// Package ledger is the append-only ownership history. Rows are written only
// through Append, which requires the transaction that performs the ownership
// change, and read back in insertion order.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"iter"

	"github.com/bio33/TeleShare/internal/model"
	"github.com/bio33/TeleShare/internal/store"
)

// Append records t inside tx and returns it with its ID set. OccurredAt is
// raised to the item's latest entry if the clock reads earlier, so
// timestamps never run backwards along a chain.
func Append(ctx context.Context, tx *sql.Tx, t model.Transaction) (model.Transaction, error) {
	if (t.FromUserID == nil) != (t.RequestID == nil) {
		return t, fmt.Errorf("%w: transaction origin and request must both be set or both be empty", model.ErrValidation)
	}
	if t.FromUserID != nil && *t.FromUserID == t.ToUserID {
		return t, fmt.Errorf("%w: transaction cannot move an item to its current owner", model.ErrValidation)
	}

	latest, ok, err := store.LatestTransactionTime(ctx, tx, t.ItemID)
	if err != nil {
		return t, err
	}
	if ok && t.OccurredAt.Before(latest) {
		t.OccurredAt = latest
	}

	id, err := store.InsertTransaction(ctx, tx, t)
	if err != nil {
		return t, err
	}
	t.ID = id
	return t, nil
}

// History yields an item's transactions, earliest first. Every range over
// the returned sequence queries the store again, so it can be restarted.
// A store failure is yielded once as the final element.
func History(ctx context.Context, q store.DBTX, itemID int64) iter.Seq2[model.Transaction, error] {
	return func(yield func(model.Transaction, error) bool) {
		stopped := false
		err := store.EachTransaction(ctx, q, itemID, func(t model.Transaction) bool {
			if !yield(t, nil) {
				stopped = true
				return false
			}
			return true
		})
		if err != nil && !stopped {
			yield(model.Transaction{}, err)
		}
	}
}

// Collect drains a history sequence into a slice.
func Collect(seq iter.Seq2[model.Transaction, error]) ([]model.Transaction, error) {
	var out []model.Transaction
	for t, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
