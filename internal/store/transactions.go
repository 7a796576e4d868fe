package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/bio33/TeleShare/internal/model"
)

// InsertTransaction appends a transaction row and returns its ID. Callers
// must run it in the same transaction as the ownership change it records.
func InsertTransaction(ctx context.Context, tx *sql.Tx, t model.Transaction) (int64, error) {
	result, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (item_id, from_user_id, to_user_id, request_id, occurred_at)
		 VALUES (?, ?, ?, ?, ?)`,
		t.ItemID, t.FromUserID, t.ToUserID, t.RequestID, toMillis(t.OccurredAt),
	)
	if err != nil {
		return 0, storeErr("recording transaction", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, storeErr("getting transaction id", err)
	}
	return id, nil
}

// EachTransaction streams an item's transactions in insertion order into fn
// until fn returns false.
func EachTransaction(ctx context.Context, q DBTX, itemID int64, fn func(model.Transaction) bool) error {
	rows, err := q.QueryContext(ctx,
		`SELECT t.id, t.item_id, t.from_user_id, t.to_user_id, t.request_id, t.occurred_at,
		        COALESCE(fu.display_name, ''), tu.display_name
		 FROM transactions t
		 LEFT JOIN users fu ON fu.id = t.from_user_id
		 JOIN users tu ON tu.id = t.to_user_id
		 WHERE t.item_id = ?
		 ORDER BY t.id`, itemID,
	)
	if err != nil {
		return storeErr("listing transactions", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t model.Transaction
		var from, requestID sql.NullInt64
		var occurredAt int64
		if err := rows.Scan(&t.ID, &t.ItemID, &from, &t.ToUserID, &requestID, &occurredAt,
			&t.FromUserName, &t.ToUserName); err != nil {
			return storeErr("scanning transaction", err)
		}
		t.FromUserID = nullInt64(from)
		t.RequestID = nullInt64(requestID)
		t.OccurredAt = fromMillis(occurredAt)
		if !fn(t) {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return storeErr("listing transactions", err)
	}
	return nil
}

// LatestTransactionTime returns when the item's most recent transaction
// occurred. ok is false when the item has no history.
func LatestTransactionTime(ctx context.Context, q DBTX, itemID int64) (at time.Time, ok bool, err error) {
	var v sql.NullInt64
	err = q.QueryRowContext(ctx,
		`SELECT occurred_at FROM transactions WHERE item_id = ? ORDER BY id DESC LIMIT 1`, itemID,
	).Scan(&v)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, storeErr("getting latest transaction", err)
	}
	return fromMillis(v.Int64), v.Valid, nil
}

// CountTransactions returns the number of transactions recorded for an item.
func CountTransactions(ctx context.Context, q DBTX, itemID int64) (int, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE item_id = ?`, itemID,
	).Scan(&n)
	if err != nil {
		return 0, storeErr("counting transactions", err)
	}
	return n, nil
}
