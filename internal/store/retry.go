package store

import (
	"context"
	"database/sql"
	"time"
)

// Retrier reruns atomic scopes that failed on lock contention, with
// exponential backoff. The zero value makes a single attempt.
type Retrier struct {
	Attempts  int
	BaseDelay time.Duration
	// OnRetry, if set, is called before each retry.
	OnRetry func(attempt int, err error)
}

// RunAtomic runs fn in a transaction, retrying transient failures. Each
// attempt starts from a fresh snapshot; fn must not keep state between attempts.
func (r Retrier) RunAtomic(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	attempts := max(r.Attempts, 1)
	delay := r.BaseDelay
	if delay <= 0 {
		delay = 10 * time.Millisecond
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = RunAtomic(ctx, db, fn); err == nil || !IsTransient(err) {
			return err
		}
		if attempt == attempts {
			break
		}
		if r.OnRetry != nil {
			r.OnRetry(attempt, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}
