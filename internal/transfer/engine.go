// Package transfer implements the request lifecycle and the atomic
// ownership transfer.
//
//	(none)  --create-->  pending
//	pending --accept-->  accepted   (moves the item, appends to the ledger)
//	pending --reject-->  rejected
//	pending --cancel-->  cancelled
//
// Every read that feeds a write happens inside the same atomic scope as the
// write. Notifications go out only after the scope commits.
package transfer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bio33/TeleShare/internal/ledger"
	"github.com/bio33/TeleShare/internal/metrics"
	"github.com/bio33/TeleShare/internal/model"
	"github.com/bio33/TeleShare/internal/notify"
	"github.com/bio33/TeleShare/internal/store"
	"github.com/bio33/TeleShare/internal/validate"
)

// Engine runs request lifecycle operations against the store.
type Engine struct {
	db       *sql.DB
	notifier notify.Notifier
	retry    store.Retrier
	metrics  *metrics.Metrics
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithNotifier sets the notification capability. The default discards events.
func WithNotifier(n notify.Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithRetrier sets the policy for retrying transient store failures.
func WithRetrier(r store.Retrier) Option {
	return func(e *Engine) { e.retry = r }
}

// WithMetrics records lifecycle outcomes and store retries.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New returns an Engine backed by db.
func New(db *sql.DB, opts ...Option) *Engine {
	e := &Engine{db: db, notifier: notify.Nop{}, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	if e.retry.OnRetry == nil {
		e.retry.OnRetry = func(int, error) { e.metrics.StoreRetry() }
	}
	return e
}

type createInput struct {
	Message string `json:"message" validate:"max=500"`
}

// CreateRequest records requesterID's intent to receive itemID from its
// current owner and notifies that owner.
func (e *Engine) CreateRequest(ctx context.Context, requesterID, itemID int64, message string) (*model.Request, error) {
	in := createInput{Message: strings.TrimSpace(message)}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	var req *model.Request
	err := e.retry.RunAtomic(ctx, e.db, func(tx *sql.Tx) error {
		now := e.now()
		requester, err := store.GetUser(ctx, tx, requesterID)
		if err != nil {
			return err
		}
		if requester == nil {
			return fmt.Errorf("%w: user %d is not registered", model.ErrValidation, requesterID)
		}

		item, err := store.GetItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("%w: item %d", model.ErrNotFound, itemID)
		}
		if item.OwnerID == requesterID {
			return fmt.Errorf("%w: you already have %q", model.ErrSelfRequest, item.Name)
		}

		pending, err := store.HasPendingRequest(ctx, tx, itemID, requesterID)
		if err != nil {
			return err
		}
		if pending {
			return fmt.Errorf("%w: you already requested %q", model.ErrDuplicateRequest, item.Name)
		}

		id, err := store.InsertRequest(ctx, tx, itemID, requesterID, item.OwnerID, in.Message, now)
		if err != nil {
			if store.IsUniqueViolation(err) {
				return fmt.Errorf("%w: you already requested %q", model.ErrDuplicateRequest, item.Name)
			}
			return err
		}

		req, err = store.GetRequest(ctx, tx, id)
		return err
	})
	if err != nil {
		e.metrics.Transition(outcome(err))
		return nil, err
	}

	e.metrics.Transition("created")
	e.notifier.Notify(ctx, model.Event{
		Kind:      model.EventRequestCreated,
		UserID:    req.OwnerIDAtCreation,
		RequestID: req.ID,
		ItemID:    req.ItemID,
		ItemName:  req.ItemName,
		ActorName: req.RequesterName,
		Message:   req.Message,
	})
	return req, nil
}

// Resolve accepts or rejects a pending request on behalf of the item's
// current owner.
//
// A resolver who owned the item when the request was made but no longer
// does gets ErrStaleRequest; anyone else who is not the current owner gets
// ErrAuthorization. Accepting also requires that the item has not changed
// hands since the request was created. A stale request stays pending and
// can still be rejected by the current owner.
func (e *Engine) Resolve(ctx context.Context, resolverID, requestID int64, decision model.Decision) (*model.Request, error) {
	var status model.RequestStatus
	var kind model.EventKind
	switch decision {
	case model.DecisionAccept:
		status, kind = model.RequestAccepted, model.EventRequestAccepted
	case model.DecisionReject:
		status, kind = model.RequestRejected, model.EventRequestRejected
	default:
		return nil, fmt.Errorf("%w: unknown decision %q", model.ErrValidation, decision)
	}

	var req *model.Request
	var resolverName string
	err := e.retry.RunAtomic(ctx, e.db, func(tx *sql.Tx) error {
		// Read the clock under the write lock, fresh on every attempt.
		now := e.now()
		current, err := store.GetRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("%w: request %d", model.ErrNotFound, requestID)
		}
		if current.Status != model.RequestPending {
			return fmt.Errorf("%w: request is already %s", model.ErrInvalidState, current.Status)
		}

		// Ownership is re-read here, never taken from the request.
		item, err := store.GetItem(ctx, tx, current.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("%w: item %d", model.ErrNotFound, current.ItemID)
		}
		if item.OwnerID != resolverID {
			if resolverID == current.OwnerIDAtCreation {
				return fmt.Errorf("%w: %q is now with %s", model.ErrStaleRequest, item.Name, item.OwnerName)
			}
			return fmt.Errorf("%w: only the current owner of %q can respond", model.ErrAuthorization, item.Name)
		}
		resolverName = item.OwnerName

		if decision == model.DecisionAccept {
			if item.OwnerID != current.OwnerIDAtCreation {
				return fmt.Errorf("%w: %q changed hands after this request was made", model.ErrStaleRequest, item.Name)
			}
			moved, err := store.SetItemOwner(ctx, tx, item.ID, resolverID, current.RequesterID)
			if err != nil {
				return err
			}
			if !moved {
				return fmt.Errorf("%w: %q changed hands", model.ErrStaleRequest, item.Name)
			}
		}

		ok, err := store.ResolveRequest(ctx, tx, requestID, status, now)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: request is no longer pending", model.ErrInvalidState)
		}

		if decision == model.DecisionAccept {
			from, reqID := resolverID, requestID
			if _, err := ledger.Append(ctx, tx, model.Transaction{
				ItemID:     item.ID,
				FromUserID: &from,
				ToUserID:   current.RequesterID,
				RequestID:  &reqID,
				OccurredAt: now,
			}); err != nil {
				return err
			}
		}

		req, err = store.GetRequest(ctx, tx, requestID)
		return err
	})
	if err != nil {
		e.metrics.Transition(outcome(err))
		return nil, err
	}

	e.metrics.Transition(string(req.Status))
	e.notifier.Notify(ctx, model.Event{
		Kind:      kind,
		UserID:    req.RequesterID,
		RequestID: req.ID,
		ItemID:    req.ItemID,
		ItemName:  req.ItemName,
		ActorName: resolverName,
	})
	return req, nil
}

// Cancel withdraws a pending request. Only its requester may do this. The
// item's current owner is notified.
func (e *Engine) Cancel(ctx context.Context, requesterID, requestID int64) (*model.Request, error) {
	var req *model.Request
	var ownerID int64
	err := e.retry.RunAtomic(ctx, e.db, func(tx *sql.Tx) error {
		now := e.now()
		current, err := store.GetRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("%w: request %d", model.ErrNotFound, requestID)
		}
		if current.RequesterID != requesterID {
			return fmt.Errorf("%w: only the requester can withdraw a request", model.ErrAuthorization)
		}
		if current.Status != model.RequestPending {
			return fmt.Errorf("%w: request is already %s", model.ErrInvalidState, current.Status)
		}

		ok, err := store.ResolveRequest(ctx, tx, requestID, model.RequestCancelled, now)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: request is no longer pending", model.ErrInvalidState)
		}

		item, err := store.GetItem(ctx, tx, current.ItemID)
		if err != nil {
			return err
		}
		if item != nil {
			ownerID = item.OwnerID
		}

		req, err = store.GetRequest(ctx, tx, requestID)
		return err
	})
	if err != nil {
		e.metrics.Transition(outcome(err))
		return nil, err
	}

	e.metrics.Transition(string(req.Status))
	if ownerID != 0 {
		e.notifier.Notify(ctx, model.Event{
			Kind:      model.EventRequestCancelled,
			UserID:    ownerID,
			RequestID: req.ID,
			ItemID:    req.ItemID,
			ItemName:  req.ItemName,
			ActorName: req.RequesterName,
		})
	}
	return req, nil
}

// ListPendingForOwner returns the pending requests on items ownerID
// currently owns, newest first. Stale entries are flagged.
func (e *Engine) ListPendingForOwner(ctx context.Context, ownerID int64) ([]model.Request, error) {
	return store.ListPendingForOwner(ctx, e.db, ownerID)
}

// ListByRequester returns every request requesterID has made, newest first.
func (e *Engine) ListByRequester(ctx context.Context, requesterID int64) ([]model.Request, error) {
	return store.ListRequestsByRequester(ctx, e.db, requesterID)
}

func outcome(err error) string {
	switch {
	case errors.Is(err, model.ErrValidation):
		return "invalid"
	case errors.Is(err, model.ErrNotFound):
		return "not_found"
	case errors.Is(err, model.ErrAuthorization):
		return "unauthorized"
	case errors.Is(err, model.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, model.ErrDuplicateRequest):
		return "duplicate"
	case errors.Is(err, model.ErrSelfRequest):
		return "self"
	case errors.Is(err, model.ErrStaleRequest):
		return "stale"
	default:
		return "error"
	}
}
