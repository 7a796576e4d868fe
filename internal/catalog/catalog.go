// Package catalog registers items and serves item listings and search.
// It never changes ownership after registration.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/bio33/TeleShare/internal/imaging"
	"github.com/bio33/TeleShare/internal/ledger"
	"github.com/bio33/TeleShare/internal/model"
	"github.com/bio33/TeleShare/internal/store"
	"github.com/bio33/TeleShare/internal/validate"
)

// Service orchestrates item registration and reads.
type Service struct {
	db    *sql.DB
	retry store.Retrier
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithRetrier sets the policy for retrying transient store failures.
func WithRetrier(r store.Retrier) Option {
	return func(s *Service) { s.retry = r }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New returns a Service backed by db.
func New(db *sql.DB, opts ...Option) *Service {
	s := &Service{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type registerInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

// Register creates an item owned by requesterID and records its registration
// in the ledger within the same atomic scope.
func (s *Service) Register(ctx context.Context, requesterID int64, name, description string) (*model.Item, error) {
	in := registerInput{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	nameKey := FoldKey(in.Name)

	var item *model.Item
	err := s.retry.RunAtomic(ctx, s.db, func(tx *sql.Tx) error {
		now := s.now()
		owner, err := store.GetUser(ctx, tx, requesterID)
		if err != nil {
			return err
		}
		if owner == nil {
			return fmt.Errorf("%w: user %d is not registered", model.ErrValidation, requesterID)
		}

		taken, err := store.ItemNameTaken(ctx, tx, nameKey)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: an item named %q is already registered", model.ErrValidation, in.Name)
		}

		id, err := store.InsertItem(ctx, tx, store.NewItem{
			Name:        in.Name,
			NameKey:     nameKey,
			Description: in.Description,
			SearchKey:   searchKey(in.Name, in.Description),
			OwnerID:     requesterID,
			CreatedAt:   now,
		})
		if err != nil {
			if store.IsUniqueViolation(err) {
				return fmt.Errorf("%w: an item named %q is already registered", model.ErrValidation, in.Name)
			}
			return err
		}

		if _, err := ledger.Append(ctx, tx, model.Transaction{
			ItemID:     id,
			ToUserID:   requesterID,
			OccurredAt: now,
		}); err != nil {
			return err
		}

		item, err = store.GetItem(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// List returns every item in creation order.
func (s *Service) List(ctx context.Context) ([]model.Item, error) {
	return store.ListItems(ctx, s.db, store.ItemFilter{})
}

// ListOwnedBy returns the items currently owned by ownerID.
func (s *Service) ListOwnedBy(ctx context.Context, ownerID int64) ([]model.Item, error) {
	return store.ListItems(ctx, s.db, store.ItemFilter{OwnerID: ownerID})
}

// Search matches query as a case-insensitive substring of item names and
// descriptions. An empty query returns every item.
func (s *Service) Search(ctx context.Context, query string) ([]model.Item, error) {
	return store.ListItems(ctx, s.db, store.ItemFilter{SearchKey: FoldKey(query)})
}

// Get returns a single item.
func (s *Service) Get(ctx context.Context, id int64) (*model.Item, error) {
	item, err := store.GetItem(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: item %d", model.ErrNotFound, id)
	}
	return item, nil
}

// SetPhoto replaces an item's photo. Only the current owner may do this.
func (s *Service) SetPhoto(ctx context.Context, callerID, itemID int64, r io.Reader) error {
	photo, err := imaging.Process(r)
	if err != nil {
		return fmt.Errorf("%w: %w", model.ErrValidation, err)
	}

	return s.retry.RunAtomic(ctx, s.db, func(tx *sql.Tx) error {
		item, err := store.GetItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("%w: item %d", model.ErrNotFound, itemID)
		}
		if item.OwnerID != callerID {
			return fmt.Errorf("%w: only the current owner can change the photo of %q", model.ErrAuthorization, item.Name)
		}
		return store.SetItemPhoto(ctx, tx, itemID, photo.Data, photo.MIME)
	})
}

// Photo returns an item's photo and its MIME type.
func (s *Service) Photo(ctx context.Context, itemID int64) ([]byte, string, error) {
	data, mime, err := store.GetItemPhoto(ctx, s.db, itemID)
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: no photo for item %d", model.ErrNotFound, itemID)
	}
	return data, mime, nil
}

// FoldKey trims s and applies Unicode case folding, so that keys compare
// case-insensitively.
func FoldKey(s string) string {
	// A Caser keeps state and must not be shared between goroutines.
	return cases.Fold().String(strings.TrimSpace(s))
}

func searchKey(name, description string) string {
	return FoldKey(name) + "\n" + FoldKey(description)
}
