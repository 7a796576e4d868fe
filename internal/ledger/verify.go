package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/bio33/TeleShare/internal/model"
	"github.com/bio33/TeleShare/internal/store"
)

// ChainError describes the first place an item's history breaks.
type ChainError struct {
	ItemID int64
	// Index is the position in the history, or -1 for a problem with the item itself.
	Index  int
	Reason string
}

func (e *ChainError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("item %d: %s", e.ItemID, e.Reason)
	}
	return fmt.Sprintf("item %d, transaction #%d: %s", e.ItemID, e.Index, e.Reason)
}

// Verify replays an item's history and checks that it starts with a single
// null-origin registration, that every later row starts where the previous
// one ended, and that it ends at the item's current owner.
func Verify(ctx context.Context, q store.DBTX, itemID int64) error {
	item, err := store.GetItem(ctx, q, itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("%w: item %d", model.ErrNotFound, itemID)
	}

	var (
		i     int
		owner int64
	)
	for t, err := range History(ctx, q, itemID) {
		if err != nil {
			return err
		}
		switch {
		case i == 0 && !t.IsRegistration():
			return &ChainError{ItemID: itemID, Index: i, Reason: "history does not start with a registration"}
		case i > 0 && t.IsRegistration():
			return &ChainError{ItemID: itemID, Index: i, Reason: "registration after the first row"}
		case i > 0 && *t.FromUserID != owner:
			return &ChainError{ItemID: itemID, Index: i,
				Reason: fmt.Sprintf("from user %d does not match previous owner %d", *t.FromUserID, owner)}
		}
		owner = t.ToUserID
		i++
	}

	if i == 0 {
		return &ChainError{ItemID: itemID, Index: -1, Reason: "no transactions recorded"}
	}
	if owner != item.OwnerID {
		return &ChainError{ItemID: itemID, Index: -1,
			Reason: fmt.Sprintf("history ends at user %d but item is owned by %d", owner, item.OwnerID)}
	}
	return nil
}

// VerifyAll checks every item and returns the chain errors found. A store
// failure aborts the walk.
func VerifyAll(ctx context.Context, q store.DBTX) ([]*ChainError, error) {
	ids, err := store.ListItemIDs(ctx, q)
	if err != nil {
		return nil, err
	}

	var broken []*ChainError
	for _, id := range ids {
		err := Verify(ctx, q, id)
		if err == nil {
			continue
		}
		var ce *ChainError
		if !errors.As(err, &ce) {
			return nil, err
		}
		broken = append(broken, ce)
	}
	return broken, nil
}
