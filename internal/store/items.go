package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/bio33/TeleShare/internal/model"
)

// NewItem holds the columns written when an item is registered. NameKey and
// SearchKey are case-folded by the caller.
type NewItem struct {
	Name        string
	NameKey     string
	Description string
	SearchKey   string
	OwnerID     int64
	CreatedAt   time.Time
}

// ItemFilter narrows ListItems. Zero values match everything.
type ItemFilter struct {
	OwnerID int64
	// SearchKey is matched as a substring of the folded name and description.
	SearchKey string
}

const itemColumns = `i.id, i.name, i.description, i.owner_id, i.photo_mime IS NOT NULL, i.created_at, u.display_name`

// InsertItem creates an item and returns its ID.
func InsertItem(ctx context.Context, q DBTX, item NewItem) (int64, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO items (name, name_key, description, search_key, owner_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		item.Name, item.NameKey, item.Description, item.SearchKey, item.OwnerID, toMillis(item.CreatedAt),
	)
	if err != nil {
		return 0, storeErr("creating item", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, storeErr("getting item id", err)
	}
	return id, nil
}

// ItemNameTaken reports whether an item with the folded name already exists.
func ItemNameTaken(ctx context.Context, q DBTX, nameKey string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items WHERE name_key = ?`, nameKey,
	).Scan(&n)
	if err != nil {
		return false, storeErr("checking item name", err)
	}
	return n > 0, nil
}

// GetItem returns an item by ID with its owner's display name.
func GetItem(ctx context.Context, q DBTX, id int64) (*model.Item, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+itemColumns+`
		 FROM items i
		 JOIN users u ON u.id = i.owner_id
		 WHERE i.id = ?`, id,
	)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("getting item", err)
	}
	return item, nil
}

// ListItems returns items in creation order, each annotated with its owner's
// display name.
func ListItems(ctx context.Context, q DBTX, filter ItemFilter) ([]model.Item, error) {
	query := `SELECT ` + itemColumns + `
	          FROM items i
	          JOIN users u ON u.id = i.owner_id
	          WHERE 1=1`
	var args []any

	if filter.OwnerID != 0 {
		query += ` AND i.owner_id = ?`
		args = append(args, filter.OwnerID)
	}
	if filter.SearchKey != "" {
		query += ` AND instr(i.search_key, ?) > 0`
		args = append(args, filter.SearchKey)
	}

	query += ` ORDER BY i.created_at, i.id`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("listing items", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, storeErr("scanning item", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("listing items", err)
	}
	return items, nil
}

// ListItemIDs returns every item ID in creation order.
func ListItemIDs(ctx context.Context, q DBTX) ([]int64, error) {
	rows, err := q.QueryContext(ctx, `SELECT id FROM items ORDER BY created_at, id`)
	if err != nil {
		return nil, storeErr("listing item ids", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, storeErr("scanning item id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("listing item ids", err)
	}
	return ids, nil
}

// SetItemOwner moves an item from one owner to another. It only updates the
// row while fromOwnerID is still the owner and reports whether it did.
func SetItemOwner(ctx context.Context, q DBTX, itemID, fromOwnerID, toOwnerID int64) (bool, error) {
	result, err := q.ExecContext(ctx,
		`UPDATE items SET owner_id = ? WHERE id = ? AND owner_id = ?`,
		toOwnerID, itemID, fromOwnerID,
	)
	if err != nil {
		return false, storeErr("updating item owner", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, storeErr("updating item owner", err)
	}
	return n == 1, nil
}

// SetItemPhoto sets an item's photo data.
func SetItemPhoto(ctx context.Context, q DBTX, id int64, photo []byte, mime string) error {
	_, err := q.ExecContext(ctx,
		`UPDATE items SET photo = ?, photo_mime = ? WHERE id = ?`,
		photo, mime, id,
	)
	if err != nil {
		return storeErr("setting item photo", err)
	}
	return nil
}

// GetItemPhoto returns an item's photo data and MIME type. Both are empty
// when the item has no photo.
func GetItemPhoto(ctx context.Context, q DBTX, id int64) ([]byte, string, error) {
	var photo []byte
	var mime sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT photo, photo_mime FROM items WHERE id = ?`, id,
	).Scan(&photo, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", storeErr("getting item photo", err)
	}
	return photo, mime.String, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(s rowScanner) (*model.Item, error) {
	item := &model.Item{}
	var createdAt int64
	if err := s.Scan(&item.ID, &item.Name, &item.Description, &item.OwnerID, &item.HasPhoto,
		&createdAt, &item.OwnerName); err != nil {
		return nil, err
	}
	item.CreatedAt = fromMillis(createdAt)
	return item, nil
}
