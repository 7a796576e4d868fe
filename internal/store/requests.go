package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/bio33/TeleShare/internal/model"
)

const requestColumns = `r.id, r.item_id, r.requester_id, r.owner_id_at_creation, r.message, r.status,
	r.created_at, r.resolved_at, i.name, ru.display_name, ou.display_name,
	r.status = 'pending' AND r.owner_id_at_creation <> i.owner_id`

// InsertRequest creates a pending request and returns its ID.
func InsertRequest(ctx context.Context, q DBTX, itemID, requesterID, ownerID int64, message string, now time.Time) (int64, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO requests (item_id, requester_id, owner_id_at_creation, message, status, created_at)
		 VALUES (?, ?, ?, ?, 'pending', ?)`,
		itemID, requesterID, ownerID, message, toMillis(now),
	)
	if err != nil {
		return 0, storeErr("creating request", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, storeErr("getting request id", err)
	}
	return id, nil
}

// GetRequest returns a request by ID. OwnerName is the owner at creation.
func GetRequest(ctx context.Context, q DBTX, id int64) (*model.Request, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+requestColumns+`
		 FROM requests r
		 JOIN items i ON i.id = r.item_id
		 JOIN users ru ON ru.id = r.requester_id
		 JOIN users ou ON ou.id = r.owner_id_at_creation
		 WHERE r.id = ?`, id,
	)
	req, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("getting request", err)
	}
	return req, nil
}

// HasPendingRequest reports whether requesterID already has a pending request for itemID.
func HasPendingRequest(ctx context.Context, q DBTX, itemID, requesterID int64) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM requests
		 WHERE item_id = ? AND requester_id = ? AND status = 'pending'`,
		itemID, requesterID,
	).Scan(&n)
	if err != nil {
		return false, storeErr("checking pending requests", err)
	}
	return n > 0, nil
}

// ResolveRequest moves a pending request to status. It reports false if the
// request was no longer pending.
func ResolveRequest(ctx context.Context, q DBTX, id int64, status model.RequestStatus, now time.Time) (bool, error) {
	result, err := q.ExecContext(ctx,
		`UPDATE requests SET status = ?, resolved_at = ?
		 WHERE id = ? AND status = 'pending'`,
		string(status), toMillis(now), id,
	)
	if err != nil {
		return false, storeErr("resolving request", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, storeErr("resolving request", err)
	}
	return n == 1, nil
}

// ListPendingForOwner returns pending requests on items currently owned by
// ownerID, newest first. OwnerName is the current owner.
func ListPendingForOwner(ctx context.Context, q DBTX, ownerID int64) ([]model.Request, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+requestColumns+`
		 FROM requests r
		 JOIN items i ON i.id = r.item_id
		 JOIN users ru ON ru.id = r.requester_id
		 JOIN users ou ON ou.id = i.owner_id
		 WHERE r.status = 'pending' AND i.owner_id = ?
		 ORDER BY r.created_at DESC, r.id DESC`, ownerID,
	)
	if err != nil {
		return nil, storeErr("listing pending requests", err)
	}
	defer rows.Close()

	return scanRequests(rows)
}

// ListRequestsByRequester returns every request made by requesterID, newest
// first. OwnerName is the owner at creation.
func ListRequestsByRequester(ctx context.Context, q DBTX, requesterID int64) ([]model.Request, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+requestColumns+`
		 FROM requests r
		 JOIN items i ON i.id = r.item_id
		 JOIN users ru ON ru.id = r.requester_id
		 JOIN users ou ON ou.id = r.owner_id_at_creation
		 WHERE r.requester_id = ?
		 ORDER BY r.created_at DESC, r.id DESC`, requesterID,
	)
	if err != nil {
		return nil, storeErr("listing requests", err)
	}
	defer rows.Close()

	return scanRequests(rows)
}

func scanRequests(rows *sql.Rows) ([]model.Request, error) {
	var reqs []model.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, storeErr("scanning request", err)
		}
		reqs = append(reqs, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("listing requests", err)
	}
	return reqs, nil
}

func scanRequest(s rowScanner) (*model.Request, error) {
	req := &model.Request{}
	var status string
	var createdAt int64
	var resolvedAt sql.NullInt64
	if err := s.Scan(&req.ID, &req.ItemID, &req.RequesterID, &req.OwnerIDAtCreation, &req.Message, &status,
		&createdAt, &resolvedAt, &req.ItemName, &req.RequesterName, &req.OwnerName, &req.Stale); err != nil {
		return nil, err
	}
	req.Status = model.RequestStatus(status)
	req.CreatedAt = fromMillis(createdAt)
	req.ResolvedAt = nullMillis(resolvedAt)
	return req, nil
}
