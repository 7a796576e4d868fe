package model

import "errors"

// Error taxonomy. Operations wrap these with context; check with errors.Is.
var (
	// ErrValidation indicates bad input, e.g. an empty item name.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates the referenced item or request does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAuthorization indicates the caller is not allowed to act on the entity.
	ErrAuthorization = errors.New("not authorized")

	// ErrInvalidState indicates a transition out of a terminal request status.
	ErrInvalidState = errors.New("invalid request state")

	// ErrDuplicateRequest indicates the requester already has a pending request for the item.
	ErrDuplicateRequest = errors.New("duplicate pending request")

	// ErrSelfRequest indicates the requester already owns the item.
	ErrSelfRequest = errors.New("requester already owns item")

	// ErrStaleRequest indicates the item changed hands after the request was created.
	ErrStaleRequest = errors.New("item already transferred")

	// ErrStore indicates a storage or transaction failure. No partial writes remain.
	ErrStore = errors.New("store failure")
)
