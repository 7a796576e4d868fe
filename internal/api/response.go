package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/bio33/TeleShare/internal/model"
	"github.com/bio33/TeleShare/internal/store"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, errorBody{Error: message})
}

// writeError maps domain errors to HTTP statuses. Store failures are
// logged and hidden from the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	var code string
	switch {
	case errors.Is(err, model.ErrValidation):
		status, code = http.StatusBadRequest, "validation"
	case errors.Is(err, model.ErrAuthorization):
		status, code = http.StatusForbidden, "authorization"
	case errors.Is(err, model.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, model.ErrInvalidState):
		status, code = http.StatusConflict, "invalid_state"
	case errors.Is(err, model.ErrDuplicateRequest):
		status, code = http.StatusConflict, "duplicate_request"
	case errors.Is(err, model.ErrSelfRequest):
		status, code = http.StatusConflict, "self_request"
	case errors.Is(err, model.ErrStaleRequest):
		status, code = http.StatusConflict, "stale_request"
	case store.IsTransient(err):
		slog.WarnContext(r.Context(), "store busy", "error", err)
		jsonResponse(w, http.StatusServiceUnavailable, errorBody{Error: "store busy, retry later", Code: "store_busy"})
		return
	default:
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		jsonResponse(w, http.StatusInternalServerError, errorBody{Error: "internal error", Code: "internal"})
		return
	}
	jsonResponse(w, status, errorBody{Error: err.Error(), Code: code})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(target)
}

// pathID parses a positive integer URL parameter.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(urlParam(r, name), 10, 64)
	return id, err == nil && id > 0
}
