package api

import (
	"net/http"

	"github.com/bio33/TeleShare/internal/model"
	"github.com/bio33/TeleShare/internal/transfer"
)

// RequestsHandler handles transfer request endpoints. Every operation acts
// as the authenticated caller.
type RequestsHandler struct {
	Engine *transfer.Engine
}

type createRequestRequest struct {
	ItemID  int64  `json:"item_id"`
	Message string `json:"message"`
}

// Create handles POST /api/requests.
func (h *RequestsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequestRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ItemID <= 0 {
		jsonError(w, http.StatusBadRequest, "item_id required")
		return
	}

	created, err := h.Engine.CreateRequest(r.Context(), callerID(r), req.ItemID, req.Message)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, created)
}

// ListMine handles GET /api/requests.
func (h *RequestsHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.Engine.ListByRequester(r.Context(), callerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if reqs == nil {
		reqs = []model.Request{}
	}
	jsonResponse(w, http.StatusOK, reqs)
}

// ListPending handles GET /api/requests/pending.
func (h *RequestsHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.Engine.ListPendingForOwner(r.Context(), callerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if reqs == nil {
		reqs = []model.Request{}
	}
	jsonResponse(w, http.StatusOK, reqs)
}

// Accept handles POST /api/requests/{id}/accept.
func (h *RequestsHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, model.DecisionAccept)
}

// Reject handles POST /api/requests/{id}/reject.
func (h *RequestsHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, model.DecisionReject)
}

func (h *RequestsHandler) resolve(w http.ResponseWriter, r *http.Request, decision model.Decision) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	resolved, err := h.Engine.Resolve(r.Context(), callerID(r), id, decision)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, resolved)
}

// Cancel handles POST /api/requests/{id}/cancel.
func (h *RequestsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	cancelled, err := h.Engine.Cancel(r.Context(), callerID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, cancelled)
}
