package api

import (
	"net/http"

	"github.com/bio33/TeleShare/internal/command"
)

// ChatHandler forwards chat input from the bridge to the command dispatcher.
type ChatHandler struct {
	Dispatcher *command.Dispatcher
}

type chatMessageRequest struct {
	Text string `json:"text"`
}

type chatCallbackRequest struct {
	Data string `json:"data"`
}

// Message handles POST /api/chat/messages.
func (h *ChatHandler) Message(w http.ResponseWriter, r *http.Request) {
	var req chatMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := h.Dispatcher.HandleText(r.Context(), callerID(r), req.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, reply)
}

// Callback handles POST /api/chat/callbacks.
func (h *ChatHandler) Callback(w http.ResponseWriter, r *http.Request) {
	var req chatCallbackRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := h.Dispatcher.HandleCallback(r.Context(), callerID(r), req.Data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, reply)
}
