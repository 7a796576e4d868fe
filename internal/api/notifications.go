package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/bio33/TeleShare/internal/store"
)

// NotificationsHandler serves the inbox the chat bridge polls.
type NotificationsHandler struct {
	DB *sql.DB
}

// Take handles GET /api/notifications. Returned messages are marked
// delivered and will not be returned again.
func (h *NotificationsHandler) Take(w http.ResponseWriter, r *http.Request) {
	msgs, err := store.TakeNotifications(r.Context(), h.DB, callerID(r), time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if msgs == nil {
		msgs = []store.Notification{}
	}
	jsonResponse(w, http.StatusOK, msgs)
}
