package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/bio33/TeleShare/internal/auth"
	"github.com/bio33/TeleShare/internal/command"
	"github.com/bio33/TeleShare/internal/model"
	"github.com/bio33/TeleShare/internal/store"
)

// BridgeKeyHeader carries the chat bridge's shared key.
const BridgeKeyHeader = "X-Bridge-Key"

// AccountsHandler registers chat identities and issues their tokens.
type AccountsHandler struct {
	DB         *sql.DB
	Dispatcher *command.Dispatcher
	JWTSecret  string
	TokenTTL   time.Duration
}

type accountResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Register handles POST /api/accounts. It is idempotent per gateway identity.
func (h *AccountsHandler) Register(w http.ResponseWriter, r *http.Request) {
	hash, ok, err := store.GetSetting(r.Context(), h.DB, store.SettingBridgeKeyHash)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		jsonError(w, http.StatusServiceUnavailable, "bridge key not configured")
		return
	}
	if !auth.CheckBridgeKey(hash, r.Header.Get(BridgeKeyHeader)) {
		slog.WarnContext(r.Context(), "bridge key rejected", "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "invalid bridge key")
		return
	}

	var id command.Identity
	if err := decodeJSON(r, &id); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.Dispatcher.RegisterAccount(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, user.ID, user.DisplayName, h.TokenTTL)
	if err != nil {
		writeError(w, r, err)
		return
	}

	jsonResponse(w, http.StatusOK, accountResponse{Token: token, User: user})
}
