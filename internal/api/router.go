package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/bio33/TeleShare/internal/catalog"
	"github.com/bio33/TeleShare/internal/command"
	"github.com/bio33/TeleShare/internal/metrics"
	"github.com/bio33/TeleShare/internal/transfer"
)

// Deps are the components the gateway routes to.
type Deps struct {
	DB         *sql.DB
	Catalog    *catalog.Service
	Engine     *transfer.Engine
	Dispatcher *command.Dispatcher
	Metrics    *metrics.Metrics

	JWTSecret string
	TokenTTL  time.Duration
	// RateLimit is the number of requests allowed per IP per minute. Zero
	// disables limiting.
	RateLimit int
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(d Deps) http.Handler {
	accounts := &AccountsHandler{DB: d.DB, Dispatcher: d.Dispatcher, JWTSecret: d.JWTSecret, TokenTTL: d.TokenTTL}
	chat := &ChatHandler{Dispatcher: d.Dispatcher}
	items := &ItemsHandler{DB: d.DB, Catalog: d.Catalog}
	requests := &RequestsHandler{Engine: d.Engine}
	notifications := &NotificationsHandler{DB: d.DB}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		LoggingMiddleware(d.Metrics),
		middleware.Recoverer,
	)
	if d.RateLimit > 0 {
		r.Use(httprate.LimitByIP(d.RateLimit, time.Minute))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := d.DB.PingContext(r.Context()); err != nil {
			jsonError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		// Bridge-authenticated: issues caller tokens.
		r.Post("/accounts", accounts.Register)

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(d.JWTSecret))

			r.Post("/chat/messages", chat.Message)
			r.Post("/chat/callbacks", chat.Callback)

			r.Get("/items", items.List)
			r.Post("/items", items.Create)
			r.Get("/items/mine", items.Mine)
			r.Get("/items/{id}", items.Get)
			r.Get("/items/{id}/history", items.History)
			r.Put("/items/{id}/image", items.UploadImage)
			r.Get("/items/{id}/image", items.GetImage)

			r.Post("/requests", requests.Create)
			r.Get("/requests", requests.ListMine)
			r.Get("/requests/pending", requests.ListPending)
			r.Post("/requests/{id}/accept", requests.Accept)
			r.Post("/requests/{id}/reject", requests.Reject)
			r.Post("/requests/{id}/cancel", requests.Cancel)

			r.Get("/notifications", notifications.Take)
		})
	})

	return r
}
