package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/shunichi-ikebuchi/tag-ledger/internal/ledger"
)

// RequestTimeout bounds every request handled by the router.
const RequestTimeout = 60 * time.Second

// NewRouter wires the ledger endpoints onto a chi router.
func NewRouter(l *ledger.Ledger, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	tagsHandler := NewTagsHandler(l.Tags, logger)
	accountsHandler := NewAccountsHandler(l.Accounts, logger)
	transactionsHandler := NewTransactionsHandler(l.Transactions, logger)

	r := chi.NewRouter()

	// Middleware.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(RequestTimeout))

	r.Route("/api", func(r chi.Router) {
		// Tags endpoints.
		r.Route("/tags", func(r chi.Router) {
			r.Get("/", tagsHandler.List)
			r.Post("/", tagsHandler.Create)
			r.Delete("/", tagsHandler.Delete)
			r.Delete("/{id}", tagsHandler.Delete)
		})

		// Accounts endpoints.
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", accountsHandler.List)
			r.Post("/", accountsHandler.Create)
			r.Delete("/", accountsHandler.Delete)
			r.Get("/{id}", accountsHandler.Get)
			r.Put("/{id}", accountsHandler.Update)
			r.Delete("/{id}", accountsHandler.Delete)
		})

		// Transactions endpoints.
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", transactionsHandler.List)
			r.Post("/", transactionsHandler.Create)
			r.Delete("/", transactionsHandler.Delete)
			r.Get("/{id}", transactionsHandler.Get)
			r.Delete("/{id}", transactionsHandler.Delete)
		})
	})

	// Health check endpoint.
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return r
}
