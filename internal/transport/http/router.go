package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aconic-ni/customspayapp/internal/platform/middleware"
)

// RouterConfig carries the transport-level knobs.
type RouterConfig struct {
	JWTSigningKey  []byte
	RequestTimeout time.Duration
}

// NewRouter assembles the middleware chain and the route table.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.Logger(h.logger))
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RequireAuth(cfg.JWTSigningKey, h.logger))

		r.Post("/search", h.Search)
		r.Get("/search", h.Session)
		r.Put("/search/filters", h.SetFilters)

		r.Route("/records/{id}", func(r chi.Router) {
			r.Get("/", h.GetRecord)
			r.Delete("/", h.DeleteRecord)
			r.Post("/payment-status", h.SetPaymentStatus)
			r.Post("/document-received", h.SetDocumentReceived)
			r.Post("/email-notified", h.SetEmailNotified)
			r.Get("/comments", h.ListComments)
			r.Post("/comments", h.AddComment)
		})

		r.Post("/duplicates/resolve", h.ResolveDuplicate)
		r.Get("/export", h.Export)
	})

	return r
}
