// Package handlers exposes the account operations over HTTP with chi.
package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prudhvinik1/accountsvc/internal/logging"
)

// NewRouter mounts every route. Everything under /api/users requires a
// bearer token.
func NewRouter(h *Handler, requestTimeout time.Duration) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(logging.RequestLogger(h.logger))
	router.Use(h.metrics.Middleware)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(requestTimeout))

	router.Get("/health", h.health)
	router.Handle("/metrics", h.metrics.Handler())
	router.Post("/api/auth/login", h.login)

	router.Route("/api/users", func(r chi.Router) {
		r.Use(RequireAuth(h.auth, h.logger))

		r.Post("/", h.createAccount)
		r.Get("/active", h.listActive)
		r.Get("/older-than/{age}", h.listOlderThan)
		r.Delete("/soft/{login}", h.softDelete)
		r.Post("/restore/{login}", h.restore)

		r.Get("/{login}", h.getByLogin)
		r.Put("/{login}", h.updateInfo)
		r.Put("/{login}/password", h.changePassword)
		r.Put("/{login}/login", h.changeLogin)
		r.Post("/{login}/authenticate", h.authenticateSelf)
	})

	return router
}
