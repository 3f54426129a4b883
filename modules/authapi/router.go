// Package authapi exposes the passwordless authentication flow over
// HTTP: magic-link issuance and verification, logout, and the
// current-user endpoint. Each app in the suite mounts this router under
// /api/auth and lists its own endpoints as public paths in the request
// gate.
package authapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Router returns the auth API routes, ready to mount:
//
//	r.Mount("/api/auth", svc.Router())
func (s *Service) Router() chi.Router {
	r := chi.NewRouter()

	r.Post("/login", s.handleLogin)
	r.Post("/verify", s.handleVerify)
	r.Post("/logout", s.handleLogout)
	r.Post("/logout-all", s.handleLogoutAll)
	r.Get("/me", s.handleMe)

	return r
}

// Handle implements the conventional mountable interface used across
// the suite's modules.
func (s *Service) Handle() http.Handler {
	return s.Router()
}
