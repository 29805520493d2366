/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:       Request logging
  2. Recoverer:    Panic recovery (500 instead of crash)
  3. RequestID:    Unique ID per request for tracing
  4. CORS:         Cross-origin requests for frontend
  5. Authenticate: Bearer token to identity (anonymous passes through)

ROUTE GROUPS:
  Public:     user list/create, logins, biometric login
  Identified: month views, biometric enrollment
  Admin:      record mutation, balances, user deletion

SEE ALSO:
  - handlers.go: Handler implementations
  - auth/middleware.go: Identity middleware
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/warp/attendance-engine/auth"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(h.Auth.Authenticate)

	r.Route("/api", func(r chi.Router) {
		// Public: the login screen lists users before any session exists.
		r.Get("/users", h.ListUsers)
		r.Post("/users", h.CreateUser)
		r.Post("/login", h.Login)
		r.Post("/admin/login", h.AdminLogin)
		r.Route("/biometrics/login", func(r chi.Router) {
			r.Post("/begin", h.BeginBiometricLogin)
			r.Post("/finish", h.FinishBiometricLogin)
		})

		// Identified: the user themselves or the admin.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireIdentity)

			r.Get("/users/{id}", h.GetUser)
			r.Get("/users/{id}/months/{month}", h.MonthView)

			r.Route("/users/{id}/biometrics", func(r chi.Router) {
				r.Post("/registration/begin", h.BeginBiometricRegistration)
				r.Post("/registration/finish", h.FinishBiometricRegistration)
				r.Delete("/", h.DisableBiometrics)
			})
		})

		// Admin: record management and destructive operations.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin)

			r.Delete("/users/{id}", h.DeleteUser)
			r.Put("/users/{id}/balances", h.UpdateBalances)
			r.Delete("/users/{id}/records", h.ClearRecords)

			r.Post("/users/{id}/attendance", h.CreateAttendance)
			r.Post("/users/{id}/leaves", h.CreateLeave)
			r.Post("/users/{id}/notes", h.CreateNote)

			r.Delete("/attendance/{id}", h.DeleteAttendance)
			r.Delete("/leaves/{id}", h.DeleteLeave)
			r.Delete("/notes/{id}", h.DeleteNote)
		})

		// Scenario routes (demo data, dev only)
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}
