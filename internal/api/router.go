// Package api implements the book-notes REST API using chi.
package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/Amadeea/book-notes/internal/auth"
	"github.com/Amadeea/book-notes/internal/bookservice"
	"github.com/Amadeea/book-notes/internal/session"
)

// NewRouter creates a chi router with all note and user routes mounted.
func NewRouter(books *bookservice.Service, authSvc *auth.Service, sessions *session.Manager) chi.Router {
	h := NewHandler(books)
	uh := NewUserHandler(authSvc, sessions)

	r := chi.NewRouter()

	// Notes CRUD. The static /notes/list route takes priority over the
	// /notes/{id} parameter route.
	r.Get("/notes/list", h.ListNotes)
	r.Get("/notes/{id}", h.GetNote)
	r.Post("/notes", h.CreateNote)
	r.Put("/notes", h.UpdateNote)
	r.Delete("/notes/{id}", h.DeleteNote)

	// Authentication and session lifecycle.
	r.Post("/users/login", uh.Login)
	r.Post("/users/register", uh.Register)
	r.Get("/users/login-check", uh.LoginCheck)
	r.Get("/users/logout", uh.Logout)

	return r
}
