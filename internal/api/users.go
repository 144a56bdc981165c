package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Amadeea/book-notes/internal/apperr"
	"github.com/Amadeea/book-notes/internal/auth"
	"github.com/Amadeea/book-notes/internal/session"
)

// UserHandler holds the authentication route handlers.
type UserHandler struct {
	auth     *auth.Service
	sessions *session.Manager
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authSvc *auth.Service, sessions *session.Manager) *UserHandler {
	return &UserHandler{auth: authSvc, sessions: sessions}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /users/login. Bad credentials are a 401 with the
// failure message; only store or hashing faults become a 500.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if apperr.IsFailure(err) {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		slog.Error("login failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.establishSession(w, r, user.ID, "Login successful")
}

// Register handles POST /users/register. A duplicate username is a 400; the
// new user is logged in immediately on success.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := h.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, apperr.ErrUserExists) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("register failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.establishSession(w, r, user.ID, "Registration successful")
}

// LoginCheck handles GET /users/login-check.
func (h *UserHandler) LoginCheck(w http.ResponseWriter, r *http.Request) {
	if !h.sessions.IsAuthenticated(r.Context(), r) {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	writeData(w, http.StatusOK, "Authenticated")
}

// Logout handles GET /users/logout. Logging out without an active session
// still succeeds.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), r); err != nil {
		slog.Error("logout failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.sessions.ClearCookie(w)
	writeData(w, http.StatusOK, "Logout successful")
}

// establishSession binds a session to the user and writes the success
// response. A session fault after successful authentication is still a 500:
// the client has no usable session.
func (h *UserHandler) establishSession(w http.ResponseWriter, r *http.Request, userID int64, message string) {
	token, err := h.sessions.Create(r.Context(), userID)
	if err != nil {
		slog.Error("session create failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.sessions.SetCookie(w, token)
	writeData(w, http.StatusOK, message)
}
