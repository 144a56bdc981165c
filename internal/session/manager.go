// Package session implements cookie-carried server-side sessions. The cookie
// holds an opaque token plus an HMAC signature; all session state lives in
// the sessions table, so each request resolves its token independently and
// logout invalidates the token for every client at once.
package session

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Amadeea/book-notes/internal/apperr"
	"github.com/Amadeea/book-notes/internal/models"
	"github.com/Amadeea/book-notes/internal/store"
)

// Manager creates, resolves, and destroys sessions.
type Manager struct {
	store      *store.Store
	secret     []byte
	cookieName string
	ttl        time.Duration
}

// NewManager creates a session manager. The secret signs cookie values so
// forged tokens are rejected before any store lookup.
func NewManager(st *store.Store, secret, cookieName string, ttl time.Duration) *Manager {
	return &Manager{
		store:      st,
		secret:     []byte(secret),
		cookieName: cookieName,
		ttl:        ttl,
	}
}

// Create establishes a session for the user and returns the opaque token.
// Only the user id is bound to the token; the password hash never enters
// session state.
func (m *Manager) Create(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	if err := m.store.CreateSession(ctx, token, userID, time.Now().Add(m.ttl)); err != nil {
		return "", fmt.Errorf("session: create: %w", err)
	}
	return token, nil
}

// Resolve rehydrates the user for the request's session cookie.
// A missing, forged, expired, or orphaned session (its user row is gone)
// yields apperr.ErrSessionInvalid or apperr.ErrUserNotFound; store faults
// come back wrapped.
func (m *Manager) Resolve(ctx context.Context, r *http.Request) (*models.User, error) {
	token, err := m.tokenFromRequest(r)
	if err != nil {
		return nil, err
	}

	sess, err := m.store.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, apperr.ErrSessionInvalid) {
			return nil, apperr.ErrSessionInvalid
		}
		return nil, fmt.Errorf("session: resolve: %w", err)
	}
	if sess.Expired(time.Now()) {
		if err := m.store.DeleteSession(ctx, token); err != nil {
			slog.Warn("failed to remove expired session", slog.String("error", err.Error()))
		}
		return nil, apperr.ErrSessionInvalid
	}

	user, err := m.store.GetUserByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, apperr.ErrUserNotFound) {
			// The referenced user is gone. The session must die rather than
			// pass a partial identity downstream.
			if derr := m.store.DeleteSession(ctx, token); derr != nil {
				slog.Warn("failed to remove orphaned session", slog.String("error", derr.Error()))
			}
			return nil, apperr.ErrUserNotFound
		}
		return nil, fmt.Errorf("session: rehydrate user: %w", err)
	}
	return user, nil
}

// IsAuthenticated reports whether the request carries a valid, non-expired
// session resolving to an existing user.
func (m *Manager) IsAuthenticated(ctx context.Context, r *http.Request) bool {
	_, err := m.Resolve(ctx, r)
	return err == nil
}

// Destroy invalidates the request's session. Requests without a valid
// session cookie succeed as a no-op, so logging out twice is not an error.
func (m *Manager) Destroy(ctx context.Context, r *http.Request) error {
	token, err := m.tokenFromRequest(r)
	if err != nil {
		return nil
	}
	if err := m.store.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("session: destroy: %w", err)
	}
	return nil
}

// SweepExpired purges expired session rows once.
func (m *Manager) SweepExpired(ctx context.Context) (int64, error) {
	return m.store.DeleteExpiredSessions(ctx, time.Now())
}

// RunSweeper purges expired sessions on the given interval until ctx is done.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := m.SweepExpired(ctx)
			if err != nil {
				slog.Error("session sweep failed", slog.String("error", err.Error()))
				continue
			}
			if n > 0 {
				slog.Debug("swept expired sessions", slog.Int64("count", n))
			}
		}
	}
}

// SetCookie writes the signed session cookie on the response.
func (m *Manager) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    m.sign(token),
		Path:     "/",
		MaxAge:   int(m.ttl / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie on the client.
func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// tokenFromRequest extracts and authenticates the token carried in the
// session cookie.
func (m *Manager) tokenFromRequest(r *http.Request) (string, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return "", apperr.ErrSessionInvalid
	}
	token, sig, ok := strings.Cut(cookie.Value, ".")
	if !ok {
		return "", apperr.ErrSessionInvalid
	}
	want := m.signature(token)
	got, err := hex.DecodeString(sig)
	if err != nil || !hmac.Equal(got, want) {
		return "", apperr.ErrSessionInvalid
	}
	return token, nil
}

func (m *Manager) sign(token string) string {
	return token + "." + hex.EncodeToString(m.signature(token))
}

func (m *Manager) signature(token string) []byte {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(token))
	return mac.Sum(nil)
}
