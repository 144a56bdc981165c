// Package models defines the domain types for the book-notes service.
package models

import "time"

// User is a registered account. The password hash never leaves the server.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Note is one book-notes row. CoverURL is derived from ISBN at write time
// and never taken from client input.
type Note struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Author    string     `json:"author"`
	ISBN      string     `json:"isbn"`
	CoverURL  string     `json:"cover_url"`
	DateRead  *time.Time `json:"date_read,omitempty"`
	Score     *float64   `json:"score,omitempty"`
	Summary   string     `json:"summary"`
	Note      string     `json:"note"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Session maps an opaque token to a user id. It references the user weakly:
// resolving a session whose user row is gone invalidates the session.
type Session struct {
	Token     string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry at the given time.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
