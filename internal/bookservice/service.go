// Package bookservice validates and executes the note CRUD operations.
package bookservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/Amadeea/book-notes/internal/apperr"
	"github.com/Amadeea/book-notes/internal/models"
	"github.com/Amadeea/book-notes/internal/store"
)

// CoverBaseURL is the Open Library cover endpoint notes derive their cover
// from. The suffix selects the medium-size image.
const (
	CoverBaseURL    = "https://covers.openlibrary.org/b/isbn/"
	coverSizeSuffix = "-M.jpg"

	dateReadLayout = "2006-01-02"
)

// NoteInput carries the client-editable fields of a note. CoverURL is
// deliberately absent: it is always recomputed from the ISBN.
type NoteInput struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	ISBN     string   `json:"isbn"`
	DateRead string   `json:"date_read"`
	Score    *float64 `json:"score"`
	Summary  string   `json:"summary"`
	Note     string   `json:"note"`
}

// NoteView is a note as returned to API clients, with date_read rendered as
// D-M-YYYY (1-based month, no zero padding).
type NoteView struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	ISBN      string    `json:"isbn"`
	CoverURL  string    `json:"cover_url"`
	DateRead  string    `json:"date_read,omitempty"`
	Score     *float64  `json:"score,omitempty"`
	Summary   string    `json:"summary"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service orchestrates validation and note store calls.
type Service struct {
	store *store.Store
}

// NewService creates a new book note service.
func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// List returns every note.
func (s *Service) List(ctx context.Context) ([]NoteView, error) {
	notes, err := s.store.ListNotes(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]NoteView, 0, len(notes))
	for i := range notes {
		views = append(views, toView(&notes[i]))
	}
	return views, nil
}

// Get returns the note with the given id as a zero-or-one element slice.
// An unknown id is an empty result, not a failure.
func (s *Service) Get(ctx context.Context, id int64) ([]NoteView, error) {
	note, err := s.store.GetNote(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNoteNotExist) {
			return []NoteView{}, nil
		}
		return nil, err
	}
	return []NoteView{toView(note)}, nil
}

// Create validates the input, derives the cover URL, and inserts the note.
func (s *Service) Create(ctx context.Context, in NoteInput) (*NoteView, error) {
	rec, err := buildRecord(in)
	if err != nil {
		return nil, err
	}
	note, err := s.store.InsertNote(ctx, *rec)
	if err != nil {
		return nil, err
	}
	v := toView(note)
	return &v, nil
}

// Edit replaces every editable field of an existing note. The note is
// re-fetched first; editing an unknown id fails with "Note doesn't exist"
// and mutates nothing.
func (s *Service) Edit(ctx context.Context, id int64, in NoteInput) (*NoteView, error) {
	if _, err := s.store.GetNote(ctx, id); err != nil {
		return nil, err
	}
	rec, err := buildRecord(in)
	if err != nil {
		return nil, err
	}
	note, err := s.store.UpdateNote(ctx, id, *rec)
	if err != nil {
		return nil, err
	}
	v := toView(note)
	return &v, nil
}

// Delete removes the note with the given id. Deleting an id that does not
// exist succeeds; this mirrors the permissive behavior clients rely on.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.store.DeleteNote(ctx, id)
}

// CoverURL derives the Open Library cover image URL for an ISBN.
func CoverURL(isbn string) string {
	return CoverBaseURL + isbn + coverSizeSuffix
}

// FormatDate renders a date as D-M-YYYY with a 1-based month and no zero
// padding, e.g. 2024-03-05 renders as "5-3-2024".
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d-%d-%d", t.Day(), int(t.Month()), t.Year())
}

// validateInput checks the required fields in a fixed order. The first empty
// field determines the failure; later fields are not reported.
func validateInput(in NoteInput) error {
	checks := []struct {
		field string
		value string
	}{
		{"title", in.Title},
		{"author", in.Author},
		{"isbn", in.ISBN},
	}
	for _, c := range checks {
		if err := validation.Validate(c.value, validation.Required); err != nil {
			return &apperr.MissingFieldError{Field: c.field}
		}
	}
	return nil
}

func buildRecord(in NoteInput) (*store.NoteRecord, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	rec := &store.NoteRecord{
		Title:    in.Title,
		Author:   in.Author,
		ISBN:     in.ISBN,
		CoverURL: CoverURL(in.ISBN),
		Score:    in.Score,
		Summary:  in.Summary,
		Note:     in.Note,
	}
	if in.DateRead != "" {
		t, err := time.Parse(dateReadLayout, in.DateRead)
		if err != nil {
			return nil, fmt.Errorf("bookservice: parse date_read %q: %w", in.DateRead, err)
		}
		rec.DateRead = &t
	}
	return rec, nil
}

func toView(n *models.Note) NoteView {
	v := NoteView{
		ID:        n.ID,
		Title:     n.Title,
		Author:    n.Author,
		ISBN:      n.ISBN,
		CoverURL:  n.CoverURL,
		Score:     n.Score,
		Summary:   n.Summary,
		Note:      n.Note,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
	if n.DateRead != nil {
		v.DateRead = FormatDate(*n.DateRead)
	}
	return v
}
