package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Amadeea/book-notes/internal/apperr"
	"github.com/Amadeea/book-notes/internal/models"
)

const noteColumns = `id, title, author, isbn, cover_url, date_read, score, summary, note, created_at, updated_at`

// NoteRecord carries the writable columns of a note row. Timestamps are
// owned by the store.
type NoteRecord struct {
	Title    string
	Author   string
	ISBN     string
	CoverURL string
	DateRead *time.Time
	Score    *float64
	Summary  string
	Note     string
}

// ListNotes returns every note ordered by id.
func (s *Store) ListNotes(ctx context.Context) ([]models.Note, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+noteColumns+` FROM notes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("store: list notes: %w", err)
	}
	defer rows.Close()

	var notes []models.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan note: %w", err)
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

// GetNote returns the note with the given id, or apperr.ErrNoteNotExist.
func (s *Store) GetNote(ctx context.Context, id int64) (*models.Note, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = ?`, id)
	n, err := scanNote(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNoteNotExist
		}
		return nil, fmt.Errorf("store: get note: %w", err)
	}
	return n, nil
}

// InsertNote inserts a new note and returns the stored row with its
// generated id and timestamps.
func (s *Store) InsertNote(ctx context.Context, rec NoteRecord) (*models.Note, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO notes (title, author, isbn, cover_url, date_read, score, summary, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Title, rec.Author, rec.ISBN, rec.CoverURL, dateArg(rec.DateRead), scoreArg(rec.Score), rec.Summary, rec.Note)
	if err != nil {
		return nil, fmt.Errorf("store: insert note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("store: insert note id: %w", err)
	}
	return s.GetNote(ctx, id)
}

// UpdateNote replaces every writable column of the note with the given id
// and refreshes updated_at. The caller is responsible for checking the note
// exists first; updating a missing id is a silent no-op at this layer.
func (s *Store) UpdateNote(ctx context.Context, id int64, rec NoteRecord) (*models.Note, error) {
	_, err := s.db.ExecContext(ctx, `
		UPDATE notes
		SET title = ?, author = ?, isbn = ?, cover_url = ?, date_read = ?, score = ?, summary = ?, note = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		rec.Title, rec.Author, rec.ISBN, rec.CoverURL, dateArg(rec.DateRead), scoreArg(rec.Score), rec.Summary, rec.Note, id)
	if err != nil {
		return nil, fmt.Errorf("store: update note: %w", err)
	}
	return s.GetNote(ctx, id)
}

// DeleteNote removes the note with the given id. Deleting an id that does
// not exist is not an error.
func (s *Store) DeleteNote(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("store: delete note: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(r rowScanner) (*models.Note, error) {
	var (
		n        models.Note
		dateRead sql.NullTime
		score    sql.NullFloat64
	)
	err := r.Scan(&n.ID, &n.Title, &n.Author, &n.ISBN, &n.CoverURL,
		&dateRead, &score, &n.Summary, &n.Note, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if dateRead.Valid {
		t := dateRead.Time
		n.DateRead = &t
	}
	if score.Valid {
		v := score.Float64
		n.Score = &v
	}
	return &n, nil
}

// dateArg stores dates as ISO text so SQLite's date functions keep working
// on the column.
func dateArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format("2006-01-02")
}

func scoreArg(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
