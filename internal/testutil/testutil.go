// Package testutil provides shared test helpers for setting up stores.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/Amadeea/book-notes/internal/store"
)

// TestStore creates a temporary SQLite store with the schema applied that is
// automatically cleaned up.
func TestStore(t *testing.T) *store.Store {
	t.Helper()
	dbFile, err := os.CreateTemp("", "booknotes-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	st, err := store.Open(context.Background(), dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}
