package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Amadeea/book-notes/internal/auth"
	"github.com/Amadeea/book-notes/internal/bookservice"
	"github.com/Amadeea/book-notes/internal/session"
	"github.com/Amadeea/book-notes/internal/store"
)

// testEnv sets up a temp store and the full router for testing.
func testEnv(t *testing.T) http.Handler {
	t.Helper()

	dbFile, err := os.CreateTemp("", "booknotes-api-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	st, err := store.Open(context.Background(), dbFile.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	books := bookservice.NewService(st)
	authSvc := auth.NewService(st, bcrypt.MinCost)
	sessions := session.NewManager(st, "test-secret", "booknotes_session", time.Hour)
	return NewRouter(books, authSvc, sessions)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, w.Body.String())
	}
	return env
}

func validNote() map[string]any {
	return map[string]any{
		"title":     "Dune",
		"author":    "Frank Herbert",
		"isbn":      "9780441172719",
		"date_read": "2024-03-05",
		"score":     8.5,
		"summary":   "Desert planet politics",
		"note":      "Re-read the appendices",
	}
}

func TestCreateAndGetNote(t *testing.T) {
	router := testEnv(t)

	w := doJSON(t, router, http.MethodPost, "/notes", validNote(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	env := decodeEnvelope(t, w)
	if env.Status != http.StatusOK {
		t.Errorf("envelope status = %d, want 200", env.Status)
	}
	created, _ := env.Data.(map[string]any)
	if created["cover_url"] != "https://covers.openlibrary.org/b/isbn/9780441172719-M.jpg" {
		t.Errorf("cover_url = %v", created["cover_url"])
	}
	if created["date_read"] != "5-3-2024" {
		t.Errorf("date_read = %v, want 5-3-2024", created["date_read"])
	}

	// Get returns a zero-or-one element array.
	id := int(created["id"].(float64))
	w = doJSON(t, router, http.MethodGet, "/notes/"+itoa(id), nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	env = decodeEnvelope(t, w)
	arr, ok := env.Data.([]any)
	if !ok || len(arr) != 1 {
		t.Fatalf("get data = %v, want one-element array", env.Data)
	}

	// Unknown id is an empty array, not an error.
	w = doJSON(t, router, http.MethodGet, "/notes/999", nil, nil)
	env = decodeEnvelope(t, w)
	if arr, ok := env.Data.([]any); !ok || len(arr) != 0 {
		t.Errorf("get missing data = %v, want empty array", env.Data)
	}
}

func TestListNotes(t *testing.T) {
	router := testEnv(t)

	for i := 0; i < 3; i++ {
		note := validNote()
		note["title"] = "Book " + itoa(i)
		w := doJSON(t, router, http.MethodPost, "/notes", note, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("create %d = %d", i, w.Code)
		}
	}

	w := doJSON(t, router, http.MethodGet, "/notes/list", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	env := decodeEnvelope(t, w)
	arr, ok := env.Data.([]any)
	if !ok || len(arr) != 3 {
		t.Fatalf("list data = %v, want 3 notes", env.Data)
	}
}

func TestCreateMissingFieldOrder(t *testing.T) {
	router := testEnv(t)

	cases := []struct {
		body map[string]any
		want string
	}{
		{map[string]any{"title": "", "author": "A", "isbn": "123"}, "title"},
		{map[string]any{"title": "T", "author": "", "isbn": "123"}, "author"},
		{map[string]any{"title": "T", "author": "A"}, "isbn"},
	}

	for _, tc := range cases {
		w := doJSON(t, router, http.MethodPost, "/notes", tc.body, nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
		env := decodeEnvelope(t, w)
		if !strings.Contains(env.Error, tc.want) {
			t.Errorf("error = %q, want mention of %q", env.Error, tc.want)
		}
	}
}

func TestUpdateNote(t *testing.T) {
	router := testEnv(t)

	w := doJSON(t, router, http.MethodPost, "/notes", validNote(), nil)
	env := decodeEnvelope(t, w)
	created := env.Data.(map[string]any)
	id := created["id"].(float64)

	update := validNote()
	update["id"] = id
	update["title"] = "Dune Messiah"
	update["isbn"] = "9780441172696"
	w = doJSON(t, router, http.MethodPut, "/notes", update, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", w.Code, w.Body.String())
	}
	env = decodeEnvelope(t, w)
	updated := env.Data.(map[string]any)
	if updated["title"] != "Dune Messiah" {
		t.Errorf("title = %v", updated["title"])
	}
	if updated["cover_url"] != "https://covers.openlibrary.org/b/isbn/9780441172696-M.jpg" {
		t.Errorf("cover_url not recomputed: %v", updated["cover_url"])
	}
}

func TestUpdateMissingID(t *testing.T) {
	router := testEnv(t)

	w := doJSON(t, router, http.MethodPut, "/notes", validNote(), nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	env := decodeEnvelope(t, w)
	if !strings.Contains(env.Error, "id") {
		t.Errorf("error = %q", env.Error)
	}
}

func TestUpdateNonexistentNote(t *testing.T) {
	router := testEnv(t)

	update := validNote()
	update["id"] = 999
	w := doJSON(t, router, http.MethodPut, "/notes", update, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	env := decodeEnvelope(t, w)
	if env.Error != "Note doesn't exist" {
		t.Errorf("error = %q, want %q", env.Error, "Note doesn't exist")
	}
}

func TestDeleteNote(t *testing.T) {
	router := testEnv(t)

	w := doJSON(t, router, http.MethodPost, "/notes", validNote(), nil)
	env := decodeEnvelope(t, w)
	id := int(env.Data.(map[string]any)["id"].(float64))

	w = doJSON(t, router, http.MethodDelete, "/notes/"+itoa(id), nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}

	// Deleting a nonexistent note still succeeds.
	w = doJSON(t, router, http.MethodDelete, "/notes/999", nil, nil)
	if w.Code != http.StatusOK {
		t.Errorf("delete missing status = %d, want 200", w.Code)
	}

	// Non-integer id is a 400.
	w = doJSON(t, router, http.MethodDelete, "/notes/abc", nil, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("delete bad id status = %d, want 400", w.Code)
	}
}

func registerUser(t *testing.T, router http.Handler, username, password string) []*http.Cookie {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/users/register",
		map[string]string{"username": username, "password": password}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("register status = %d, body = %s", w.Code, w.Body.String())
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("register set no session cookie")
	}
	return cookies
}

func TestRegisterLoginFlow(t *testing.T) {
	router := testEnv(t)

	cookies := registerUser(t, router, "bob", "hunter2")

	// Fresh registration carries an authenticated session.
	w := doJSON(t, router, http.MethodGet, "/users/login-check", nil, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("login-check after register = %d", w.Code)
	}

	// Login issues a new session.
	w = doJSON(t, router, http.MethodPost, "/users/login",
		map[string]string{"username": "bob", "password": "hunter2"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", w.Code, w.Body.String())
	}
	env := decodeEnvelope(t, w)
	if env.Data != "Login successful" {
		t.Errorf("login data = %v", env.Data)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	router := testEnv(t)

	registerUser(t, router, "bob", "x")

	w := doJSON(t, router, http.MethodPost, "/users/register",
		map[string]string{"username": "bob", "password": "y"}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register = %d, want 400", w.Code)
	}
	env := decodeEnvelope(t, w)
	if env.Error != "User already exists" {
		t.Errorf("error = %q", env.Error)
	}
}

func TestLoginFailuresAre401(t *testing.T) {
	router := testEnv(t)

	registerUser(t, router, "bob", "right")

	// Wrong password.
	w := doJSON(t, router, http.MethodPost, "/users/login",
		map[string]string{"username": "bob", "password": "wrong"}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password = %d, want 401", w.Code)
	}
	if env := decodeEnvelope(t, w); env.Error != "Incorrect password" {
		t.Errorf("error = %q", env.Error)
	}

	// Unknown user.
	w = doJSON(t, router, http.MethodPost, "/users/login",
		map[string]string{"username": "nobody", "password": "x"}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unknown user = %d, want 401", w.Code)
	}
	if env := decodeEnvelope(t, w); env.Error != "User not found" {
		t.Errorf("error = %q", env.Error)
	}
}

func TestLoginCheckWithoutSession(t *testing.T) {
	router := testEnv(t)

	w := doJSON(t, router, http.MethodGet, "/users/login-check", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("login-check = %d, want 401", w.Code)
	}
}

func TestLogout(t *testing.T) {
	router := testEnv(t)

	cookies := registerUser(t, router, "bob", "x")

	w := doJSON(t, router, http.MethodGet, "/users/logout", nil, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("logout = %d", w.Code)
	}

	// The old session no longer authenticates.
	w = doJSON(t, router, http.MethodGet, "/users/login-check", nil, cookies)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("login-check after logout = %d, want 401", w.Code)
	}

	// Logging out again without a live session still succeeds.
	w = doJSON(t, router, http.MethodGet, "/users/logout", nil, cookies)
	if w.Code != http.StatusOK {
		t.Errorf("second logout = %d, want 200", w.Code)
	}
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
