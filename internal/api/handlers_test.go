package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"

	"github.com/okatkov/mailvault/internal/database"
	"github.com/okatkov/mailvault/pkg/models"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := database.NewWithDriver("sqlite3", dsn)
	if err != nil {
		t.Fatalf("NewWithDriver() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(Deps{Addr: ":0", DB: db, Logger: logger})
}

func doRequest(s *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	s.router.ServeHTTP(w, req)
	return w
}

func TestListEmailsEmpty(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(s, http.MethodGet, "/api/emails", nil)

	if w.Code != http.StatusOK {
		t.Errorf("GET /api/emails status = %d, want %d", w.Code, http.StatusOK)
	}
	// The collection is a bare JSON array, even when empty
	if body := strings.TrimSpace(w.Body.String()); body != "[]" {
		t.Errorf("GET /api/emails body = %q, want %q", body, "[]")
	}
}

func TestCreateEmail(t *testing.T) {
	s := newTestServer(t)

	body := []byte(`{
		"inbox_type": "personal",
		"receiver":   "a@x.com",
		"sender":     "b@x.com",
		"time":       "2024-01-01T00:00:00Z",
		"subject":    "Hi",
		"content":    "Hello",
		"tag":        "work",
		"reply":      "no"
	}`)
	w := doRequest(s, http.MethodPost, "/api/emails", body)

	if w.Code != http.StatusCreated {
		t.Fatalf("POST /api/emails status = %d, want %d", w.Code, http.StatusCreated)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if resp["message"] != "Email uploaded" {
		t.Errorf("response message = %q, want %q", resp["message"], "Email uploaded")
	}
}

func TestCreateThenListRoundTrip(t *testing.T) {
	s := newTestServer(t)

	body := []byte(`{"inbox_type":"personal","receiver":"a@x.com","sender":"b@x.com","time":"2024-01-01T00:00:00Z","subject":"Hi","content":"Hello","tag":"work","reply":"no"}`)
	if w := doRequest(s, http.MethodPost, "/api/emails", body); w.Code != http.StatusCreated {
		t.Fatalf("POST /api/emails status = %d, want %d", w.Code, http.StatusCreated)
	}

	w := doRequest(s, http.MethodGet, "/api/emails", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/emails status = %d, want %d", w.Code, http.StatusOK)
	}

	var emails []models.Email
	if err := json.Unmarshal(w.Body.Bytes(), &emails); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if len(emails) != 1 {
		t.Fatalf("GET /api/emails returned %d records, want 1", len(emails))
	}

	got := emails[0]
	if got.ID == 0 {
		t.Error("stored email has no id")
	}
	if got.Subject != "Hi" || got.Content != "Hello" || got.Time != "2024-01-01T00:00:00Z" {
		t.Errorf("unexpected record: %+v", got)
	}
	// tag and reply must survive the round trip unswapped
	if got.Tag != "work" || got.Reply != "no" {
		t.Errorf("tag/reply = %q/%q, want work/no", got.Tag, got.Reply)
	}
}

func TestCreateEmailMalformedJSON(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(s, http.MethodPost, "/api/emails", []byte(`{not json`))
	if w.Code != http.StatusBadRequest {
		t.Errorf("POST /api/emails status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestCreateEmailMissingFields(t *testing.T) {
	s := newTestServer(t)

	// No field is required
	if w := doRequest(s, http.MethodPost, "/api/emails", []byte(`{"subject":"only subject"}`)); w.Code != http.StatusCreated {
		t.Fatalf("POST /api/emails status = %d, want %d", w.Code, http.StatusCreated)
	}

	w := doRequest(s, http.MethodGet, "/api/emails", nil)
	var emails []models.Email
	if err := json.Unmarshal(w.Body.Bytes(), &emails); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if len(emails) != 1 || emails[0].Subject != "only subject" || emails[0].Sender != "" {
		t.Errorf("unexpected records: %+v", emails)
	}
}

func TestSearchEmails(t *testing.T) {
	s := newTestServer(t)

	seed := []string{
		`{"sender":"alice@x.com","subject":"Weekly report","tag":"work"}`,
		`{"sender":"bob@x.com","subject":"Weekend plans"}`,
		`{"sender":"noreply@bank.com","subject":"Your login code","tag":"otp"}`,
	}
	for _, body := range seed {
		if w := doRequest(s, http.MethodPost, "/api/emails", []byte(body)); w.Code != http.StatusCreated {
			t.Fatalf("POST /api/emails status = %d", w.Code)
		}
	}

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"by tag", "tag=work", 1},
		{"by sender", "sender=bob", 1},
		{"by subject", "subject=Week", 2},
		{"combined", "sender=bank.com&tag=otp", 1},
		{"no match", "tag=personal", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(s, http.MethodGet, "/api/emails/search?"+tt.query, nil)
			if w.Code != http.StatusOK {
				t.Fatalf("GET /api/emails/search status = %d, want %d", w.Code, http.StatusOK)
			}

			var emails []models.Email
			if err := json.Unmarshal(w.Body.Bytes(), &emails); err != nil {
				t.Fatalf("json.Unmarshal() error = %v", err)
			}
			if len(emails) != tt.want {
				t.Errorf("search %q returned %d records, want %d", tt.query, len(emails), tt.want)
			}
		})
	}
}

func TestConcurrentCreateAndList(t *testing.T) {
	s := newTestServer(t)

	const writers = 8
	var wg sync.WaitGroup
	errCh := make(chan string, writers*2)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			body := []byte(fmt.Sprintf(`{"subject":"message %d"}`, i))
			if w := doRequest(s, http.MethodPost, "/api/emails", body); w.Code != http.StatusCreated {
				errCh <- fmt.Sprintf("POST status = %d: %s", w.Code, w.Body.String())
			}
			if w := doRequest(s, http.MethodGet, "/api/emails", nil); w.Code != http.StatusOK {
				errCh <- fmt.Sprintf("GET status = %d: %s", w.Code, w.Body.String())
			}
		}(i)
	}
	wg.Wait()
	close(errCh)

	for msg := range errCh {
		t.Error(msg)
	}

	w := doRequest(s, http.MethodGet, "/api/emails", nil)
	var emails []models.Email
	if err := json.Unmarshal(w.Body.Bytes(), &emails); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if len(emails) != writers {
		t.Errorf("GET /api/emails returned %d records after %d concurrent POSTs", len(emails), writers)
	}
}

func TestGetEmail(t *testing.T) {
	s := newTestServer(t)

	if w := doRequest(s, http.MethodPost, "/api/emails", []byte(`{"subject":"find me"}`)); w.Code != http.StatusCreated {
		t.Fatalf("POST /api/emails status = %d", w.Code)
	}

	w := doRequest(s, http.MethodGet, "/api/emails/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/emails/1 status = %d, want %d", w.Code, http.StatusOK)
	}

	var email models.Email
	if err := json.Unmarshal(w.Body.Bytes(), &email); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if email.Subject != "find me" {
		t.Errorf("subject = %q, want %q", email.Subject, "find me")
	}
}

func TestGetEmailNotFound(t *testing.T) {
	s := newTestServer(t)

	if w := doRequest(s, http.MethodGet, "/api/emails/12345", nil); w.Code != http.StatusNotFound {
		t.Errorf("GET /api/emails/12345 status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestGetEmailInvalidID(t *testing.T) {
	s := newTestServer(t)

	if w := doRequest(s, http.MethodGet, "/api/emails/abc", nil); w.Code != http.StatusBadRequest {
		t.Errorf("GET /api/emails/abc status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	if w := doRequest(s, http.MethodGet, "/health", nil); w.Code != http.StatusOK {
		t.Errorf("GET /health status = %d, want %d", w.Code, http.StatusOK)
	}
}
