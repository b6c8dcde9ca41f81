package server

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cdi-pixel/etl-gcp-function-tmabrasil/internal/ingest"
	"github.com/cdi-pixel/etl-gcp-function-tmabrasil/internal/store"
)

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	d := ingest.New(st, ingest.DirBlobSource{Root: filepath.Join(dir, "buckets")}, "")
	return New(d), st
}

func post(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status want=200 got=%d", w.Code)
	}
}

func TestHandleEvent_BadPayload(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	if w := post(t, s, "{not json"); w.Code != http.StatusBadRequest {
		t.Fatalf("status want=400 got=%d", w.Code)
	}
}

func TestHandleEvent_MissingFieldsSettles(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	// no bucket/name is a routing skip, not an error: 200 so the
	// collaborator does not redeliver
	if w := post(t, s, `{"size": 10}`); w.Code != http.StatusOK {
		t.Fatalf("status want=200 got=%d", w.Code)
	}
}

func TestHandleEvent_InfrastructureFailureAsksForRedelivery(t *testing.T) {
	t.Parallel()
	s, st := newTestServer(t)

	w := post(t, s, `{"bucket": "uploads", "name": "sumiu.xlsx", "size": 5}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status want=500 got=%d", w.Code)
	}

	rec, err := st.LastStatus("sumiu.xlsx")
	if err != nil {
		t.Fatalf("LastStatus: %v", err)
	}
	if rec.Status != store.StatusError {
		t.Fatalf("status want=ERROR got=%q", rec.Status)
	}
}
