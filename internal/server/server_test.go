package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/auth"
	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/config"
	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/domain"
	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/intent"
	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/storage"
)

// parserNow anchors the intent parser in tests: Wednesday, March 12 2025,
// 10:30 UTC.
var parserNow = time.Date(2025, time.March, 12, 10, 30, 0, 0, time.UTC)

type fakeSynth struct {
	clip domain.AudioClip
	err  error
}

func (f *fakeSynth) Synthesize(_ context.Context, _ string) (domain.AudioClip, error) {
	if f.err != nil {
		return domain.AudioClip{}, f.err
	}
	return f.clip, nil
}

func newTestServer(t *testing.T) (*Server, *fakeSynth) {
	t.Helper()

	store, err := storage.Open(filepath.Join(t.TempDir(), "smartmeet.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	cfg := config.Config{}
	cfg.Server.CORSOrigins = []string{"http://localhost:5173"}
	cfg.Server.ShutdownTimeout = time.Second

	synth := &fakeSynth{clip: domain.AudioClip{Data: []byte("greeting-mp3"), MIME: "audio/mpeg"}}

	srv := New(Deps{
		Config: cfg,
		Log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Store:  store,
		Tokens: auth.NewTokenManager("test-secret", time.Hour),
		Parser: intent.NewParserWithClock(func() time.Time { return parserNow }),
		Synth:  synth,
	})
	return srv, synth
}

func doRequest(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, rec.Body.String())
	}
}

func registerUser(t *testing.T, h http.Handler, email string) (string, domain.User) {
	t.Helper()

	rec := doRequest(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Alice",
		"email":    email,
		"password": "hunter2hunter2",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("register failed: status %d body %s", rec.Code, rec.Body.String())
	}

	var resp authResponse
	decodeJSON(t, rec, &resp)
	return resp.Token, resp.User
}

func TestHealth(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	rec := doRequest(t, srv.Router(), http.MethodGet, "/api/health", "", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var body map[string]string
	decodeJSON(t, rec, &body)
	if body["status"] != "ok" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/meetings", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("unexpected allow-origin header: %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("unexpected allow-credentials header: %q", got)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	router := srv.Router()

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/auth/me"},
		{http.MethodGet, "/api/meetings"},
		{http.MethodPost, "/api/voice/process"},
		{http.MethodGet, "/api/calendar/events"},
	}

	for _, p := range paths {
		rec := doRequest(t, router, p.method, p.path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", p.method, p.path, rec.Code)
		}
	}
}
