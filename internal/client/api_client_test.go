package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/donlopez/quiz-client/internal/session"
)

func newTestSessions(t *testing.T) *session.Store {
	t.Helper()
	s, err := session.NewStore(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return s
}

func TestDoAttachesBearerAndRequestID(t *testing.T) {
	var gotAuth, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-Id")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	sessions := newTestSessions(t)
	c := NewClient(srv.URL, 5, sessions, UnauthorizedIgnore)

	var out struct {
		OK bool `json:"ok"`
	}
	if err := c.Do(context.Background(), "GET", "/api/health", nil, &out); err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if !out.OK {
		t.Error("response body was not decoded")
	}
	if gotAuth != "" {
		t.Errorf("no credential stored but Authorization = %q", gotAuth)
	}
	if gotRequestID == "" {
		t.Error("X-Request-Id header missing")
	}

	if err := sessions.Set("tok-123"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := c.Do(context.Background(), "GET", "/api/health", nil, nil); err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want Bearer tok-123", gotAuth)
	}
}

func TestDoEncodesBody(t *testing.T) {
	var gotBody map[string]any
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5, newTestSessions(t), UnauthorizedIgnore)
	body := map[string]any{"email": "a@b.c"}
	if err := c.Do(context.Background(), "POST", "/api/auth/login", body, nil); err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if gotBody["email"] != "a@b.c" {
		t.Errorf("body = %v", gotBody)
	}
}

func TestDoNonOKBecomesRequestError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message": "session not found"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5, newTestSessions(t), UnauthorizedIgnore)
	err := c.Do(context.Background(), "GET", "/api/quiz/session/99", nil, nil)
	reqErr, ok := err.(*RequestError)
	if !ok {
		t.Fatalf("want *RequestError, got %T (%v)", err, err)
	}
	if reqErr.Status != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", reqErr.Status)
	}
	if reqErr.Method != "GET" || reqErr.Path != "/api/quiz/session/99" {
		t.Errorf("Method/Path = %s %s", reqErr.Method, reqErr.Path)
	}
	if reqErr.Message() != "session not found" {
		t.Errorf("Message() = %q", reqErr.Message())
	}
}

func TestDoTransportFailure(t *testing.T) {
	// Nothing listens here; the dial must fail.
	c := NewClient("http://127.0.0.1:1", 1, newTestSessions(t), UnauthorizedIgnore)
	err := c.Do(context.Background(), "GET", "/api/health", nil, nil)
	reqErr, ok := err.(*RequestError)
	if !ok {
		t.Fatalf("want *RequestError, got %T (%v)", err, err)
	}
	if reqErr.Status != 0 {
		t.Errorf("transport failure Status = %d, want 0", reqErr.Status)
	}
}

func unauthorizedServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message": "token expired"}`))
	}))
}

func TestUnauthorizedForceLogout(t *testing.T) {
	srv := unauthorizedServer(t)
	defer srv.Close()

	sessions := newTestSessions(t)
	if err := sessions.Set("stale"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	c := NewClient(srv.URL, 5, sessions, UnauthorizedForceLogout)
	hookCalled := false
	c.OnForceLogout = func() { hookCalled = true }

	err := c.Do(context.Background(), "GET", "/api/quiz/session/1", nil, nil)
	reqErr, ok := err.(*RequestError)
	if !ok || reqErr.Status != http.StatusUnauthorized {
		t.Fatalf("want 401 *RequestError, got %v", err)
	}
	if sessions.Token() != "" {
		t.Error("forceLogout policy did not clear the credential")
	}
	if !hookCalled {
		t.Error("OnForceLogout hook was not invoked")
	}
}

func TestUnauthorizedIgnoreKeepsCredential(t *testing.T) {
	srv := unauthorizedServer(t)
	defer srv.Close()

	sessions := newTestSessions(t)
	if err := sessions.Set("stale"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	c := NewClient(srv.URL, 5, sessions, UnauthorizedIgnore)
	if err := c.Do(context.Background(), "GET", "/api/quiz/session/1", nil, nil); err == nil {
		t.Fatal("expected an error")
	}
	if sessions.Token() != "stale" {
		t.Error("ignore policy must leave the credential alone")
	}
}
