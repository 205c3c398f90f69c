package session

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/fmuoria/resume-tailor/internal/models"
)

func TestInit_ReadsPersistedToken(t *testing.T) {
	storage := NewMemoryStorage()
	storage.SetString(TokenKey, "abc")

	s := Init(storage)
	token, ok := s.Token()
	if !ok || token != "abc" {
		t.Errorf("Token() = %q, %v; want abc, true", token, ok)
	}
}

func TestSetToken_WritesThrough(t *testing.T) {
	storage := NewMemoryStorage()
	s := Init(storage)

	if _, ok := s.Token(); ok {
		t.Fatal("Expected no token on fresh storage")
	}

	s.SetToken("t1")
	if got := storage.String(TokenKey); got != "t1" {
		t.Errorf("Persisted token = %q, want t1", got)
	}
	if token, _ := s.Token(); token != "t1" {
		t.Errorf("In-memory token = %q, want t1", token)
	}
}

func TestLogout_ClearsPersistedToken(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()
	prefs := app.Preferences()

	s := Init(prefs)
	s.SetToken("secret")
	s.ClearToken()

	if _, ok := s.Token(); ok {
		t.Error("Expected in-memory token to be cleared")
	}
	if _, ok := Init(prefs).Token(); ok {
		t.Error("Expected a subsequent load to find no token")
	}
}

func TestTeardown(t *testing.T) {
	storage := NewMemoryStorage()
	s := Init(storage)
	s.SetToken("keep")

	s.Teardown(false)
	if _, ok := s.Token(); ok {
		t.Error("Expected in-memory token to be dropped")
	}
	if token, _ := Init(storage).Token(); token != "keep" {
		t.Errorf("Expected persisted token to survive teardown, got %q", token)
	}

	s2 := Init(storage)
	s2.Teardown(true)
	if _, ok := Init(storage).Token(); ok {
		t.Error("Expected forgetting teardown to remove persisted token")
	}
}

func TestHTTPClient_AttachesCurrentToken(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	s := Init(NewMemoryStorage())
	client := s.HTTPClient(srv.Client())

	if _, err := client.Get(srv.URL); !errors.Is(err, models.ErrAuth) {
		t.Errorf("Expected ErrAuth without a token, got %v", err)
	}

	s.SetToken("first")
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	resp.Body.Close()
	if got != "Bearer first" {
		t.Errorf("Authorization = %q, want %q", got, "Bearer first")
	}

	s.SetToken("second")
	resp, err = client.Get(srv.URL)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	resp.Body.Close()
	if got != "Bearer second" {
		t.Errorf("Authorization = %q, want %q", got, "Bearer second")
	}
}
