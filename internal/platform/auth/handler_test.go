package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type fakeRegistry struct {
	opened []string
	closed []string
}

func (f *fakeRegistry) Open(ctx context.Context, id, username string) error {
	f.opened = append(f.opened, id)
	return nil
}

func (f *fakeRegistry) Close(ctx context.Context, id string) error {
	f.closed = append(f.closed, id)
	return nil
}

func TestLoginHandlerSuccess(t *testing.T) {
	m := newTestManager(t)
	registry := &fakeRegistry{}
	h := NewHandler(m, registry, zerolog.Nop())

	e := echo.New()
	body := `{"username":"bidan","password":"rahasia123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("Login handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp Token
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.AccessToken == "" {
		t.Error("expected access token in response")
	}
	if len(registry.opened) != 1 {
		t.Errorf("expected one session opened, got %d", len(registry.opened))
	}
}

func TestLoginHandlerBadCredentials(t *testing.T) {
	m := newTestManager(t)
	h := NewHandler(m, &fakeRegistry{}, zerolog.Nop())

	e := echo.New()
	body := `{"username":"bidan","password":"salah"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Login(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestLogoutHandlerClosesSession(t *testing.T) {
	m := newTestManager(t)
	registry := &fakeRegistry{}
	h := NewHandler(m, registry, zerolog.Nop())

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("session_id", "sess-1")

	if err := h.Logout(c); err != nil {
		t.Fatalf("Logout handler: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if len(registry.closed) != 1 || registry.closed[0] != "sess-1" {
		t.Errorf("expected session sess-1 closed, got %v", registry.closed)
	}
}
