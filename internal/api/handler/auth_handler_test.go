package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/rs/zerolog"

	"github.com/commuteplanner/planner/internal/core/domain"
)

var testAuthConfig = AuthConfig{
	CookieName: "ory_kratos_session",
	BrowserURL: "https://id.example.com",
	AppURL:     "https://app.example.com",
}

func newTestAuthHandler(identity *stubIdentity, cache *stubSessionCache, passwords *stubPasswordService) *AuthHandler {
	return NewAuthHandler(identity, cache, passwords, testAuthConfig, zerolog.Nop())
}

func TestAuthHandler_IsLoggedIn(t *testing.T) {
	e := newTestEcho()
	handler := newTestAuthHandler(&stubIdentity{}, &stubSessionCache{}, &stubPasswordService{})

	c, rec := jsonRequest(e, http.MethodGet, "/api/auth/is-logged-in", "")
	c.Set("user", &domain.Account{Href: "k/1", Email: "ana@example.com"})

	if err := handler.IsLoggedIn(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["email"] != "ana@example.com" {
		t.Fatalf("unexpected user payload: %+v", resp)
	}
}

func TestAuthHandler_IsLoggedIn_Anonymous(t *testing.T) {
	e := newTestEcho()
	handler := newTestAuthHandler(&stubIdentity{}, &stubSessionCache{}, &stubPasswordService{})

	c, rec := jsonRequest(e, http.MethodGet, "/api/auth/is-logged-in", "")
	_ = handler.IsLoggedIn(c)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthHandler_LoginWithLink(t *testing.T) {
	e := newTestEcho()
	handler := newTestAuthHandler(&stubIdentity{}, &stubSessionCache{}, &stubPasswordService{})

	c, rec := jsonRequest(e, http.MethodGet, "/api/auth/login-with-link/abc", "")
	_ = handler.LoginWithLink(c)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	e := newTestEcho()
	identity := &stubIdentity{}
	cache := &stubSessionCache{}
	handler := newTestAuthHandler(identity, cache, &stubPasswordService{})

	c, rec := jsonRequest(e, http.MethodPost, "/api/auth/logout", "")
	c.Set("user", &domain.Account{Href: "k/1", SessionID: "sess-1"})
	c.Set("session_cookie", "ory_kratos_session=abc")

	if err := handler.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if len(identity.revoked) != 1 || identity.revoked[0] != "sess-1" {
		t.Fatalf("expected session to be revoked, got %v", identity.revoked)
	}
	if len(cache.deleted) != 1 || cache.deleted[0] != "ory_kratos_session=abc" {
		t.Fatalf("expected cached session to be dropped, got %v", cache.deleted)
	}
}

func TestAuthHandler_Login_RedirectsToBrowserFlow(t *testing.T) {
	e := newTestEcho()
	handler := newTestAuthHandler(&stubIdentity{}, &stubSessionCache{}, &stubPasswordService{})

	c, rec := jsonRequest(e, http.MethodGet, "/login?next=%2Fmanager", "")
	_ = handler.Login(c)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("invalid location: %v", err)
	}
	if loc.Host != "id.example.com" || loc.Path != "/self-service/login/browser" {
		t.Fatalf("unexpected target %s", loc)
	}
	if got := loc.Query().Get("return_to"); got != "https://app.example.com/manager" {
		t.Fatalf("unexpected return_to %q", got)
	}
}

func TestAuthHandler_Login_RejectsOffsiteNext(t *testing.T) {
	e := newTestEcho()
	handler := newTestAuthHandler(&stubIdentity{}, &stubSessionCache{}, &stubPasswordService{})

	c, rec := jsonRequest(e, http.MethodGet, "/login?next=%2F%2Fevil.example.com", "")
	_ = handler.Login(c)

	loc, _ := url.Parse(rec.Header().Get("Location"))
	if got := loc.Query().Get("return_to"); got != "https://app.example.com/planner" {
		t.Fatalf("expected fallback to /planner, got %q", got)
	}
}

func TestAuthHandler_ForgotPassword_AlwaysAccepted(t *testing.T) {
	e := newTestEcho()
	var asked string
	passwords := &stubPasswordService{
		resetFn: func(ctx context.Context, email string) error {
			asked = email
			return errors.New("queue full")
		},
	}
	handler := newTestAuthHandler(&stubIdentity{}, &stubSessionCache{}, passwords)

	c, rec := jsonRequest(e, http.MethodPost, "/api/auth/forgot-password", `{"email":"ana@example.com"}`)
	if err := handler.ForgotPassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if asked != "ana@example.com" {
		t.Fatalf("service not called with email, got %q", asked)
	}
}

func TestAuthHandler_ForgotPassword_InvalidEmail(t *testing.T) {
	e := newTestEcho()
	passwords := &stubPasswordService{
		resetFn: func(ctx context.Context, email string) error {
			t.Fatalf("should not be called")
			return nil
		},
	}
	handler := newTestAuthHandler(&stubIdentity{}, &stubSessionCache{}, passwords)

	c, rec := jsonRequest(e, http.MethodPost, "/api/auth/forgot-password", `{"email":"nope"}`)
	if err := handler.ForgotPassword(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
