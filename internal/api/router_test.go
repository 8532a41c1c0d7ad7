package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/commuteplanner/planner/internal/api/handler"
	"github.com/commuteplanner/planner/internal/core/domain"
)

type fakeIdentity struct {
	accounts map[string]*domain.Account
}

func (f *fakeIdentity) ResolveSession(_ context.Context, cookie string) (*domain.Account, error) {
	if a, ok := f.accounts[cookie]; ok {
		return a, nil
	}
	return nil, domain.ErrSessionNotFound
}
func (f *fakeIdentity) RevokeSession(context.Context, string) error { return nil }
func (f *fakeIdentity) FindAccountByEmail(context.Context, string) (*domain.Account, error) {
	return nil, domain.ErrAccountNotFound
}
func (f *fakeIdentity) CreateAccount(context.Context, domain.NewAccountInput) (*domain.Account, error) {
	return nil, nil
}
func (f *fakeIdentity) SetPassword(context.Context, string, string) error { return nil }

type fakeCommuters map[string]*domain.Commuter

func (f fakeCommuters) Create(_ context.Context, c *domain.Commuter) (*domain.Commuter, error) {
	return c, nil
}
func (f fakeCommuters) FindByAccount(_ context.Context, href string) (*domain.Commuter, error) {
	if c, ok := f[href]; ok {
		return c, nil
	}
	return nil, domain.ErrAccountNotFound
}

type noCache struct{}

func (noCache) Get(context.Context, string) (*domain.Account, bool, error) { return nil, false, nil }
func (noCache) Set(context.Context, string, *domain.Account) error         { return nil }
func (noCache) Delete(context.Context, string) error                       { return nil }

// groupAuthorizer grants by a fixed href → groups table.
type groupAuthorizer map[string][]string

func (g groupAuthorizer) Authorize(_ context.Context, a *domain.Account, required domain.RequiredGroupSet) (bool, error) {
	for _, name := range g[a.Href] {
		if required.Contains(name) {
			return true, nil
		}
	}
	return false, nil
}

type pageRenderer struct{}

func (pageRenderer) Render(w io.Writer, name string, _ interface{}, _ echo.Context) error {
	_, err := io.WriteString(w, "<html>"+name+"</html>")
	return err
}

func newTestRouter() *echo.Echo {
	identity := &fakeIdentity{accounts: map[string]*domain.Account{
		"ory_kratos_session=mgr":  {Href: "k/mgr"},
		"ory_kratos_session=user": {Href: "k/user"},
	}}
	return NewRouter(RouterConfig{
		AppURL:        "http://app",
		AppName:       "Planner",
		SessionCookie: "ory_kratos_session",
		KratosBrowser: "http://id",
		KratosAdmin:   "http://kratos-admin",
		HookSecret:    "secret",
	}, Dependencies{
		Identity:   identity,
		Sessions:   noCache{},
		Authorizer: groupAuthorizer{"k/mgr": {"manager"}, "k/user": {"commuter"}},
		Commuters:  fakeCommuters{"k/user": {Account: "k/user", GivenName: "Bo"}},
		Renderer:   pageRenderer{},
		Health:     map[string]handler.Pinger{},
	}, zerolog.Nop())
}

func serve(e *echo.Echo, method, target, cookie, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: "ory_kratos_session", Value: cookie})
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRouter_ManagerGate(t *testing.T) {
	e := newTestRouter()

	rec := serve(e, http.MethodGet, "/manager", "", "text/html")
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login?next=%2Fmanager" {
		t.Fatalf("anonymous: expected login redirect, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = serve(e, http.MethodGet, "/manager", "user", "text/html")
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/planner" {
		t.Fatalf("commuter: expected planner redirect, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = serve(e, http.MethodGet, "/manager", "mgr", "text/html")
	if rec.Code != http.StatusOK || rec.Body.String() != "<html>manager</html>" {
		t.Fatalf("manager: expected page, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestRouter_AdminAPIDeniesJSONClients(t *testing.T) {
	e := newTestRouter()

	rec := serve(e, http.MethodGet, "/api/emails/tx-1", "mgr", "application/json")
	if rec.Code != http.StatusUnauthorized || !strings.Contains(rec.Body.String(), `"error":"access not allowed"`) {
		t.Fatalf("expected 401 access not allowed, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_PublicRoutes(t *testing.T) {
	e := newTestRouter()

	for _, target := range []string{"/", "/planner", "/health", "/health/ready", "/metrics"} {
		if rec := serve(e, http.MethodGet, target, "", ""); rec.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d", target, rec.Code)
		}
	}
}

func TestRouter_HooksRequireToken(t *testing.T) {
	e := newTestRouter()

	rec := serve(e, http.MethodPost, "/api/hooks/after-login", "", "application/json")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRouter_CommuterProfileRequiresLogin(t *testing.T) {
	e := newTestRouter()

	rec := serve(e, http.MethodGet, "/api/commuter", "", "text/html")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401 even for HTML clients, got %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Set-Cookie"), "ory_kratos_session=;") {
		t.Fatalf("expected the session cookie to be cleared, got %q", rec.Header().Get("Set-Cookie"))
	}

	rec = serve(e, http.MethodGet, "/api/commuter", "user", "application/json")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"givenName":"Bo"`) {
		t.Fatalf("signed in: got %d %s", rec.Code, rec.Body.String())
	}

	rec = serve(e, http.MethodGet, "/api/commuter", "mgr", "application/json")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("no profile: expected 404, got %d", rec.Code)
	}
}
