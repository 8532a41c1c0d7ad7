package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/commuteplanner/planner/internal/core/domain"
)

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

type stubPasswordService struct {
	resetFn  func(ctx context.Context, email string) error
	changeFn func(ctx context.Context, key, password string) error
}

func (s *stubPasswordService) RequestReset(ctx context.Context, email string) error {
	return s.resetFn(ctx, email)
}

func (s *stubPasswordService) ChangePassword(ctx context.Context, key, password string) error {
	return s.changeFn(ctx, key, password)
}

type stubIdentity struct {
	revoked []string
}

func (s *stubIdentity) ResolveSession(context.Context, string) (*domain.Account, error) {
	return nil, domain.ErrSessionNotFound
}
func (s *stubIdentity) RevokeSession(_ context.Context, id string) error {
	s.revoked = append(s.revoked, id)
	return nil
}
func (s *stubIdentity) FindAccountByEmail(context.Context, string) (*domain.Account, error) {
	return nil, domain.ErrAccountNotFound
}
func (s *stubIdentity) CreateAccount(context.Context, domain.NewAccountInput) (*domain.Account, error) {
	return nil, nil
}
func (s *stubIdentity) SetPassword(context.Context, string, string) error { return nil }

type stubSessionCache struct {
	deleted []string
}

func (s *stubSessionCache) Get(context.Context, string) (*domain.Account, bool, error) {
	return nil, false, nil
}
func (s *stubSessionCache) Set(context.Context, string, *domain.Account) error { return nil }
func (s *stubSessionCache) Delete(_ context.Context, cookie string) error {
	s.deleted = append(s.deleted, cookie)
	return nil
}

// recordingRenderer captures what a handler asked to render.
type recordingRenderer struct {
	name string
	data map[string]any
}

func (r *recordingRenderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	r.name = name
	r.data, _ = data.(map[string]any)
	_, err := io.WriteString(w, "<html>"+name+"</html>")
	return err
}
