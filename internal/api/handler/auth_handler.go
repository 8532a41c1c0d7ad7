package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/commuteplanner/planner/internal/api/middleware"
	"github.com/commuteplanner/planner/internal/core/ports"
)

const defaultLandingPath = "/planner"

// AuthConfig carries the identity provider settings the auth routes need.
type AuthConfig struct {
	CookieName string
	// BrowserURL is the identity provider's public URL as seen by browsers.
	BrowserURL string
	AppURL     string
}

type AuthHandler struct {
	identity  ports.IdentityProvider
	sessions  ports.SessionCache
	passwords ports.PasswordService
	cfg       AuthConfig
	log       zerolog.Logger
}

func NewAuthHandler(identity ports.IdentityProvider, sessions ports.SessionCache, passwords ports.PasswordService, cfg AuthConfig, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{identity: identity, sessions: sessions, passwords: passwords, cfg: cfg, log: log}
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// IsLoggedIn returns the current account.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  domain.Account
// @Failure      401
// @Router       /api/auth/is-logged-in [get]
func (h *AuthHandler) IsLoggedIn(c echo.Context) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.NoContent(http.StatusUnauthorized)
	}
	return c.JSON(http.StatusOK, user)
}

// LoginWithLink acknowledges a magic-link login. The identity provider
// completes the flow itself.
//
// @Summary      Login with link
// @Tags         auth
// @Param        link  path  string  true  "Login link"
// @Success      200
// @Router       /api/auth/login-with-link/{link} [get]
func (h *AuthHandler) LoginWithLink(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

// Logout disables the identity provider session and forgets it locally.
//
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	if user := middleware.CurrentUser(c); user != nil && user.SessionID != "" {
		if err := h.identity.RevokeSession(ctx, user.SessionID); err != nil {
			h.log.Warn().Err(err).Str("account", user.Href).Msg("session revoke failed")
		}
	}
	if cookie := middleware.SessionCookie(c); cookie != "" {
		if err := h.sessions.Delete(ctx, cookie); err != nil {
			h.log.Warn().Err(err).Msg("session cache delete failed")
		}
	}

	middleware.ClearSessionCookie(c, h.cfg.CookieName)
	return c.NoContent(http.StatusNoContent)
}

// Login sends the browser to the identity provider's login flow, returning
// to next afterwards.
//
// @Summary      Login page
// @Tags         auth
// @Param        next  query  string  false  "Path to return to"
// @Success      303
// @Router       /login [get]
func (h *AuthHandler) Login(c echo.Context) error {
	returnTo := strings.TrimRight(h.cfg.AppURL, "/") + safeNext(c.QueryParam("next"))
	target := strings.TrimRight(h.cfg.BrowserURL, "/") + "/self-service/login/browser?return_to=" + url.QueryEscape(returnTo)
	return c.Redirect(http.StatusSeeOther, target)
}

// ForgotPassword emails a change-password link. It always answers 202 so
// the endpoint cannot be used to probe for accounts.
//
// @Summary      Forgot password
// @Tags         auth
// @Accept       json
// @Param        body  body  forgotPasswordRequest  true  "Account email"
// @Success      202
// @Failure      400  {object}  map[string]string
// @Router       /api/auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.passwords.RequestReset(c.Request().Context(), req.Email); err != nil {
		h.log.Error().Err(err).Msg("password reset request failed")
	}
	return c.NoContent(http.StatusAccepted)
}

// safeNext keeps redirects on this site: only absolute local paths are
// honoured.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return defaultLandingPath
	}
	return next
}
