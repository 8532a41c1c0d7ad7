package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/commuteplanner/planner/internal/api/metrics"
	"github.com/commuteplanner/planner/internal/core/domain"
	"github.com/commuteplanner/planner/internal/core/ports"
)

const (
	userKey      = "user"
	sessionKey   = "session_cookie"
	cacheHit     = "hit"
	cacheMiss    = "miss"
	cacheFailure = "error"
)

// SessionConfig wires the session middleware.
type SessionConfig struct {
	CookieName string
	Identity   ports.IdentityProvider
	Cache      ports.SessionCache
	Log        zerolog.Logger
}

// Session resolves the identity provider session cookie into an account and
// stores it on the context under "user". Requests without a valid session
// continue anonymously; routes that need a user are guarded separately.
func Session(cfg SessionConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(cfg.CookieName)
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			header := cookie.Name + "=" + cookie.Value
			c.Set(sessionKey, header)
			ctx := c.Request().Context()

			account, ok, err := cfg.Cache.Get(ctx, header)
			switch {
			case err != nil:
				metrics.SessionCacheTotal.WithLabelValues(cacheFailure).Inc()
				cfg.Log.Warn().Err(err).Msg("session cache lookup failed")
			case ok:
				metrics.SessionCacheTotal.WithLabelValues(cacheHit).Inc()
				c.Set(userKey, account)
				return next(c)
			default:
				metrics.SessionCacheTotal.WithLabelValues(cacheMiss).Inc()
			}

			account, err = cfg.Identity.ResolveSession(ctx, header)
			if err != nil {
				if !errors.Is(err, domain.ErrSessionNotFound) {
					cfg.Log.Error().Err(err).Msg("session resolution failed")
				}
				return next(c)
			}

			if err := cfg.Cache.Set(ctx, header, account); err != nil {
				cfg.Log.Warn().Err(err).Msg("session cache store failed")
			}
			c.Set(userKey, account)
			return next(c)
		}
	}
}

// CurrentUser returns the account attached by Session, or nil.
func CurrentUser(c echo.Context) *domain.Account {
	account, _ := c.Get(userKey).(*domain.Account)
	return account
}

// SessionCookie returns the Cookie header value Session resolved, if any.
func SessionCookie(c echo.Context) string {
	v, _ := c.Get(sessionKey).(string)
	return v
}

// AuthenticationRequired rejects anonymous requests with 401 and clears the
// stale session cookie.
func AuthenticationRequired(cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if CurrentUser(c) == nil {
				ClearSessionCookie(c, cookieName)
				return echo.NewHTTPError(http.StatusUnauthorized, domain.ErrNotAuthenticated.Error())
			}
			return next(c)
		}
	}
}

// ClearSessionCookie expires the session cookie on the client.
func ClearSessionCookie(c echo.Context, cookieName string) {
	c.SetCookie(&http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
