package middleware

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/commuteplanner/planner/internal/api/metrics"
	"github.com/commuteplanner/planner/internal/core/domain"
	"github.com/commuteplanner/planner/internal/core/ports"
)

const (
	// DeniedRedirect is where HTML clients land when they lack the groups.
	DeniedRedirect = "/planner"
	loginPath      = "/login"
)

// Authorize enforces group membership. The required set is built once at
// route registration.
//
//   - no user: HTML clients are redirected to the login page with the
//     original URL in next; API clients get 401 "must be logged in".
//   - group lookup failure: 502 with the lookup error.
//   - insufficient groups: HTML clients are redirected to /planner; API
//     clients get 401 "access not allowed".
func Authorize(authz ports.Authorizer, required domain.RequiredGroupSet, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route := c.Path()
			user := CurrentUser(c)
			if user == nil {
				metrics.GateDecisionsTotal.WithLabelValues(route, "unauthenticated").Inc()
				if PrefersHTML(c.Request()) {
					return c.Redirect(http.StatusFound, LoginRedirect(c.Request().RequestURI))
				}
				return echo.NewHTTPError(http.StatusUnauthorized, domain.ErrNotAuthenticated.Error())
			}

			start := time.Now()
			ok, err := authz.Authorize(c.Request().Context(), user, required)
			metrics.GateDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())

			if err != nil {
				metrics.GateDecisionsTotal.WithLabelValues(route, "error").Inc()
				log.Error().Err(err).Str("route", route).Str("account", user.Href).Msg("group lookup failed")
				return echo.NewHTTPError(http.StatusBadGateway, err.Error()).SetInternal(err)
			}
			if !ok {
				metrics.GateDecisionsTotal.WithLabelValues(route, "denied").Inc()
				if PrefersHTML(c.Request()) {
					return c.Redirect(http.StatusFound, DeniedRedirect)
				}
				return echo.NewHTTPError(http.StatusUnauthorized, domain.ErrAccessDenied.Error())
			}

			metrics.GateDecisionsTotal.WithLabelValues(route, "granted").Inc()
			return next(c)
		}
	}
}

// uriComponent undoes the escapes url.QueryEscape applies beyond what
// encodeURIComponent does: spaces become %20 and !'()* stay literal.
var uriComponent = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// LoginRedirect builds the login URL that returns to requestURI afterwards,
// with next encoded the way encodeURIComponent encodes it.
func LoginRedirect(requestURI string) string {
	return loginPath + "?next=" + uriComponent.Replace(url.QueryEscape(requestURI))
}
