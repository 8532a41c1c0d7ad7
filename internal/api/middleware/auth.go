package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// HookScope is the scope claim identity provider web-hooks must carry.
const HookScope = "hooks"

// HookSubjectKey holds the token subject after HookAuth accepts a call.
const HookSubjectKey = "hook_subject"

type hookClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// HookAuth guards the web-hook routes with an HS256 bearer token scoped to
// "hooks". With no secret configured every call is refused.
func HookAuth(secret string) echo.MiddlewareFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	key := func(*jwt.Token) (any, error) { return []byte(secret), nil }

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if secret == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "hooks are not configured")
			}

			raw, ok := bearerToken(c.Request())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			var claims hookClaims
			if _, err := parser.ParseWithClaims(raw, &claims, key); err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token").SetInternal(err)
			}
			if claims.Scope != HookScope {
				return echo.NewHTTPError(http.StatusForbidden, "token scope does not allow hooks")
			}

			c.Set(HookSubjectKey, claims.Subject)
			return next(c)
		}
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", false
	}
	return token, true
}
