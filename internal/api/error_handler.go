package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/commuteplanner/planner/internal/core/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

// errorStatus maps a domain sentinel to a response. With detail set the
// wrapped message reaches the client, otherwise only the sentinel's text.
type errorStatus struct {
	sentinel error
	code     int
	detail   bool
}

var domainStatuses = []errorStatus{
	{domain.ErrNotAuthenticated, http.StatusUnauthorized, false},
	{domain.ErrSessionNotFound, http.StatusUnauthorized, false},
	{domain.ErrAccessDenied, http.StatusUnauthorized, false},
	{domain.ErrGroupLookup, http.StatusBadGateway, true},
	{domain.ErrGroupNotFound, http.StatusNotFound, true},
	{domain.ErrAccountNotFound, http.StatusNotFound, false},
	{domain.ErrIdentityUnavailable, http.StatusBadGateway, true},
	{domain.ErrIdentityRejected, http.StatusBadRequest, true},
	{domain.ErrAccountExists, http.StatusConflict, false},
	{domain.ErrProviderDispatch, http.StatusBadGateway, true},
	{domain.ErrIncompleteEmail, http.StatusBadRequest, true},
	{domain.ErrInvalidTemplateName, http.StatusBadRequest, true},
	{domain.ErrPasswordMismatch, http.StatusBadRequest, true},
	{domain.ErrResetKeyInvalid, http.StatusNotFound, false},
}

// NewHTTPErrorHandler renders every error as {"error": "..."}. Upstream
// failures and anything unknown are logged; unknown errors never leak their
// text to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := statusFor(err)
		if code >= http.StatusInternalServerError {
			cause := err
			var he *echo.HTTPError
			if errors.As(err, &he) {
				cause = he.Internal
			}
			if cause != nil {
				log.Error().Err(cause).
					Int("status", code).
					Str("method", c.Request().Method).
					Str("path", c.Path()).
					Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
					Msg("request failed")
			}
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func statusFor(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprint(he.Message)
	}
	for _, s := range domainStatuses {
		if !errors.Is(err, s.sentinel) {
			continue
		}
		if s.detail {
			return s.code, err.Error()
		}
		return s.code, s.sentinel.Error()
	}
	return http.StatusInternalServerError, "internal server error"
}
