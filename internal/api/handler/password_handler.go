package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/commuteplanner/planner/internal/core/domain"
	"github.com/commuteplanner/planner/internal/core/ports"
)

type PasswordHandler struct {
	passwords ports.PasswordService
	log       zerolog.Logger
}

func NewPasswordHandler(passwords ports.PasswordService, log zerolog.Logger) *PasswordHandler {
	return &PasswordHandler{passwords: passwords, log: log}
}

type changePasswordRequest struct {
	Key      string `json:"change_password_key" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type changePasswordResponse struct {
	OK bool `json:"ok"`
}

// ChangePassword sets a new password using an emailed key. Failures answer
// with a plain-text reason the page shows to the user.
//
// @Summary      Change password
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      changePasswordRequest  true  "Key and new password"
// @Success      200   {object}  changePasswordResponse
// @Failure      400   {string}  string
// @Failure      404   {string}  string
// @Router       /users/change-password [post]
func (h *PasswordHandler) ChangePassword(c echo.Context) error {
	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.String(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}

	err := h.passwords.ChangePassword(c.Request().Context(), req.Key, req.Password)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, changePasswordResponse{OK: true})
	case errors.Is(err, domain.ErrResetKeyInvalid), errors.Is(err, domain.ErrAccountNotFound):
		return c.String(http.StatusNotFound, domain.ErrResetKeyInvalid.Error())
	case errors.Is(err, domain.ErrIdentityRejected):
		return c.String(http.StatusBadRequest, err.Error())
	default:
		h.log.Error().Err(err).Msg("password change failed")
		return c.String(http.StatusInternalServerError, "password change failed")
	}
}
