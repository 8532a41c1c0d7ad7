package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/commuteplanner/planner/internal/core/domain"
	"github.com/commuteplanner/planner/internal/core/ports"
)

// HooksHandler receives the identity provider's registration and login
// web-hooks.
type HooksHandler struct {
	registration ports.RegistrationService
	adminURL     string
}

func NewHooksHandler(registration ports.RegistrationService, adminURL string) *HooksHandler {
	return &HooksHandler{registration: registration, adminURL: adminURL}
}

type hookName struct {
	First string `json:"first"`
	Last  string `json:"last"`
}

type hookTraits struct {
	Email string   `json:"email" validate:"required,email"`
	Name  hookName `json:"name"`
}

type hookIdentity struct {
	ID             string         `json:"id" validate:"required"`
	Traits         hookTraits     `json:"traits"`
	MetadataPublic map[string]any `json:"metadata_public"`
}

type hookRequest struct {
	Identity hookIdentity `json:"identity"`
}

func (h *HooksHandler) account(req hookRequest) *domain.Account {
	return &domain.Account{
		Href:       domain.AccountHref(h.adminURL, req.Identity.ID),
		ID:         req.Identity.ID,
		Email:      req.Identity.Traits.Email,
		GivenName:  req.Identity.Traits.Name.First,
		Surname:    req.Identity.Traits.Name.Last,
		CustomData: req.Identity.MetadataPublic,
	}
}

// AfterRegistration creates the commuter for a new account.
//
// @Summary      After-registration hook
// @Tags         hooks
// @Accept       json
// @Produce      json
// @Param        body  body      hookRequest  true  "Registered identity"
// @Success      200   {object}  domain.Commuter
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/hooks/after-registration [post]
func (h *HooksHandler) AfterRegistration(c echo.Context) error {
	var req hookRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	commuter, err := h.registration.AfterRegistration(c.Request().Context(), h.account(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, commuter)
}

// AfterLogin records the login with analytics.
//
// @Summary      After-login hook
// @Tags         hooks
// @Accept       json
// @Param        body  body  hookRequest  true  "Logged-in identity"
// @Success      204
// @Router       /api/hooks/after-login [post]
func (h *HooksHandler) AfterLogin(c echo.Context) error {
	var req hookRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.registration.AfterLogin(c.Request().Context(), h.account(req)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
