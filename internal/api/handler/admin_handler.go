package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/commuteplanner/planner/internal/core/ports"
)

// AdminHandler serves the administrator API: group management and email
// delivery records.
type AdminHandler struct {
	directory ports.DirectoryService
	mailer    ports.Mailer
}

func NewAdminHandler(directory ports.DirectoryService, mailer ports.Mailer) *AdminHandler {
	return &AdminHandler{directory: directory, mailer: mailer}
}

type createGroupsRequest struct {
	Names []string `json:"names" validate:"required,min=1,dive,required,max=64"`
}

// CreateGroups creates the named groups; existing names are reported, not
// rejected.
//
// @Summary      Create groups
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      createGroupsRequest  true  "Group names"
// @Success      200   {array}   domain.GroupCreation
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/groups [post]
func (h *AdminHandler) CreateGroups(c echo.Context) error {
	var req createGroupsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	results, err := h.directory.CreateGroups(c.Request().Context(), req.Names)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, results)
}

// EmailInfo returns the provider's record of a transmission.
//
// @Summary      Email transmission
// @Tags         admin
// @Produce      json
// @Param        id   path      string  true  "Transmission id"
// @Success      200  {object}  domain.TransmissionInfo
// @Failure      502  {object}  map[string]string
// @Router       /api/emails/{id} [get]
func (h *AdminHandler) EmailInfo(c echo.Context) error {
	info, err := h.mailer.Info(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, info)
}
