package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/commuteplanner/planner/internal/api/middleware"
	"github.com/commuteplanner/planner/internal/core/ports"
)

type CommuterHandler struct {
	commuters ports.CommuterRepository
}

func NewCommuterHandler(commuters ports.CommuterRepository) *CommuterHandler {
	return &CommuterHandler{commuters: commuters}
}

// Profile returns the signed-in account's commuter profile. The route sits
// behind AuthenticationRequired, so a user is always present.
//
// @Summary      Current commuter profile
// @Tags         commuters
// @Produce      json
// @Success      200  {object}  domain.Commuter
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/commuter [get]
func (h *CommuterHandler) Profile(c echo.Context) error {
	user := middleware.CurrentUser(c)
	commuter, err := h.commuters.FindByAccount(c.Request().Context(), user.Href)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, commuter)
}
