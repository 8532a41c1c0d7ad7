package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/commuteplanner/planner/internal/api/middleware"
)

// ViewConfig holds the values every page is rendered with.
type ViewConfig struct {
	AppName      string
	SegmentIOKey string
}

// ViewHandler renders the single-page app shells and the change-password
// page. Pages are rendered through the echo.Renderer.
type ViewHandler struct {
	cfg ViewConfig
}

func NewViewHandler(cfg ViewConfig) *ViewHandler {
	return &ViewHandler{cfg: cfg}
}

func (h *ViewHandler) Planner(c echo.Context) error {
	return c.Render(http.StatusOK, "planner", h.page(c, "planner-app", false))
}

func (h *ViewHandler) Manager(c echo.Context) error {
	return c.Render(http.StatusOK, "manager", h.page(c, "manager-app", true))
}

// ChangePassword renders the form bound to the emailed key.
func (h *ViewHandler) ChangePassword(c echo.Context) error {
	data := h.page(c, "change-password-page", false)
	data["change_password_key"] = c.Param("key")
	return c.Render(http.StatusOK, "change-password", data)
}

func (h *ViewHandler) page(c echo.Context, bundle string, withAnalytics bool) map[string]any {
	data := map[string]any{
		"css":  "/build/" + bundle + "/build.css",
		"js":   "/build/" + bundle + "/build.js",
		"NAME": h.cfg.AppName,
	}
	if withAnalytics {
		data["SEGMENTIO_KEY"] = h.cfg.SegmentIOKey
	}
	if user := middleware.CurrentUser(c); user != nil {
		if raw, err := json.Marshal(user); err == nil {
			data["user"] = string(raw)
		}
	}
	return data
}
