package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
)

const readinessTimeout = 3 * time.Second

// Pinger checks one dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// ProbeHandler serves the liveness and readiness probes.
type ProbeHandler struct {
	deps map[string]Pinger
}

func NewProbeHandler(deps map[string]Pinger) *ProbeHandler {
	return &ProbeHandler{deps: deps}
}

type probeReport struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// Liveness answers GET /health without touching any dependency.
func (h *ProbeHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, probeReport{Status: "ok"})
}

// Readiness answers GET /health/ready. Dependencies are pinged in parallel
// and any failure turns the report into 503 "degraded".
func (h *ProbeHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessTimeout)
	defer cancel()

	var (
		mu     sync.Mutex
		report = probeReport{Status: "ok", Dependencies: make(map[string]string, len(h.deps))}
		g      errgroup.Group
	)
	for name, dep := range h.deps {
		g.Go(func() error {
			state := "ok"
			if err := dep.Ping(ctx); err != nil {
				state = err.Error()
			}
			mu.Lock()
			report.Dependencies[name] = state
			if state != "ok" {
				report.Status = "degraded"
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	code := http.StatusOK
	if report.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, report)
}
