// Package handlers implements the HTTP handlers of the monitor's
// operational endpoints.
package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/donaldgifford/marketplace-monitor/internal/store"
)

// StatusResponse is the body of every health response.
type StatusResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// HealthHandler provides health and readiness endpoints.
type HealthHandler struct {
	store store.Store
	ready func() bool
}

// NewHealthHandler creates a HealthHandler. ready reports whether the
// monitor has loaded a configuration; nil means always.
func NewHealthHandler(s store.Store, ready func() bool) *HealthHandler {
	return &HealthHandler{store: s, ready: ready}
}

// Healthz returns 200 if the process is running.
func (*HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// Readyz returns 200 once the monitor is configured and its cache is
// reachable, 503 otherwise.
func (h *HealthHandler) Readyz(c echo.Context) error {
	if h.ready != nil && !h.ready() {
		return c.JSON(http.StatusServiceUnavailable, StatusResponse{Status: "starting"})
	}
	if err := h.store.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, StatusResponse{
			Status: "unavailable",
			Reason: "cache: " + err.Error(),
		})
	}
	return c.JSON(http.StatusOK, StatusResponse{Status: "ready"})
}
