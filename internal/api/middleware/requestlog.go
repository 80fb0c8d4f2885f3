package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestLog logs one line per request, tagged with the X-Request-ID of
// the caller or a fresh one. Probes and scrapes log at debug level, server
// errors at warn.
func RequestLog(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			id := req.Header.Get(requestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			c.Set(requestIDKey, id)
			c.Response().Header().Set(requestIDHeader, id)

			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok && !c.Response().Committed {
				status = he.Code
			}

			attrs := []any{
				"method", req.Method,
				"path", req.URL.Path,
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", id,
			}
			level := slog.LevelInfo
			switch _, probe := probeGauges[c.Path()]; {
			case status >= http.StatusInternalServerError:
				level = slog.LevelWarn
			case probe:
				level = slog.LevelDebug
			}
			if err != nil {
				attrs = append(attrs, "error", err)
			}
			log.Log(req.Context(), level, "request", attrs...)
			return err
		}
	}
}
