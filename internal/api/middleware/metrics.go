// Package middleware provides the echo middleware of the operational HTTP
// server.
package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/donaldgifford/marketplace-monitor/internal/metrics"
)

// unmatchedPath labels requests that hit no route, so scanners cannot
// grow the label set.
const unmatchedPath = "unmatched"

// probeGauges maps probe paths to their up/down gauge. Probes and scrapes
// are not counted as requests.
var probeGauges = map[string]prometheus.Gauge{
	"/healthz": metrics.HealthzUp,
	"/readyz":  metrics.ReadyzUp,
	"/metrics": nil,
}

// Metrics returns middleware that records request duration and status by
// route.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// Let echo write the error response so the status is final.
				c.Error(err)
			}

			path := c.Path()
			if gauge, ok := probeGauges[path]; ok {
				if gauge != nil {
					gauge.Set(up(c.Response().Status))
				}
				return nil
			}
			if path == "" || path == "/*" {
				path = unmatchedPath
			}

			labels := []string{c.Request().Method, path, strconv.Itoa(c.Response().Status)}
			metrics.HTTPRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
			metrics.HTTPRequestsTotal.WithLabelValues(labels...).Inc()
			return nil
		}
	}
}

func up(status int) float64 {
	if status >= 200 && status < 300 {
		return 1
	}
	return 0
}
