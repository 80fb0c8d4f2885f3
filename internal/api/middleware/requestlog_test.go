package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func serveLogged(t *testing.T, route string, req *http.Request, h echo.HandlerFunc) (*httptest.ResponseRecorder, string) {
	t.Helper()

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	e := echo.New()
	e.Use(RequestLog(log))
	e.Add(req.Method, route, h)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, buf.String()
}

func TestRequestLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     func() *http.Request
		status  int
		handler echo.HandlerFunc
		want    []string
		wantID  string
	}{
		{
			name: "generates a request id",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodGet, "/status", http.NoBody)
			},
			handler: func(c echo.Context) error { return c.NoContent(http.StatusOK) },
			want:    []string{"level=INFO", "method=GET", "path=/status", "status=200", "duration_ms=", "request_id="},
		},
		{
			name: "keeps the caller's request id",
			req: func() *http.Request {
				r := httptest.NewRequest(http.MethodPost, "/status", http.NoBody)
				r.Header.Set(requestIDHeader, "cycle-42")
				return r
			},
			handler: func(c echo.Context) error { return c.NoContent(http.StatusAccepted) },
			want:    []string{"status=202", "request_id=cycle-42"},
			wantID:  "cycle-42",
		},
		{
			name: "server errors log at warn with the error",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodGet, "/status", http.NoBody)
			},
			handler: func(_ echo.Context) error {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "cache down")
			},
			want: []string{"level=WARN", "status=503", "cache down"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec, out := serveLogged(t, "/status", tt.req(), tt.handler)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}

			id := rec.Header().Get(requestIDHeader)
			assert.NotEmpty(t, id)
			if tt.wantID != "" {
				assert.Equal(t, tt.wantID, id)
			}
		})
	}
}

func TestRequestLog_ProbesLogAtDebug(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
	rec, out := serveLogged(t, "/healthz", req, func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	assert.Empty(t, out, "probe requests stay below the info level")
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}
