// Package server exposes the analysis pipeline over HTTP. Every response
// uses the {success, results, metadata} envelope so callers can share one
// decoder across endpoints.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/pulsecraft/pulsecraft/internal/app"
)

const requestIDHeader = "X-Request-Id"

// Server is the HTTP front end.
type Server struct {
	app  *app.App
	echo *echo.Echo
}

// New creates a new Server with routes and middleware installed.
func New(a *app.App) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(requestID())
	e.Use(requestLogger())

	s := &Server{app: a, echo: e}

	e.GET("/health", s.handleHealth)
	v1 := e.Group("/v1")
	v1.POST("/vision/summarize", s.handleSummarize)
	v1.POST("/posts/analyze", s.handleAnalyze)
	v1.POST("/comments/filter", s.handleFilter)

	return s
}

// Start begins serving on addr and blocks until the server stops.
func (s *Server) Start(addr string) error {
	slog.Info("http server listening", "addr", addr)
	return s.echo.Start(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler returns the underlying HTTP handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// requestID assigns a request id unless the caller supplied one.
func requestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(requestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			c.Set("request_id", id)
			c.Response().Header().Set(requestIDHeader, id)
			return next(c)
		}
	}
}

func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			slog.Info("http request",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", c.Get("request_id"),
			)
			return err
		}
	}
}

// envelope is the shared response shape.
type envelope struct {
	Success  bool           `json:"success"`
	Results  any            `json:"results,omitempty"`
	Error    string         `json:"error,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func ok(c echo.Context, results any, metadata map[string]any) error {
	return c.JSON(http.StatusOK, envelope{Success: true, Results: results, Metadata: metadata})
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, envelope{Success: false, Error: msg})
}
