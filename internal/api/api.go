package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/angeloszaimis/healthwatch/internal/apperror"
	"github.com/angeloszaimis/healthwatch/internal/instance"
)

// Directory is the read side of the instance directory.
type Directory interface {
	ListAll(ctx context.Context) ([]*instance.Instance, error)
	Get(ctx context.Context, id string) (*instance.Instance, error)
}

type Server struct {
	directory Directory
	metrics   http.Handler
	logger    *slog.Logger
}

// NewServer creates the query API. metrics may be nil, in which case
// /metrics is not served.
func NewServer(directory Directory, metrics http.Handler, logger *slog.Logger) *Server {
	return &Server{
		directory: directory,
		metrics:   metrics,
		logger:    logger.With(slog.String("component", "api")),
	}
}

// Echo returns the router with every route and middleware installed.
func (s *Server) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	apperror.RegisterErrorHandler(e, s.logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Debug("HTTP request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency))
			return nil
		},
	}))

	e.GET("/healthz", s.Healthz)
	e.GET("/v1/instances", s.GetInstances)
	e.GET("/v1/instances/:id", s.GetInstance)
	if s.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(s.metrics))
	}

	return e
}

// GetInstances (GET /v1/instances) lists every known instance.
func (s *Server) GetInstances(ectx echo.Context) error {
	instances, err := s.directory.ListAll(ectx.Request().Context())
	if err != nil {
		return fmt.Errorf("getInstances failed to list instances, err: %w", err)
	}

	return ectx.JSON(http.StatusOK, toInstancesResponse(instances))
}

// GetInstance (GET /v1/instances/{id}) returns one instance or entity_not_found.
func (s *Server) GetInstance(ectx echo.Context) error {
	id := ectx.Param("id")
	if id == "" {
		return apperror.NewBadParameterError("instance id is required", nil)
	}

	inst, err := s.directory.Get(ectx.Request().Context(), id)
	if err != nil {
		return fmt.Errorf("getInstance failed to get instance %s, err: %w", id, err)
	}

	return ectx.JSON(http.StatusOK, toInstanceResponse(inst))
}

// Healthz (GET /healthz) reports that the watcher itself is serving.
func (s *Server) Healthz(ectx echo.Context) error {
	return ectx.JSON(http.StatusOK, StatusResponse{Status: instance.StatusUp.String()})
}
