package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"DocumentTonality/internal/usecase"
)

// ServerDeps wires the HTTP surface to the pipeline and observability.
type ServerDeps struct {
	Processor    usecase.Processor
	Registry     *prometheus.Registry
	HealthChecks []HealthCheck
	Logger       *slog.Logger
}

// Server exposes the submission endpoint, health probes and metrics.
type Server struct {
	echo         *echo.Echo
	addr         string
	processor    usecase.Processor
	registry     *prometheus.Registry
	validate     *validator.Validate
	healthChecks []HealthCheck
	logger       *slog.Logger
	startTime    time.Time
}

// NewServer builds the echo instance and registers all routes.
func NewServer(addr string, deps ServerDeps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	srv := &Server{
		echo:         e,
		addr:         addr,
		processor:    deps.Processor,
		registry:     deps.Registry,
		validate:     newValidator(),
		healthChecks: deps.HealthChecks,
		logger:       logger,
		startTime:    time.Now(),
	}
	srv.registerRoutes()
	return srv
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.addr)
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
