package ingest

import (
	"context"
	"net/http"
	"time"

	"github.com/chris-alexander-pop/event-aggregator/pkg/broker"
	apperrors "github.com/chris-alexander-pop/event-aggregator/pkg/errors"
	"github.com/chris-alexander-pop/event-aggregator/pkg/event"
	"github.com/chris-alexander-pop/event-aggregator/pkg/logger"
	"github.com/chris-alexander-pop/event-aggregator/pkg/store"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
)

const serviceName = "event-aggregator"

// defaultPopTimeout bounds the consumer's blocking dequeue so shutdown is
// observed promptly.
const defaultPopTimeout = time.Second

// Service owns the HTTP surface and the consumer loop.
type Service struct {
	queue      broker.Queue
	store      store.Store
	echo       *echo.Echo
	start      time.Time
	popTimeout time.Duration
}

// Option customizes a Service.
type Option func(*Service)

// WithPopTimeout overrides the consumer's dequeue timeout. Tests use short
// values to converge quickly.
func WithPopTimeout(d time.Duration) Option {
	return func(s *Service) { s.popTimeout = d }
}

// New builds the service and its router. The start instant for the uptime
// stat is captured here, exactly once.
func New(queue broker.Queue, st store.Store, opts ...Option) *Service {
	s := &Service{
		queue:      queue,
		store:      st,
		start:      time.Now(),
		popTimeout: defaultPopTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler
	e.Use(middleware.Recover())
	e.Use(otelecho.Middleware(serviceName))

	e.POST("/publish", s.publish)
	e.POST("/publish/batch", s.publishBatch)
	e.GET("/events", s.listEvents)
	e.GET("/stats", s.stats)
	e.GET("/healthz", s.healthz)

	s.echo = e
	return s
}

// Router exposes the underlying handler for tests and embedding.
func (s *Service) Router() http.Handler {
	return s.echo
}

// Start begins serving HTTP. Blocks until the listener fails or Shutdown is
// called; a clean shutdown returns nil.
func (s *Service) Start(addr string) error {
	err := s.echo.Start(addr)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops accepting new HTTP work and drains in-flight requests.
func (s *Service) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// errorResponse is the wire shape for all ingress failures.
type errorResponse struct {
	Code    string             `json:"code"`
	Message string             `json:"message"`
	Fields  []event.FieldError `json:"fields,omitempty"`
}

func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var resp errorResponse
	status := http.StatusInternalServerError

	var app *apperrors.AppError
	switch {
	case apperrors.As(err, &app):
		resp.Code = app.Code
		resp.Message = app.Message
		var schema *event.SchemaError
		if apperrors.As(err, &schema) {
			resp.Fields = schema.Fields
		}
		switch app.Code {
		case event.CodeSchemaRejected:
			status = http.StatusUnprocessableEntity
		case broker.CodeUnavailable, store.CodeStoreFailed:
			status = http.StatusInternalServerError
		default:
			status = apperrors.HTTPStatus(app.Code)
		}
	default:
		if he, ok := err.(*echo.HTTPError); ok {
			status = he.Code
			resp.Code = apperrors.CodeInternal
			resp.Message = http.StatusText(he.Code)
		} else {
			resp.Code = apperrors.CodeInternal
			resp.Message = "internal error"
		}
	}

	if status >= http.StatusInternalServerError {
		logger.L().ErrorContext(c.Request().Context(), "request failed",
			"method", c.Request().Method, "path", c.Path(), "error", err)
	}

	if writeErr := c.JSON(status, resp); writeErr != nil {
		logger.L().ErrorContext(c.Request().Context(), "failed to write error response", "error", writeErr)
	}
}
