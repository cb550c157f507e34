package webserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/talkincode/productapi/internal/app"
	"github.com/talkincode/productapi/pkg/metrics"
)

// AppContextKey is the echo context key holding the app.AppContext
const AppContextKey = "appctx"

const healthTimeout = 3 * time.Second

var server *AdminServer

// Response is the envelope of every JSON answer
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

type AdminServer struct {
	root   *echo.Echo
	api    *echo.Group
	appCtx app.AppContext
}

// Init creates the global server; routes are registered afterwards through the Api* helpers
func Init(appCtx app.AppContext) {
	server = NewAdminServer(appCtx)
}

func NewAdminServer(appCtx app.AppContext) *AdminServer {
	s := &AdminServer{appCtx: appCtx}
	s.root = echo.New()
	s.root.HideBanner = true
	s.root.HidePort = true
	s.root.JSONSerializer = jsoniterSerializer{}
	s.root.HTTPErrorHandler = httpErrorHandler

	reg := prometheus.NewRegistry()
	reg.MustRegister(metrics.Collectors()...)

	s.root.Use(middleware.Recover())
	s.root.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	s.root.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "productapi",
		Registerer: reg,
	}))
	s.root.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			zap.L().Info("request",
				zap.String("namespace", "web"),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			)
			return nil
		},
	}))
	s.root.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(AppContextKey, appCtx)
			return next(c)
		}
	})

	s.root.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg}))
	s.root.GET("/healthz", s.health)
	s.api = s.root.Group("/api")
	return s
}

func (s *AdminServer) health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
	defer cancel()
	if err := s.appCtx.Ping(ctx); err != nil {
		zap.L().Warn("health check failed", zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, Response{Message: "Storage unavailable"})
	}
	return c.JSON(http.StatusOK, Response{Success: true, Message: "ok"})
}

// Root returns the echo instance of the global server
func Root() *echo.Echo {
	return server.root
}

// Listen serves HTTP until Shutdown is called
func Listen(addr string) error {
	zap.S().Infof("Server started at http://%s", addr)
	err := server.root.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the global server
func Shutdown(ctx context.Context) error {
	return server.root.Shutdown(ctx)
}

func ApiGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.GET(path, h, m...)
}

func ApiPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.POST(path, h, m...)
}

func ApiPUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.PUT(path, h, m...)
}

func ApiDELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.DELETE(path, h, m...)
}

// httpErrorHandler renders errors that escaped a handler in the common envelope;
// details of server errors are logged, never returned.
func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if code < http.StatusInternalServerError {
			msg = fmt.Sprint(he.Message)
		}
	}
	if code >= http.StatusInternalServerError {
		zap.L().Error("unhandled request error",
			zap.String("namespace", "web"),
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI),
			zap.Error(err),
		)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, Response{Message: msg})
	}
	if err != nil {
		zap.L().Error("write error response", zap.Error(err))
	}
}
