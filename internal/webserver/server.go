// Package webserver hosts the console on echo.
package webserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/boldserve/adminconsole/config"
)

// Registrar mounts routes on the server.
type Registrar interface {
	Register(e *echo.Echo)
}

type Server struct {
	addr string
	root *echo.Echo
}

func New(cfg *config.AppConfig, routes ...Registrar) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.System.Debug
	e.Use(middleware.Recover())
	e.Use(requestLogger())
	for _, r := range routes {
		r.Register(e)
	}
	return &Server{
		addr: fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port),
		root: e,
	}
}

func (s *Server) Echo() *echo.Echo {
	return s.root
}

// Start blocks serving until Shutdown is called.
func (s *Server) Start() error {
	zap.S().Infof("admin console listening on %s", s.addr)
	if err := s.root.Start(s.addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.root.Shutdown(ctx)
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				zap.L().Warn("console request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			zap.L().Debug("console request", fields...)
			return nil
		},
	})
}
