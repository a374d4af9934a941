package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"storefront/internal/config"
	"storefront/internal/handler"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

const (
	CSRFCookieName = "csrftoken"
	CSRFHeader     = "X-CSRFToken"
	CSRFFormField  = "csrfmiddlewaretoken"

	shutdownTimeout = 10 * time.Second
)

// New は共通ミドルウェア付きの echo を組み立てる。
func New(cfg config.Config, log *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(log)

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(requestLogger(log))
	e.Use(echomw.CSRFWithConfig(echomw.CSRFConfig{
		// /admin は cookie ではなく Bearer トークンで認証する
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Path(), "/admin/")
		},
		TokenLookup:    "header:" + CSRFHeader + ",form:" + CSRFFormField,
		CookieName:     CSRFCookieName,
		CookiePath:     "/",
		CookieSecure:   cfg.CookieSecure,
		CookieSameSite: http.SameSiteLaxMode,
		// スクリプトが document.cookie から読むので HttpOnly にしない
		CookieHTTPOnly: false,
		ErrorHandler: func(err error, c echo.Context) error {
			return c.JSON(http.StatusForbidden, handler.ErrorResponse{OK: false, Error: "Falha na verificação CSRF."})
		},
	}))

	return e
}

// Handlers は RegisterRoutes に渡すハンドラ一式。nil のものは登録しない。
type Handlers struct {
	Cart         *handler.CartHandler
	Product      *handler.ProductHandler
	AdminProduct *handler.AdminProductHandler
	Health       *handler.HealthHandler
}

// RegisterRoutes はハンドラのルートをまとめて登録する。
func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers) {
	if h.Health != nil {
		h.Health.RegisterRoutes(e)
	}
	if h.Cart != nil {
		h.Cart.RegisterRoutes(e, cfg)
	}
	if h.Product != nil {
		h.Product.RegisterRoutes(e)
	}
	if h.AdminProduct != nil {
		h.AdminProduct.RegisterRoutes(e, cfg)
	}
}

// Start は ctx がキャンセルされるまで待ち受け、その後 graceful shutdown する。
func Start(ctx context.Context, e *echo.Echo, addr string, log *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("http server starting", slog.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutdown requested")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return <-errCh
}

func requestLogger(log *slog.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("err", v.Error.Error()))
				log.LogAttrs(c.Request().Context(), slog.LevelWarn, "request", attrs...)
				return nil
			}
			log.LogAttrs(c.Request().Context(), slog.LevelInfo, "request", attrs...)
			return nil
		},
	})
}

// echo 由来のエラーも {ok:false, error} にそろえる
func errorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		msg := "Erro interno."

		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = http.StatusText(he.Code)
			}
		} else {
			log.Error("unhandled error", slog.Any("err", err))
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, handler.ErrorResponse{OK: false, Error: msg})
		}
		if err != nil {
			log.Error("write error response", slog.Any("err", err))
		}
	}
}
