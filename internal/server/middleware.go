package server

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// requestLogger logs one line per completed request, skipping the given paths.
func requestLogger(logger *slog.Logger, skip ...string) echo.MiddlewareFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}

	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			_, ok := skipped[c.Request().URL.Path]
			return ok
		},
		LogMethod:       true,
		LogURIPath:      true,
		LogStatus:       true,
		LogLatency:      true,
		LogRequestID:    true,
		LogResponseSize: true,
		LogError:        true,
		HandleError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			rctx := c.Request().Context()
			attrs := []any{
				"method", v.Method,
				"path", v.URIPath,
				"status", v.Status,
				"duration_ms", v.Latency.Milliseconds(),
				"response_size", v.ResponseSize,
				"request_id", v.RequestID,
			}
			switch {
			case v.Error != nil:
				logger.ErrorContext(rctx, "request failed", append(attrs, "error", v.Error.Error())...)
			case v.Status >= 500:
				logger.ErrorContext(rctx, "request completed", attrs...)
			case v.Status >= 400:
				logger.WarnContext(rctx, "request completed", attrs...)
			default:
				logger.InfoContext(rctx, "request completed", attrs...)
			}
			return nil
		},
	})
}
