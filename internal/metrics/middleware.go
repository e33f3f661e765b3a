package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

type timingConfig struct {
	excluded map[string]struct{}
	now      func() time.Time
}

// Option configures the Timing middleware.
type Option func(*timingConfig)

// WithExcludedPaths skips requests whose URL path is exactly one of paths.
func WithExcludedPaths(paths ...string) Option {
	return func(c *timingConfig) {
		for _, p := range paths {
			c.excluded[p] = struct{}{}
		}
	}
}

// withClock replaces time.Now; used by tests.
func withClock(now func() time.Time) Option {
	return func(c *timingConfig) {
		c.now = now
	}
}

// Timing returns middleware that reports exactly one timing to sink for every
// request not excluded. The metric name is the URL path without its leading
// slash and with "/" replaced by ".", so /resize becomes "resize".
//
// The status is the written response status; when the handler returned an
// error before writing, it is the code of an *echo.HTTPError or "error".
func Timing(sink Sink, opts ...Option) echo.MiddlewareFunc {
	cfg := &timingConfig{
		excluded: make(map[string]struct{}),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if _, skip := cfg.excluded[path]; skip {
				return next(c)
			}

			start := cfg.now()
			err := next(c)
			sink.Timing(MetricName(path), cfg.now().Sub(start), responseStatus(c, err))
			return err
		}
	}
}

// MetricName converts a URL path to a dotted metric name.
func MetricName(path string) string {
	return strings.ReplaceAll(strings.TrimPrefix(path, "/"), "/", ".")
}

func responseStatus(c echo.Context, err error) string {
	if err == nil || c.Response().Committed {
		status := c.Response().Status
		if status == 0 {
			status = http.StatusOK
		}
		return strconv.Itoa(status)
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return strconv.Itoa(he.Code)
	}
	return "error"
}
