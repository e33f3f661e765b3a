package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/image-resizer/internal/imaging"
	"github.com/ironsheep/image-resizer/internal/metrics"
	"github.com/ironsheep/image-resizer/internal/resizer"
)

// Paths served by the server. Ping and metrics are excluded from request
// timing and request logging.
const (
	PathResize  = "/resize"
	PathInfo    = "/info"
	PathPing    = "/ping"
	PathMetrics = "/metrics"
)

// TimedRoutes returns the metric names of the timed routes, for sinks that
// keep a bounded set of labels.
func TimedRoutes() []string {
	return []string{metrics.MetricName(PathResize), metrics.MetricName(PathInfo)}
}

// shutdownTimeout bounds how long in-flight requests may take to finish once
// the server is asked to stop.
const shutdownTimeout = 10 * time.Second

// Resizer runs the image pipeline for a request.
type Resizer interface {
	Resize(ctx context.Context, req resizer.Request) (*resizer.Result, error)
	Inspect(ctx context.Context, source string) (*imaging.Info, error)
}

// Server is the HTTP front end of the image resizer.
type Server struct {
	echo    *echo.Echo
	resizer Resizer
	logger  *slog.Logger
}

// New creates a Server that runs requests through r, reports request timings
// to sink and exposes gatherer on /metrics.
func New(r Resizer, sink metrics.Sink, gatherer prometheus.Gatherer) *Server {
	s := &Server{
		echo:    echo.New(),
		resizer: r,
		logger:  slog.Default().With("component", "server"),
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(metrics.Timing(sink, metrics.WithExcludedPaths(PathPing, PathMetrics)))
	e.Use(requestLogger(s.logger, PathPing, PathMetrics))
	e.Use(middleware.Recover())

	e.GET(PathResize, s.handleResize)
	e.GET(PathInfo, s.handleInfo)
	e.GET(PathPing, s.handlePing)
	e.GET(PathMetrics, echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return s
}

// Handler returns the server's root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run listens on the given port until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context, port int) error {
	ln, err := net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(port)))
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled. It owns ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.echo.Listener = ln
	s.logger.Info("starting image-resizer server", "address", ln.Addr().String())

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.echo.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		s.logger.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server exited properly")
	return nil
}
