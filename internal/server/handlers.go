package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ironsheep/image-resizer/internal/apperror"
	"github.com/ironsheep/image-resizer/internal/resizer"
)

// errMissingSource is returned when a request has no source parameter.
var errMissingSource = errors.New("missing field `source`")

// === Resize ===

// resizeArgs are the query parameters of /resize.
type resizeArgs struct {
	Source  string
	Width   *float64
	Height  *float64
	Quality *int
	Format  string
	Blur    float64
}

func bindResizeArgs(c echo.Context) (resizeArgs, error) {
	var a resizeArgs
	err := echo.QueryParamsBinder(c).
		String("source", &a.Source).
		CustomFunc("width", optionalFloat("width", &a.Width)).
		CustomFunc("height", optionalFloat("height", &a.Height)).
		CustomFunc("quality", optionalInt("quality", &a.Quality)).
		String("format", &a.Format).
		Float64("blur", &a.Blur).
		BindError()
	if err != nil {
		return a, err
	}
	if !c.QueryParams().Has("source") {
		return a, errMissingSource
	}
	return a, nil
}

// handleResize serves GET /resize.
//
// The response carries the encoded image with Content-Type, Cache-Control,
// Last-Modified and Expires headers, plus "Vary: Accept" when the format was
// negotiated. Every failure is a 400 with a plain-text message.
func (s *Server) handleResize(c echo.Context) error {
	a, err := bindResizeArgs(c)
	if err != nil {
		return s.queryError(c, err)
	}

	res, err := s.resizer.Resize(c.Request().Context(), resizer.Request{
		Source:  a.Source,
		Width:   a.Width,
		Height:  a.Height,
		Quality: a.Quality,
		Format:  a.Format,
		Accept:  c.Request().Header.Get(echo.HeaderAccept),
		Blur:    a.Blur,
	})
	if err != nil {
		return s.pipelineError(c, err)
	}

	h := c.Response().Header()
	res.Cache.Apply(h)
	if res.Vary {
		h.Set(echo.HeaderVary, echo.HeaderAccept)
	}
	return c.Blob(http.StatusOK, res.ContentType, res.Body)
}

// === Info ===

func (s *Server) handleInfo(c echo.Context) error {
	if !c.QueryParams().Has("source") {
		return s.queryError(c, errMissingSource)
	}

	info, err := s.resizer.Inspect(c.Request().Context(), c.QueryParam("source"))
	if err != nil {
		return s.pipelineError(c, err)
	}
	return c.JSON(http.StatusOK, info)
}

// === Health ===

func (s *Server) handlePing(c echo.Context) error {
	return c.String(http.StatusOK, "pong")
}

// === Errors ===

// queryError reports a malformed query string.
func (s *Server) queryError(c echo.Context, err error) error {
	return c.String(http.StatusBadRequest, fmt.Sprintf("Query deserialize error: %s", bindMessage(err)))
}

// pipelineError writes err as a 400 response. The client sees the
// apperror message only; the cause is logged.
func (s *Server) pipelineError(c echo.Context, err error) error {
	kind, ok := apperror.KindOf(err)
	if !ok {
		kind = apperror.InvalidRequest
	}

	cause := errors.Unwrap(err)
	if cause == nil {
		cause = err
	}
	s.logger.WarnContext(c.Request().Context(), "request failed",
		"path", c.Request().URL.Path,
		"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
		"kind", kind.String(),
		"error", cause,
	)
	return c.String(http.StatusBadRequest, kind.Message())
}

func bindMessage(err error) string {
	var be *echo.BindingError
	if errors.As(err, &be) {
		return fmt.Sprintf("invalid value %q for field `%s`", be.Values, be.Field)
	}
	return err.Error()
}

func optionalFloat(field string, dst **float64) func([]string) []error {
	return func(values []string) []error {
		v, err := strconv.ParseFloat(values[0], 64)
		if err != nil {
			return []error{echo.NewBindingError(field, values, "failed to parse float", err)}
		}
		*dst = &v
		return nil
	}
}

func optionalInt(field string, dst **int) func([]string) []error {
	return func(values []string) []error {
		v, err := strconv.Atoi(values[0])
		if err != nil {
			return []error{echo.NewBindingError(field, values, "failed to parse int", err)}
		}
		*dst = &v
		return nil
	}
}
