// Package resizer runs the fetch, decode, resize and encode pipeline behind the
// /resize and /info endpoints.
package resizer

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"runtime"

	"golang.org/x/sync/semaphore"

	"github.com/ironsheep/image-resizer/internal/apperror"
	"github.com/ironsheep/image-resizer/internal/imaging"
)

//go:generate mockgen -source=service.go -destination=mock_service_test.go -package=resizer

// Validator checks a raw source URL against the host allowlist.
type Validator interface {
	Validate(raw string) (*url.URL, error)
}

// Fetcher downloads the bytes of a validated source URL.
type Fetcher interface {
	Get(ctx context.Context, u *url.URL) ([]byte, error)
}

// infoColors is the number of dominant colors reported by Inspect.
const infoColors = 5

// Request is one resize request.
type Request struct {
	Source string

	// Width and Height are optional target bounds in pixels; fractional
	// values are rounded to the nearest pixel.
	Width  *float64
	Height *float64

	// Quality overrides the configured default quality when set.
	Quality *int

	// Format is an output format name, "auto" or empty.
	Format string

	// Accept is the client's Accept header, consulted when Format is "auto".
	Accept string

	// Blur is an optional Gaussian blur radius within 0 and
	// imaging.MaxBlurRadius; 0 disables blurring.
	Blur float64
}

// Result is an encoded image ready to be written to the client.
type Result struct {
	Body        []byte
	Format      imaging.Format
	ContentType string
	Dimensions  imaging.Dimensions

	// Vary is set when the format was negotiated from the Accept header.
	Vary bool

	Cache CacheDirective
}

// Options configures a Service.
type Options struct {
	// Workers bounds the number of images decoded, resized and encoded at
	// once. Defaults to runtime.NumCPU().
	Workers int

	// DefaultQuality is used when a request does not set one.
	DefaultQuality int

	Cache CacheHeaders
}

// Service executes resize and inspect requests. It is safe for concurrent use.
type Service struct {
	validator      Validator
	fetcher        Fetcher
	workers        *semaphore.Weighted
	defaultQuality int
	cache          CacheHeaders
	logger         *slog.Logger
}

// New creates a Service.
func New(v Validator, f Fetcher, opts Options) *Service {
	workers := opts.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Service{
		validator:      v,
		fetcher:        f,
		workers:        semaphore.NewWeighted(int64(workers)),
		defaultQuality: opts.DefaultQuality,
		cache:          opts.Cache,
		logger:         slog.Default().With("component", "resizer"),
	}
}

// Resize fetches req.Source and returns it resized and re-encoded.
//
// Every failure is an *apperror.Error; the first failing stage aborts the
// request.
func (s *Service) Resize(ctx context.Context, req Request) (*Result, error) {
	width, height, err := targetBounds(req.Width, req.Height)
	if err != nil {
		return nil, err
	}
	if err := imaging.ValidateBlur(req.Blur); err != nil {
		return nil, err
	}

	data, err := s.fetch(ctx, req.Source)
	if err != nil {
		return nil, err
	}

	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.workers.Release(1)

	img, err := imaging.Decode(data)
	if err != nil {
		return nil, err
	}

	intrinsic := img.Dimensions()
	target := imaging.Fit(intrinsic, width, height)
	if target.Equal(intrinsic) {
		s.logger.Debug("resize skipped", "source", req.Source, "width", target.Width, "height", target.Height)
	} else if err := img.Resize(target, img.ResizeVariant()); err != nil {
		return nil, err
	}

	if err := img.Blur(req.Blur); err != nil {
		return nil, err
	}

	source, err := img.DetectedFormat()
	if err != nil {
		return nil, err
	}
	format, vary, err := Negotiate(req.Format, req.Accept, source)
	if err != nil {
		return nil, err
	}

	quality := s.defaultQuality
	if req.Quality != nil {
		quality = *req.Quality
	}

	img.StripMetadata()
	if err := img.SetQuality(quality); err != nil {
		return nil, err
	}

	body, err := img.Encode(format)
	if err != nil {
		return nil, err
	}

	return &Result{
		Body:        body,
		Format:      format,
		ContentType: format.MimeType(),
		Dimensions:  img.Dimensions(),
		Vary:        vary,
		Cache:       s.cache.Compose(),
	}, nil
}

// Inspect fetches source and describes it without modifying it.
func (s *Service) Inspect(ctx context.Context, source string) (*imaging.Info, error) {
	data, err := s.fetch(ctx, source)
	if err != nil {
		return nil, err
	}

	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.workers.Release(1)

	img, err := imaging.Decode(data)
	if err != nil {
		return nil, err
	}
	return imaging.Inspect(img, data, infoColors)
}

// fetch validates source against the allowlist and downloads it.
func (s *Service) fetch(ctx context.Context, source string) ([]byte, error) {
	u, err := s.validator.Validate(source)
	if err != nil {
		return nil, err
	}
	return s.fetcher.Get(ctx, u)
}

func (s *Service) acquire(ctx context.Context) error {
	if err := s.workers.Acquire(ctx, 1); err != nil {
		return apperror.New(apperror.InvalidRequest, fmt.Errorf("waiting for a worker: %w", err))
	}
	return nil
}

// targetBounds rounds the requested bounds to whole pixels. A bound below one
// pixel, or one that is not a finite size, is rejected.
func targetBounds(width, height *float64) (*int, *int, error) {
	w, err := imaging.RoundDimension(width)
	if err != nil {
		return nil, nil, apperror.New(apperror.InvalidRequest, fmt.Errorf("width: %w", err))
	}
	h, err := imaging.RoundDimension(height)
	if err != nil {
		return nil, nil, apperror.New(apperror.InvalidRequest, fmt.Errorf("height: %w", err))
	}
	for _, v := range []*int{w, h} {
		if v != nil && *v < 1 {
			return nil, nil, apperror.New(apperror.InvalidRequest, fmt.Errorf("target dimension %d is below one pixel", *v))
		}
	}
	return w, h, nil
}
