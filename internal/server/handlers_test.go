package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/image-resizer/internal/apperror"
	"github.com/ironsheep/image-resizer/internal/imaging"
	"github.com/ironsheep/image-resizer/internal/metrics"
	"github.com/ironsheep/image-resizer/internal/resizer"
)

// fakeResizer records the last request and returns canned results.
type fakeResizer struct {
	got    resizer.Request
	result *resizer.Result
	info   *imaging.Info
	err    error
}

func (f *fakeResizer) Resize(_ context.Context, req resizer.Request) (*resizer.Result, error) {
	f.got = req
	return f.result, f.err
}

func (f *fakeResizer) Inspect(_ context.Context, source string) (*imaging.Info, error) {
	f.got = resizer.Request{Source: source}
	return f.info, f.err
}

func serveFake(f *fakeResizer, target string, header http.Header) *httptest.ResponseRecorder {
	s := New(f, metrics.Discard, prometheus.NewRegistry())
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleResize_BindsQuery(t *testing.T) {
	f := &fakeResizer{result: &resizer.Result{
		Body:        []byte("img"),
		ContentType: "image/webp",
		Vary:        true,
		Cache:       resizer.CacheDirective{CacheControl: "max-age=60", LastModified: "a", Expires: "b"},
	}}

	rec := serveFake(f,
		"/resize?source=https%3A%2F%2Fcdn.example.com%2Fa.jpg&width=225.5&height=100&quality=40&format=auto&blur=2",
		http.Header{"Accept": {"image/webp"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, "https://cdn.example.com/a.jpg", f.got.Source)
	require.NotNil(t, f.got.Width)
	assert.Equal(t, 225.5, *f.got.Width)
	require.NotNil(t, f.got.Height)
	assert.Equal(t, 100.0, *f.got.Height)
	require.NotNil(t, f.got.Quality)
	assert.Equal(t, 40, *f.got.Quality)
	assert.Equal(t, "auto", f.got.Format)
	assert.Equal(t, "image/webp", f.got.Accept)
	assert.Equal(t, 2.0, f.got.Blur)

	assert.Equal(t, "img", rec.Body.String())
	assert.Equal(t, "image/webp", rec.Header().Get("Content-Type"))
	assert.Equal(t, "max-age=60", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "a", rec.Header().Get("Last-Modified"))
	assert.Equal(t, "b", rec.Header().Get("Expires"))
	assert.Equal(t, "Accept", rec.Header().Get("Vary"))
}

func TestHandleResize_OptionalParamsStayNil(t *testing.T) {
	f := &fakeResizer{result: &resizer.Result{ContentType: "image/png"}}

	rec := serveFake(f, "/resize?source=https%3A%2F%2Fcdn.example.com%2Fa.png", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Nil(t, f.got.Width)
	assert.Nil(t, f.got.Height)
	assert.Nil(t, f.got.Quality)
	assert.Empty(t, f.got.Format)
	assert.Zero(t, f.got.Blur)
}

func TestHandleResize_MalformedQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		field string
	}{
		{"width", "source=x&width=wide", "width"},
		{"height", "source=x&height=", "height"},
		{"quality", "source=x&quality=high", "quality"},
		{"blur", "source=x&blur=lots", "blur"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeResizer{}
			rec := serveFake(f, "/resize?"+tt.query, nil)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := rec.Body.String()
			assert.True(t, strings.HasPrefix(body, "Query deserialize error: "), body)
			assert.Contains(t, body, "`"+tt.field+"`")
			assert.Empty(t, f.got.Source, "resizer must not be called")
		})
	}
}

func TestHandleResize_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"invalid payload", apperror.New(apperror.InvalidPayload, errors.New("too big")), "Invalid Image Payload"},
		{"invalid image", apperror.New(apperror.InvalidImage, nil), "Invalid Image"},
		{"failed write", apperror.New(apperror.FailedWrite, errors.New("disk")), "Failed To Write Image"},
		{"unclassified", context.Canceled, "Invalid Request For Image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveFake(&fakeResizer{err: tt.err}, "/resize?source=x", nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.want, rec.Body.String())
			assert.NotContains(t, rec.Body.String(), "too big")
		})
	}
}

func TestHandleInfo(t *testing.T) {
	f := &fakeResizer{info: &imaging.Info{Width: 10, Height: 20, Format: imaging.GIF}}

	rec := serveFake(f, "/info?source=https%3A%2F%2Fcdn.example.com%2Fa.gif", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://cdn.example.com/a.gif", f.got.Source)
	assert.Contains(t, rec.Body.String(), `"width":10`)
	assert.Contains(t, rec.Body.String(), `"format":"gif"`)
}

func TestHandleInfo_MissingSource(t *testing.T) {
	rec := serveFake(&fakeResizer{}, "/info", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Query deserialize error: missing field `source`", rec.Body.String())
}

func TestUnknownRoute(t *testing.T) {
	rec := serveFake(&fakeResizer{}, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
