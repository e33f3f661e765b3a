// Package fetch retrieves source images from allowlisted hosts.
//
// The package has two parts: an Allowlist that rejects a source URL before any
// network call, and a Client that performs a single size-capped GET. Both are
// safe for concurrent use and are shared by all requests.
package fetch

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/ironsheep/image-resizer/internal/apperror"
)

// MaxBytes is the hard cap on a fetched body.
const MaxBytes = 20_000_000

const maxRedirects = 5

// Client performs bounded GET requests for source images.
type Client struct {
	http      *http.Client
	userAgent string
	maxBytes  int64
	timeout   time.Duration
	allowlist *Allowlist
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying transport client. The client is
// copied; its CheckRedirect is replaced when WithAllowlist is also given.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		clone := *hc
		c.http = &clone
	}
}

// WithTimeout bounds the whole exchange, body included. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithMaxBytes overrides MaxBytes.
func WithMaxBytes(n int64) Option {
	return func(c *Client) { c.maxBytes = n }
}

// WithAllowlist makes every redirect hop pass the allowlist too.
func WithAllowlist(a *Allowlist) Option {
	return func(c *Client) { c.allowlist = a }
}

// NewClient returns a Client identifying itself with userAgent.
func NewClient(userAgent string, opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Transport: newTransport()},
		userAgent: userAgent,
		maxBytes:  MaxBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.allowlist != nil {
		c.http.CheckRedirect = c.checkRedirect
	}
	return c
}

func (c *Client) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return errors.New("too many redirects")
	}
	if !c.allowlist.Allows(req.URL.Hostname()) {
		return apperror.New(apperror.BlockedHost, fmt.Errorf("redirect to %q not in allowlist", req.URL.Hostname()))
	}
	return nil
}

func newTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
		TLSHandshakeTimeout: 10 * time.Second,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}
}

// Get fetches u and returns its body.
//
// Status mapping:
//   - 200: the body, at most maxBytes long
//   - 404: apperror.NotFound
//   - 403: apperror.InaccessibleImage
//   - anything else, or a transport failure: apperror.InvalidRequest
//
// A body longer than the cap (declared or measured), or one that cannot be
// read completely, yields apperror.InvalidPayload. Exactly one attempt is made.
func (c *Client) Get(ctx context.Context, u *url.URL) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, apperror.New(apperror.InvalidRequest, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperror.New(apperror.InvalidRequest, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return c.readBody(resp)
	case http.StatusNotFound:
		return nil, apperror.New(apperror.NotFound, nil)
	case http.StatusForbidden:
		return nil, apperror.New(apperror.InaccessibleImage, nil)
	default:
		return nil, apperror.New(apperror.InvalidRequest, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
}

func (c *Client) readBody(resp *http.Response) ([]byte, error) {
	if resp.ContentLength > c.maxBytes {
		return nil, apperror.New(apperror.InvalidPayload,
			fmt.Errorf("declared length %d exceeds %d bytes", resp.ContentLength, c.maxBytes))
	}

	// Read one byte past the cap so an oversized body is detected rather than truncated.
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, apperror.New(apperror.InvalidPayload, fmt.Errorf("failed to read body: %w", err))
	}
	if int64(len(data)) > c.maxBytes {
		return nil, apperror.New(apperror.InvalidPayload, fmt.Errorf("body exceeds %d bytes", c.maxBytes))
	}
	return data, nil
}
