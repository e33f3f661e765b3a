package resizer

import (
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"
)

// CacheDirective is the set of caching headers for one response.
type CacheDirective struct {
	// MaxAge is the lifetime in seconds.
	MaxAge int

	CacheControl string
	LastModified string
	Expires      string
}

// CacheHeaders composes caching headers for resized images.
//
// The lifetime is ExpirationHours*3600 seconds plus a uniformly random jitter in
// [0, JitterSeconds], drawn independently on every call so that entries cached
// at the same time do not expire together. Now and Rand default to time.Now
// and rand.IntN; both must be safe for concurrent use.
type CacheHeaders struct {
	ExpirationHours int
	JitterSeconds   int

	Now  func() time.Time
	Rand func(n int) int
}

// Compose returns the headers for a response served now.
func (c CacheHeaders) Compose() CacheDirective {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	intn := rand.IntN
	if c.Rand != nil {
		intn = c.Rand
	}

	expire := c.ExpirationHours * 3600
	if c.JitterSeconds > 0 {
		expire += intn(c.JitterSeconds + 1)
	}

	t := now().UTC()
	return CacheDirective{
		MaxAge:       expire,
		CacheControl: "max-age=" + strconv.Itoa(expire),
		LastModified: t.Format(http.TimeFormat),
		Expires:      t.Add(time.Duration(expire) * time.Second).Format(http.TimeFormat),
	}
}

// Apply writes the directive onto h.
func (d CacheDirective) Apply(h http.Header) {
	h.Set("Cache-Control", d.CacheControl)
	h.Set("Last-Modified", d.LastModified)
	h.Set("Expires", d.Expires)
}
