package fetch

import (
	"fmt"
	"net/url"

	"github.com/ironsheep/image-resizer/internal/apperror"
)

// Allowlist is the exact set of hostnames images may be fetched from.
//
// Matching is an exact string comparison against url.Hostname(): no case
// folding and no subdomain matching. An Allowlist is immutable and safe for
// concurrent use.
type Allowlist struct {
	hosts map[string]struct{}
}

// NewAllowlist builds an Allowlist from hosts.
func NewAllowlist(hosts []string) *Allowlist {
	set := make(map[string]struct{}, len(hosts))
	for _, h := range hosts {
		set[h] = struct{}{}
	}
	return &Allowlist{hosts: set}
}

// Allows reports whether host is a member of the list.
func (a *Allowlist) Allows(host string) bool {
	_, ok := a.hosts[host]
	return ok
}

// Len returns the number of allowed hosts.
func (a *Allowlist) Len() int {
	return len(a.hosts)
}

// Validate parses raw and checks its host against the list.
//
// Errors:
//   - apperror.InvalidRequest if raw is not an absolute URL with a host
//   - apperror.BlockedHost if the host is not allowed
func (a *Allowlist) Validate(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, apperror.New(apperror.InvalidRequest, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, apperror.New(apperror.InvalidRequest, fmt.Errorf("source %q is not an absolute URL", raw))
	}

	if !a.Allows(u.Hostname()) {
		return nil, apperror.New(apperror.BlockedHost, fmt.Errorf("host %q not in allowlist", u.Hostname()))
	}
	return u, nil
}
