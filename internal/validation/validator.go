// Package validation rejects malformed, disallowed, or internal-network URLs
// before any network I/O happens. It is the primary defense against
// server-side request forgery: nothing downstream touches the network until
// a URL has passed Validate.
package validation

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/gobwas/glob"
)

// ValidationError describes why a URL was rejected.
type ValidationError struct {
	URL    string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("url rejected: %s (%s)", e.Reason, e.URL)
}

// Validator checks URLs against scheme, private-network, and domain
// allow-list rules. It performs no network access: private-range detection
// works on literal hosts only, so a hostname that resolves to a private
// address is caught by the allow-list, not by DNS inspection.
type Validator struct {
	patterns []string
	globs    []glob.Glob
}

// New compiles the allow-list of domain glob patterns (e.g. "*.nl",
// "shop.example.com"). An invalid pattern is a configuration error and fails
// fast. An empty allow-list permits any public domain.
func New(allowedDomains []string) (*Validator, error) {
	globs := make([]glob.Glob, 0, len(allowedDomains))
	for _, p := range allowedDomains {
		g, err := glob.Compile(strings.ToLower(p))
		if err != nil {
			return nil, fmt.Errorf("invalid allowed domain pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return &Validator{patterns: allowedDomains, globs: globs}, nil
}

// Validate returns nil when the URL may be fetched, or a *ValidationError
// describing the rejection. It is a pure function over the configured
// allow-list and the input.
func (v *Validator) Validate(rawURL string) error {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return &ValidationError{URL: rawURL, Reason: "malformed URL"}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ValidationError{URL: rawURL, Reason: fmt.Sprintf("unsupported scheme %q", u.Scheme)}
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return &ValidationError{URL: rawURL, Reason: "missing hostname"}
	}

	if isInternalHost(host) {
		return &ValidationError{URL: rawURL, Reason: "hostname points to a private or loopback address"}
	}

	if len(v.globs) > 0 && !v.matchesAllowList(host) {
		return &ValidationError{URL: rawURL, Reason: "domain not in allow-list"}
	}

	return nil
}

// AllowedPatterns returns the configured allow-list patterns.
func (v *Validator) AllowedPatterns() []string {
	out := make([]string, len(v.patterns))
	copy(out, v.patterns)
	return out
}

func (v *Validator) matchesAllowList(host string) bool {
	for _, g := range v.globs {
		if g.Match(host) {
			return true
		}
	}
	return false
}

// isInternalHost reports whether the host is a loopback name or a literal IP
// in a private, loopback, link-local, or unspecified range.
func isInternalHost(host string) bool {
	if host == "localhost" || strings.HasSuffix(host, ".localhost") || strings.HasSuffix(host, ".local") {
		return true
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	return ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsUnspecified()
}
