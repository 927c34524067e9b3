// Package guard decides which navigations the embedded surface may follow.
package guard

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/embedview/playerbridge/internal/logging"
	"go.uber.org/zap"
)

// CanonicalHost is the canonical player domain. Always allowed.
const CanonicalHost = "kinescope.io"

// Decision is the outcome of one navigation attempt.
type Decision int

const (
	Allow Decision = iota
	Prevent
)

// String returns the decision name.
func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "prevent"
}

// Guard evaluates navigation destinations against the allowed host set:
// the canonical player domain plus the configured base host. The set is
// fixed for the lifetime of one player instance.
type Guard struct {
	allowed []string
	log     *logging.Logger
}

// New builds a guard from the configured base URL. A malformed base URL is
// a setup-time programming error and is returned to the caller.
func New(baseURL string, log *logging.Logger) (*Guard, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid player base URL %q: %w", baseURL, err)
	}

	allowed := []string{CanonicalHost}
	if host := parsed.Host; host != "" && host != CanonicalHost {
		allowed = append(allowed, host)
	}

	return &Guard{
		allowed: allowed,
		log:     log.Component("guard"),
	}, nil
}

// Decide evaluates one navigation attempt. The check is substring
// containment against each allowed host, not strict host equality. Every
// decision is logged; there is no retry or escalation.
func (g *Guard) Decide(destination string) Decision {
	for _, host := range g.allowed {
		if strings.Contains(destination, host) {
			g.log.Debug("navigation allowed",
				zap.String("destination", destination),
				zap.String("matched_host", host))
			return Allow
		}
	}

	g.log.Warn("navigation blocked",
		zap.String("destination", destination),
		zap.Strings("allowed_hosts", g.allowed))
	return Prevent
}

// Allows is a convenience adapter for surface navigation policies.
func (g *Guard) Allows(destination string) bool {
	return g.Decide(destination) == Allow
}

// AllowedHosts returns a copy of the allowed host set.
func (g *Guard) AllowedHosts() []string {
	out := make([]string, len(g.allowed))
	copy(out, g.allowed)
	return out
}
