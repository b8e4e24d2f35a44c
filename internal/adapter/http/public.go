package adapthttp

import (
	"fmt"

	"github.com/gobwas/glob"
)

// DefaultPublicPaths are reachable without a token.
var DefaultPublicPaths = []string{
	"/api/auth/register",
	"/api/auth/login",
	"/api/health",
	"/v3/api-docs",
	"/v3/api-docs/**",
	"/private/**",
}

// PublicPaths matches request paths against an allow-list of glob patterns.
// A single '*' stays within one path segment; '**' spans segments.
type PublicPaths struct {
	patterns []glob.Glob
}

// NewPublicPaths compiles patterns.
func NewPublicPaths(patterns ...string) (*PublicPaths, error) {
	pp := &PublicPaths{}
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("compile public path %q: %w", p, err)
		}
		pp.patterns = append(pp.patterns, g)
	}
	return pp, nil
}

// Match reports whether path is public.
func (pp *PublicPaths) Match(path string) bool {
	for _, g := range pp.patterns {
		if g.Match(path) {
			return true
		}
	}
	return false
}
