package auth

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// Default route lists. Patterns use path-to-regexp conventions: ":name"
// matches one segment, "(.*)" any suffix and "(?!...)" a negative lookahead.
var (
	DefaultPublicRoutes = []string{
		"/",
		"/events/:id",
		"/api/webhook/clerk",
		"/api/webhook/stripe",
		"/api/uploadthing",
	}

	// Routes authenticated by their own means (webhook signatures, upload
	// tokens); session auth never inspects them.
	DefaultIgnoredRoutes = []string{
		"/api/webhook/clerk",
		"/api/webhook/stripe",
		"/api/uploadthing",
	}

	// Everything except framework internals and files with an extension,
	// plus every API route and the event detail page.
	DefaultMatcher = []string{
		`/((?!_next|.*\..*|favicon.ico).*)`,
		`/api/(.*)`,
		`/events/:id`,
	}
)

var paramSegment = regexp.MustCompile(`(^|/):[A-Za-z_][A-Za-z0-9_]*`)

// routePattern is a compiled path pattern. RE2 has no lookaheads, so a
// "(?!x)" group is split into an exclusion checked at the same position.
type routePattern struct {
	raw     string
	include *regexp.Regexp
	exclude *regexp.Regexp
}

func compileRoute(pattern string) (routePattern, error) {
	expr := paramSegment.ReplaceAllString(pattern, `${1}[^/]+`)
	rp := routePattern{raw: pattern}

	if start := strings.Index(expr, "(?!"); start >= 0 {
		end := closingParen(expr, start)
		if end < 0 {
			return routePattern{}, fmt.Errorf("route %q: unbalanced lookahead", pattern)
		}
		prefix, lookahead, rest := expr[:start], expr[start+3:end], expr[end+1:]
		if strings.Contains(rest, "(?!") {
			return routePattern{}, fmt.Errorf("route %q: only one lookahead is supported", pattern)
		}

		unclosed := strings.Count(prefix, "(") - strings.Count(prefix, ")")
		exclude, err := regexp.Compile("^" + prefix + "(?:" + lookahead + ")" + strings.Repeat(")", unclosed))
		if err != nil {
			return routePattern{}, fmt.Errorf("route %q: %w", pattern, err)
		}
		rp.exclude = exclude
		expr = prefix + rest
	}

	include, err := regexp.Compile("^" + expr + "$")
	if err != nil {
		return routePattern{}, fmt.Errorf("route %q: %w", pattern, err)
	}
	rp.include = include
	return rp, nil
}

func closingParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func (p routePattern) match(path string) bool {
	if !p.include.MatchString(path) {
		return false
	}
	return p.exclude == nil || !p.exclude.MatchString(path)
}

func compileRoutes(patterns []string) ([]routePattern, error) {
	out := make([]routePattern, 0, len(patterns))
	for _, p := range patterns {
		rp, err := compileRoute(p)
		if err != nil {
			return nil, err
		}
		out = append(out, rp)
	}
	return out, nil
}

func matchAny(patterns []routePattern, path string) bool {
	for _, p := range patterns {
		if p.match(path) {
			return true
		}
	}
	return false
}

// Gate decides, per request path, whether session auth applies.
type Gate struct {
	PublicRoutes  []string
	IgnoredRoutes []string
	Matcher       []string

	public  []routePattern
	ignored []routePattern
	matcher []routePattern
}

// NewGate compiles the three pattern lists.
func NewGate(publicRoutes, ignoredRoutes, matcher []string) (*Gate, error) {
	g := &Gate{
		PublicRoutes:  publicRoutes,
		IgnoredRoutes: ignoredRoutes,
		Matcher:       matcher,
	}

	var err error
	if g.public, err = compileRoutes(publicRoutes); err != nil {
		return nil, fmt.Errorf("public routes: %w", err)
	}
	if g.ignored, err = compileRoutes(ignoredRoutes); err != nil {
		return nil, fmt.Errorf("ignored routes: %w", err)
	}
	if g.matcher, err = compileRoutes(matcher); err != nil {
		return nil, fmt.Errorf("matcher: %w", err)
	}
	return g, nil
}

// DefaultGate returns the gate built from the package defaults.
func DefaultGate() *Gate {
	g, err := NewGate(DefaultPublicRoutes, DefaultIgnoredRoutes, DefaultMatcher)
	if err != nil {
		panic(err)
	}
	return g
}

// Matches reports whether the gate applies to path at all.
func (g *Gate) Matches(path string) bool {
	return matchAny(g.matcher, path)
}

// IsPublic reports whether path can be served without an authenticated caller.
func (g *Gate) IsPublic(path string) bool {
	return matchAny(g.public, path)
}

// IsIgnored reports whether auth must not inspect path.
func (g *Gate) IsIgnored(path string) bool {
	return matchAny(g.ignored, path)
}

// Middleware applies the gate in front of verifier. Unmatched and ignored
// paths pass untouched, public paths get identity attached when a valid token
// is present, and everything else requires one.
func (g *Gate) Middleware(verifier Verifier) func(http.Handler) http.Handler {
	requireAuth := Middleware(verifier)
	optional := Optional(verifier)

	return func(next http.Handler) http.Handler {
		required := requireAuth(next)
		public := optional(next)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			switch {
			case !g.Matches(path), g.IsIgnored(path):
				next.ServeHTTP(w, r)
			case g.IsPublic(path):
				public.ServeHTTP(w, r)
			default:
				required.ServeHTTP(w, r)
			}
		})
	}
}
