// Package priority flags search results whose domain belongs to a
// user-configured list of prioritized sites.
//
// Matching is a plain string suffix test on the lowercased host, so a pattern
// "stackoverflow.com" also matches "notstackoverflow.com". Matcher.Strict
// switches to label-boundary matching for callers that want it.
package priority

import (
	"net/url"
	"strings"

	"github.com/hyperifyio/devsearch/internal/search"
)

// Ranked is a search result with its priority flag.
type Ranked struct {
	search.Result
	Prioritized bool
}

// Domain returns the lowercased network location of rawURL with one leading
// "www." removed. Scheme-less input yields "". A URL that url.Parse rejects
// only for its path or query still yields its host.
func Domain(rawURL string) string {
	raw := strings.TrimSpace(rawURL)
	var host string
	if u, err := url.Parse(raw); err == nil {
		host = u.Host
	} else {
		host = netloc(raw)
	}
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}

// netloc cuts the authority out of "scheme://authority/..." or
// "//authority/..." by hand, dropping userinfo. Unbalanced IPv6 brackets
// yield "".
func netloc(raw string) string {
	rest, ok := strings.CutPrefix(raw, "//")
	if !ok {
		scheme, after, found := strings.Cut(raw, "://")
		if !found || scheme == "" || strings.ContainsAny(scheme, "/?#") {
			return ""
		}
		rest = after
	}
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		rest = rest[:i]
	}
	if i := strings.LastIndexByte(rest, '@'); i >= 0 {
		rest = rest[i+1:]
	}
	if strings.Contains(rest, "[") != strings.Contains(rest, "]") {
		return ""
	}
	return rest
}

// PatternDomain extracts the domain of a priority site pattern. Patterns
// without a scheme ("reddit.com/r/golang") fall back to the text before the
// first slash.
func PatternDomain(pattern string) string {
	if d := Domain(pattern); d != "" {
		return d
	}
	p := strings.TrimSpace(pattern)
	if rest, ok := strings.CutPrefix(p, "http://"); ok {
		p = rest
	} else if rest, ok := strings.CutPrefix(p, "https://"); ok {
		p = rest
	}
	if i := strings.IndexByte(p, '/'); i >= 0 {
		p = p[:i]
	}
	return strings.TrimPrefix(strings.ToLower(p), "www.")
}

// IsPrioritized reports whether the domain of rawURL ends with the domain of
// any pattern.
func IsPrioritized(rawURL string, patterns []string) bool {
	return NewMatcher(patterns).Match(rawURL)
}

// Matcher holds pattern domains extracted once at startup. It is read-only
// after construction and safe for concurrent use.
type Matcher struct {
	domains []string
	// Strict requires an exact domain or a proper subdomain instead of a
	// plain suffix.
	Strict bool
}

// NewMatcher extracts the domain of every pattern.
func NewMatcher(patterns []string) *Matcher {
	m := &Matcher{domains: make([]string, 0, len(patterns))}
	for _, p := range patterns {
		m.domains = append(m.domains, PatternDomain(p))
	}
	return m
}

// Len returns the number of patterns.
func (m *Matcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.domains)
}

// Domains returns a copy of the extracted pattern domains in pattern order.
func (m *Matcher) Domains() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.domains...)
}

// Match reports whether rawURL belongs to a prioritized site.
func (m *Matcher) Match(rawURL string) bool {
	if m.Len() == 0 {
		return false
	}
	d := Domain(rawURL)
	for _, sd := range m.domains {
		if m.Strict {
			if d == sd || (sd != "" && strings.HasSuffix(d, "."+sd)) {
				return true
			}
			continue
		}
		if strings.HasSuffix(d, sd) {
			return true
		}
	}
	return false
}

// Rank flags each result, preserving input order.
func (m *Matcher) Rank(results []search.Result) []Ranked {
	out := make([]Ranked, 0, len(results))
	for _, r := range results {
		out = append(out, Ranked{Result: r, Prioritized: m.Match(r.URL)})
	}
	return out
}

// SiteQuery restricts query to the given patterns with site: operators,
// e.g. "site:go.dev OR site:github.com generics".
func SiteQuery(patterns []string, query string) string {
	if len(patterns) == 0 {
		return query
	}
	parts := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, "site:"+p)
		}
	}
	if len(parts) == 0 {
		return query
	}
	return strings.Join(parts, " OR ") + " " + query
}
