package aggregate

import (
	"strings"

	"github.com/hyperifyio/devsearch/internal/search"
)

// Dedupe concatenates result groups in order and keeps the first occurrence
// of each distinct URL. Results without a URL are dropped. URL identity is the
// exact string after trimming surrounding whitespace.
func Dedupe(groups ...[]search.Result) []search.Result {
	n := 0
	for _, g := range groups {
		n += len(g)
	}
	seen := make(map[string]struct{}, n)
	out := make([]search.Result, 0, n)
	for _, g := range groups {
		for _, r := range g {
			key := strings.TrimSpace(r.URL)
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			r.URL = key
			out = append(out, r)
		}
	}
	return out
}

// Cap truncates results to at most limit entries. A non-positive limit
// leaves the slice untouched.
func Cap(results []search.Result, limit int) []search.Result {
	if limit <= 0 || len(results) <= limit {
		return results
	}
	return results[:limit]
}
