package search

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
)

// FileProvider serves search results from a local JSON file for offline use.
// The file is an array of {"title": "...", "url": "...", "snippet": "..."}
// objects. Every word of the query must appear in the title, URL or snippet.
type FileProvider struct {
	Path string
}

func (f *FileProvider) Name() string { return "file" }

func (f *FileProvider) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if strings.TrimSpace(f.Path) == "" {
		return nil, errors.New("file provider path is empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, err
	}
	var raw []Result
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	words := strings.Fields(strings.ToLower(query))
	out := make([]Result, 0, len(raw))
	for _, r := range raw {
		hay := strings.ToLower(r.Title + " " + r.URL + " " + r.Snippet)
		if !containsAll(hay, words) {
			continue
		}
		r.Title = clean(r.Title)
		r.URL = strings.TrimSpace(r.URL)
		r.Snippet = clean(r.Snippet)
		r.Source = f.Name()
		out = append(out, r)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func containsAll(s string, words []string) bool {
	for _, w := range words {
		// site: operators are a provider feature; the fixture ignores them
		if strings.HasPrefix(w, "site:") || w == "or" {
			continue
		}
		if !strings.Contains(s, w) {
			return false
		}
	}
	return true
}
