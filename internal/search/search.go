package search

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Result represents a single search hit from any provider.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Source  string `json:"-"` // provider name for observability
}

// Provider is a minimal interface for search providers.
type Provider interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
	Name() string
}

// Options selects and configures a provider.
type Options struct {
	Name       string // duckduckgo, searxng or file
	SearxURL   string
	SearxKey   string
	UserAgent  string
	File       string
	HTTPClient *http.Client
}

// New builds the provider named by opts.Name. An empty name selects DuckDuckGo.
func New(opts Options) (Provider, error) {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	switch strings.ToLower(strings.TrimSpace(opts.Name)) {
	case "", "duckduckgo", "ddg":
		d := NewDuckDuckGo(hc)
		d.UserAgent = opts.UserAgent
		return d, nil
	case "searxng", "searx":
		if opts.SearxURL == "" {
			return nil, fmt.Errorf("searxng provider requires a base url")
		}
		return &SearxNG{BaseURL: opts.SearxURL, APIKey: opts.SearxKey, HTTPClient: hc, UserAgent: opts.UserAgent}, nil
	case "file":
		return &FileProvider{Path: opts.File}, nil
	default:
		return nil, fmt.Errorf("unknown search provider %q", opts.Name)
	}
}

// clean trims and NFC-normalizes provider text.
func clean(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
