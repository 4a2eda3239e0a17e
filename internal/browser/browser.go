// Package browser renders result pages into readable Markdown for the page
// viewer and hands URLs to the system browser.
package browser

import (
	"context"
	"fmt"
	"io"
	"strings"

	sysbrowser "github.com/pkg/browser"

	"github.com/hyperifyio/devsearch/internal/extract"
	"github.com/hyperifyio/devsearch/internal/fetch"
)

// Page is a rendered result page.
type Page struct {
	URL       string
	Title     string
	Markdown  string
	FromCache bool
}

// Renderer turns a URL into a Page.
type Renderer interface {
	Render(ctx context.Context, url string) (Page, error)
	Name() string
}

// HTTPRenderer fetches raw HTML and extracts the readable part. Pages that
// build their content with JavaScript come out mostly empty; use
// ChromeRenderer for those.
type HTTPRenderer struct {
	Client *fetch.Client
}

func (r *HTTPRenderer) Name() string { return "http" }

func (r *HTTPRenderer) Render(ctx context.Context, url string) (Page, error) {
	c := r.Client
	if c == nil {
		c = &fetch.Client{}
	}
	p, err := c.Get(ctx, url)
	if err != nil {
		return Page{}, fmt.Errorf("fetch %s: %w", url, err)
	}
	doc := extract.FromHTML(p.Body, url)
	return page(url, doc, p.FromCache), nil
}

func page(url string, doc extract.Document, fromCache bool) Page {
	title := doc.Title
	if strings.TrimSpace(title) == "" {
		title = url
	}
	return Page{URL: url, Title: title, Markdown: doc.Markdown, FromCache: fromCache}
}

var openURL = sysbrowser.OpenURL

func init() {
	// the launcher's own output would land on top of the TUI
	sysbrowser.Stdout = io.Discard
	sysbrowser.Stderr = io.Discard
}

// OpenExternal opens url in the user's default browser.
func OpenExternal(url string) error {
	if err := openURL(url); err != nil {
		return fmt.Errorf("open %s in system browser: %w", url, err)
	}
	return nil
}
