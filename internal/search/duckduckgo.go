package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const duckDuckGoHTMLURL = "https://html.duckduckgo.com/html/"

// DuckDuckGo implements Provider by scraping the DuckDuckGo HTML endpoint.
// It needs no API key.
type DuckDuckGo struct {
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
}

// NewDuckDuckGo returns a provider pointed at the public HTML endpoint.
func NewDuckDuckGo(hc *http.Client) *DuckDuckGo {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &DuckDuckGo{BaseURL: duckDuckGoHTMLURL, HTTPClient: hc}
}

func (d *DuckDuckGo) Name() string { return "duckduckgo" }

func (d *DuckDuckGo) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty query")
	}
	base := d.BaseURL
	if base == "" {
		base = duckDuckGoHTMLURL
	}
	form := url.Values{}
	form.Set("q", query)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	ua := d.UserAgent
	if ua == "" {
		ua = "devsearch/1.0"
	}
	req.Header.Set("User-Agent", ua)

	hc := d.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("duckduckgo http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse duckduckgo html: %w", err)
	}
	return parseDuckDuckGo(doc, limit), nil
}

// parseDuckDuckGo walks result blocks in page order. Ads are skipped.
func parseDuckDuckGo(doc *goquery.Document, limit int) []Result {
	var out []Result
	doc.Find("div.result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.HasClass("result--ad") {
			return true
		}
		link := s.Find("a.result__a").First()
		href, _ := link.Attr("href")
		out = append(out, Result{
			Title:   clean(link.Text()),
			URL:     unwrapRedirect(strings.TrimSpace(href)),
			Snippet: clean(s.Find(".result__snippet").First().Text()),
			Source:  "duckduckgo",
		})
		return limit <= 0 || len(out) < limit
	})
	return out
}

// unwrapRedirect resolves DuckDuckGo's /l/?uddg= tracking links to the target.
func unwrapRedirect(raw string) string {
	if raw == "" {
		return raw
	}
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if !strings.HasSuffix(u.Host, "duckduckgo.com") || !strings.HasPrefix(u.Path, "/l/") {
		return raw
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return raw
}
