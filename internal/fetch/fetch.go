package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hyperifyio/devsearch/internal/cache"
)

// DefaultMaxBodyBytes caps how much of a page is read.
const DefaultMaxBodyBytes = 8 << 20

// Client fetches HTML pages for the page viewer with timeouts, bounded
// redirects and optional on-disk revalidation.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// MaxAttempts includes the initial attempt. Minimum 1.
	MaxAttempts int
	// PerRequestTimeout bounds each request. Zero means no extra bound.
	PerRequestTimeout time.Duration
	// Cache, when set, stores bodies and revalidates with conditional headers.
	Cache *cache.PageCache
	// RedirectMaxHops caps redirect following. Zero means 5.
	RedirectMaxHops int
	// MaxBodyBytes caps the body size. Zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64
}

// StatusError reports a non-success HTTP status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string { return fmt.Sprintf("unexpected status: %d", e.Code) }

// ErrUnsupportedContent is returned for responses that are not HTML.
var ErrUnsupportedContent = errors.New("unsupported content type")

// Page is a fetched document.
type Page struct {
	URL         string // final URL after redirects
	ContentType string
	Body        []byte
	FromCache   bool
}

// Get fetches rawURL. Server errors and timeouts are retried up to MaxAttempts.
func (c *Client) Get(ctx context.Context, rawURL string) (Page, error) {
	var etag, lastMod string
	if c.Cache != nil {
		// revalidate only when a body is there to fall back on
		if meta, err := c.Cache.LoadMeta(rawURL); err == nil {
			if _, err := c.Cache.LoadBody(rawURL); err == nil {
				etag, lastMod = meta.ETag, meta.LastModified
			}
		}
	}
	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		p, status, err := c.tryOnce(ctx, rawURL, etag, lastMod)
		if err == nil {
			if status == http.StatusNotModified {
				if c.Cache == nil {
					return Page{}, &StatusError{Code: status}
				}
				body, cerr := c.Cache.LoadBody(rawURL)
				if cerr != nil {
					return Page{}, fmt.Errorf("not modified but cached body unavailable: %w", cerr)
				}
				p.Body, p.FromCache = body, true
				if meta, merr := c.Cache.LoadMeta(rawURL); merr == nil && p.ContentType == "" {
					p.ContentType = meta.ContentType
				}
				return p.Page, nil
			}
			if c.Cache != nil {
				_ = c.Cache.Save(cache.PageEntry{
					URL:          rawURL,
					ContentType:  p.ContentType,
					ETag:         p.etag,
					LastModified: p.lastModified,
				}, p.Body)
			}
			return p.Page, nil
		}
		lastErr = err
		if !isTransient(err) || ctx.Err() != nil {
			break
		}
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return Page{}, ctx.Err()
			case <-time.After(time.Duration(i+1) * 200 * time.Millisecond):
			}
		}
	}
	return Page{}, lastErr
}

type response struct {
	Page
	etag         string
	lastModified string
}

func (c *Client) tryOnce(ctx context.Context, rawURL, etag, lastMod string) (response, int, error) {
	if c.PerRequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.PerRequestTimeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return response{}, 0, fmt.Errorf("new request: %w", err)
	}
	if !isHTTPScheme(req.URL) {
		return response{}, 0, fmt.Errorf("unsupported URL scheme: %q", req.URL.Scheme)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastMod != "" {
		req.Header.Set("If-Modified-Since", lastMod)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return response{}, 0, err
	}
	defer resp.Body.Close()

	out := response{
		Page:         Page{URL: resp.Request.URL.String(), ContentType: resp.Header.Get("Content-Type")},
		etag:         resp.Header.Get("ETag"),
		lastModified: resp.Header.Get("Last-Modified"),
	}
	if resp.StatusCode == http.StatusNotModified {
		return out, resp.StatusCode, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return response{}, resp.StatusCode, &StatusError{Code: resp.StatusCode}
	}
	if !isHTMLContentType(out.ContentType) {
		return response{}, resp.StatusCode, fmt.Errorf("%w: %s", ErrUnsupportedContent, out.ContentType)
	}
	limit := c.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return response{}, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	out.Body = b
	return out, resp.StatusCode, nil
}

func (c *Client) httpClient() *http.Client {
	base := http.Client{}
	if c.HTTPClient != nil {
		// copy so the redirect policy does not leak into the caller's client
		base = *c.HTTPClient
	}
	base.CheckRedirect = c.checkRedirect
	return &base
}

func (c *Client) checkRedirect(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	if len(via) >= max {
		return errors.New("too many redirects")
	}
	if !isHTTPScheme(req.URL) {
		return errors.New("redirect to unsupported scheme")
	}
	return nil
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var se *StatusError
	return errors.As(err, &se) && se.Code >= 500
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	s := strings.ToLower(u.Scheme)
	return s == "http" || s == "https"
}

func isHTMLContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	return strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml")
}
