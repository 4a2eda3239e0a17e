package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/devsearch/internal/extract"
)

// ChromeConfig configures ChromeRenderer.
type ChromeConfig struct {
	// RemoteURL is a CDP websocket endpoint. Empty launches a local headless
	// Chrome.
	RemoteURL string
	// Timeout bounds browser start-up and each page render.
	Timeout time.Duration
}

// ChromeRenderer renders pages in headless Chrome so script-built content is
// present before extraction. Each Render opens its own tab.
type ChromeRenderer struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	timeout       time.Duration
}

// NewChromeRenderer starts or connects to Chrome.
func NewChromeRenderer(cfg ChromeConfig) (*ChromeRenderer, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	r := &ChromeRenderer{timeout: cfg.Timeout}

	var allocCtx context.Context
	if cfg.RemoteURL != "" {
		allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
		log.Info().Str("url", cfg.RemoteURL).Msg("connecting to remote chrome")
	} else {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.WindowSize(1280, 900),
		)
		allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
		log.Info().Msg("launching headless chrome")
	}
	r.browserCtx, r.browserCancel = chromedp.NewContext(allocCtx)

	// The first Run binds the browser to browserCtx, so it must not carry a
	// deadline of its own.
	started := make(chan error, 1)
	go func() { started <- chromedp.Run(r.browserCtx) }()
	select {
	case err := <-started:
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("start chrome: %w", err)
		}
	case <-time.After(cfg.Timeout):
		r.Close()
		return nil, fmt.Errorf("start chrome: timed out after %v", cfg.Timeout)
	}
	return r, nil
}

func (r *ChromeRenderer) Name() string { return "chrome" }

func (r *ChromeRenderer) Render(ctx context.Context, url string) (Page, error) {
	tabCtx, closeTab := chromedp.NewContext(r.browserCtx)
	defer closeTab()
	tctx, cancel := context.WithTimeout(tabCtx, r.timeout)
	defer cancel()
	// a closed page view cancels ctx; tear the tab down with it
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var html, title string
	err := chromedp.Run(tctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Title(&title),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		if ctx.Err() != nil {
			return Page{}, ctx.Err()
		}
		return Page{}, fmt.Errorf("render %s: %w", url, err)
	}
	doc := extract.FromHTML([]byte(html), url)
	if title != "" {
		doc.Title = title
	}
	return page(url, doc, false), nil
}

// Close shuts the browser down.
func (r *ChromeRenderer) Close() {
	if r.browserCancel != nil {
		r.browserCancel()
	}
	if r.allocCancel != nil {
		r.allocCancel()
	}
}
