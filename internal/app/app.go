package app

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/devsearch/internal/aggregate"
	"github.com/hyperifyio/devsearch/internal/browser"
	"github.com/hyperifyio/devsearch/internal/cache"
	"github.com/hyperifyio/devsearch/internal/fetch"
	"github.com/hyperifyio/devsearch/internal/llm"
	"github.com/hyperifyio/devsearch/internal/priority"
	"github.com/hyperifyio/devsearch/internal/search"
)

// ErrEmptyQuery is returned for blank queries; no search is performed.
var ErrEmptyQuery = errors.New("empty query")

// ResultSet is what one search displays. It is replaced wholesale by the
// next search.
type ResultSet struct {
	Query   string
	Results []priority.Ranked
	// Failed is set when the provider errored and the set is empty because
	// of it rather than because nothing matched.
	Failed  bool
	Elapsed time.Duration
}

// PrioritizedCount returns how many results are flagged.
func (rs ResultSet) PrioritizedCount() int {
	n := 0
	for _, r := range rs.Results {
		if r.Prioritized {
			n++
		}
	}
	return n
}

// Searcher runs queries against a provider, merges and ranks the results.
type Searcher struct {
	provider   search.Provider
	matcher    *priority.Matcher
	sites      []string
	maxResults int
	siteQuery  bool
}

// NewSearcher builds a Searcher from cfg.
func NewSearcher(cfg Config, p search.Provider) *Searcher {
	m := priority.NewMatcher(cfg.PrioritySites)
	m.Strict = cfg.StrictDomainMatch
	max := cfg.MaxResults
	if max <= 0 {
		max = DefaultMaxResults
	}
	return &Searcher{
		provider:   p,
		matcher:    m,
		sites:      append([]string(nil), cfg.PrioritySites...),
		maxResults: max,
		siteQuery:  cfg.SiteQuery,
	}
}

// Search runs query. Provider failures are logged with a stack trace and
// yield an empty, Failed result set with a nil error; only a blank query or a
// cancelled ctx return an error.
func (s *Searcher) Search(ctx context.Context, query string) (ResultSet, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return ResultSet{}, ErrEmptyQuery
	}
	start := time.Now()
	queries := []string{query}
	if s.siteQuery && len(s.sites) > 0 {
		queries = []string{priority.SiteQuery(s.sites, query), query}
	}

	rs := ResultSet{Query: query}
	groups := make([][]search.Result, 0, len(queries))
	for _, q := range queries {
		res, err := s.provider.Search(ctx, q, s.maxResults)
		if err != nil {
			if ctx.Err() != nil {
				return ResultSet{}, ctx.Err()
			}
			log.Error().Stack().Err(errors.WithStack(err)).
				Str("provider", s.provider.Name()).Str("query", q).
				Msg("search failed; treating as no results")
			rs.Failed = true
			continue
		}
		groups = append(groups, res)
	}
	merged := aggregate.Cap(aggregate.Dedupe(groups...), s.maxResults)
	rs.Results = s.matcher.Rank(merged)
	if len(rs.Results) > 0 {
		rs.Failed = false
	}
	rs.Elapsed = time.Since(start)

	log.Info().Str("query", query).Str("provider", s.provider.Name()).
		Int("results", len(rs.Results)).Int("prioritized", rs.PrioritizedCount()).
		Dur("elapsed", rs.Elapsed).Msg("search complete")
	return rs, nil
}

// App wires the configured components together.
type App struct {
	cfg        Config
	Searcher   *Searcher
	Renderer   browser.Renderer
	Summarizer *llm.Summarizer // nil when no model is configured
	closers    []func()
}

// New builds the application from a validated config.
func New(cfg Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	hc := newHTTPClient(cfg.PageTimeout)
	provider, err := search.New(search.Options{
		Name:       cfg.Provider,
		SearxURL:   cfg.SearxURL,
		SearxKey:   cfg.SearxKey,
		UserAgent:  cfg.UserAgent,
		File:       cfg.SearchFile,
		HTTPClient: hc,
	})
	if err != nil {
		return nil, err
	}
	a := &App{cfg: cfg, Searcher: NewSearcher(cfg, provider)}

	var pages *cache.PageCache
	if dir := strings.TrimSpace(cfg.CacheDir); dir != "" {
		pages = &cache.PageCache{Dir: dir}
		if cfg.CacheClear {
			if err := pages.Clear(); err != nil {
				log.Warn().Err(err).Str("dir", dir).Msg("cache clear failed")
			}
		}
		if n, err := pages.Purge(cfg.CacheMaxAge); err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("cache purge failed")
		} else if n > 0 {
			log.Debug().Int("removed", n).Msg("purged expired pages")
		}
	}

	switch strings.ToLower(cfg.Renderer) {
	case "chrome":
		cr, err := browser.NewChromeRenderer(browser.ChromeConfig{RemoteURL: cfg.ChromeURL, Timeout: cfg.PageTimeout})
		if err != nil {
			return nil, err
		}
		a.Renderer = cr
		a.closers = append(a.closers, cr.Close)
	default:
		a.Renderer = &browser.HTTPRenderer{Client: &fetch.Client{
			HTTPClient:        hc,
			UserAgent:         cfg.UserAgent,
			MaxAttempts:       2,
			PerRequestTimeout: cfg.PageTimeout,
			Cache:             pages,
		}}
	}

	if cfg.SummariesEnabled() {
		s := &llm.Summarizer{
			Client: llm.NewOpenAIClient(cfg.LLMBaseURL, cfg.LLMAPIKey, newHTTPClient(2*time.Minute)),
			Model:  cfg.LLMModel,
		}
		if pages != nil {
			s.Cache = &cache.SummaryCache{Dir: pages.Dir}
		}
		a.Summarizer = s
	}

	log.Debug().Str("provider", provider.Name()).Str("renderer", a.Renderer.Name()).
		Int("max_results", cfg.MaxResults).Int("priority_sites", len(cfg.PrioritySites)).
		Bool("summaries", a.Summarizer != nil).Msg("app ready")
	return a, nil
}

// Config returns the configuration the app was built with.
func (a *App) Config() Config { return a.cfg }

// Close releases browser resources.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
