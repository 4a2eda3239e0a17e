package app

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Defaults applied when neither flags, environment nor settings file set a value.
const (
	DefaultMaxResults   = 5
	DefaultProvider     = "duckduckgo"
	DefaultRenderer     = "http"
	DefaultTheme        = "dark"
	DefaultUserAgent    = "devsearch/1.0 (+https://github.com/hyperifyio/devsearch)"
	DefaultPageTimeout  = 20 * time.Second
	DefaultSettingsPath = "settings.json"
	DefaultSitesPath    = "priority_sites.json"
)

// Config holds runtime configuration. It is built once at startup and passed
// to the components that need it.
type Config struct {
	SettingsPath string
	SitesPath    string

	// Search
	MaxResults int
	Provider   string
	SearxURL   string
	SearxKey   string
	UserAgent  string
	SearchFile string
	// SiteQuery runs a site:-restricted query over the priority sites before
	// the general query and merges both.
	SiteQuery bool

	// Priority
	PrioritySites     []string
	StrictDomainMatch bool

	// Presentation
	Theme string

	// Page viewer
	Renderer    string
	ChromeURL   string
	PageTimeout time.Duration
	CacheDir    string
	CacheMaxAge time.Duration
	CacheClear  bool

	// Optional page summaries
	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string

	Verbose bool
	LogFile string
}

// Defaults returns a Config populated with built-in defaults.
func Defaults() Config {
	return Config{
		SettingsPath: DefaultSettingsPath,
		SitesPath:    DefaultSitesPath,
		MaxResults:   DefaultMaxResults,
		Provider:     DefaultProvider,
		UserAgent:    DefaultUserAgent,
		Theme:        DefaultTheme,
		Renderer:     DefaultRenderer,
		PageTimeout:  DefaultPageTimeout,
	}
}

// Validate rejects settings the rest of the program cannot act on.
func (c Config) Validate() error {
	if c.MaxResults <= 0 {
		return fmt.Errorf("config: max_results must be positive, got %d", c.MaxResults)
	}
	if c.PageTimeout < 0 || c.CacheMaxAge < 0 {
		return errors.New("config: negative durations are not allowed")
	}
	switch strings.ToLower(c.Provider) {
	case "duckduckgo", "ddg":
	case "searxng", "searx":
		if strings.TrimSpace(c.SearxURL) == "" {
			return errors.New("config: searx_url is required for the searxng provider (or set SEARX_URL)")
		}
	case "file":
		if strings.TrimSpace(c.SearchFile) == "" {
			return errors.New("config: search_file is required for the file provider")
		}
	default:
		return fmt.Errorf("config: unknown provider %q", c.Provider)
	}
	switch strings.ToLower(c.Renderer) {
	case "http", "chrome":
	default:
		return fmt.Errorf("config: unknown renderer %q", c.Renderer)
	}
	switch strings.ToLower(c.Theme) {
	case "dark", "light":
	default:
		return fmt.Errorf("config: unknown theme %q", c.Theme)
	}
	return nil
}

// SummariesEnabled reports whether an LLM is configured for page summaries.
func (c Config) SummariesEnabled() bool {
	return strings.TrimSpace(c.LLMModel) != ""
}
