package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"github.com/urfave/cli/v2"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/hyperifyio/devsearch/internal/app"
	"github.com/hyperifyio/devsearch/internal/browser"
	"github.com/hyperifyio/devsearch/internal/tui"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := app.LoadEnvFiles(".env"); err != nil {
		log.Warn().Err(err).Msg("could not read .env")
	}
	if err := newCLI(os.Stdout).Run(os.Args); err != nil {
		log.Error().Err(err).Msg("devsearch failed")
		os.Exit(1)
	}
}

func newCLI(out io.Writer) *cli.App {
	return &cli.App{
		Name:    "devsearch",
		Usage:   "Search the web for programming answers, with trusted sites flagged",
		Version: app.VersionString(),
		Writer:  out,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "settings", Usage: "Settings file (JSON with comments, or YAML)", Value: app.DefaultSettingsPath, EnvVars: []string{"DEVSEARCH_SETTINGS"}},
			&cli.StringFlag{Name: "sites", Usage: "Priority sites file (JSON array of domains)", Value: app.DefaultSitesPath, EnvVars: []string{"DEVSEARCH_SITES"}},
			&cli.IntFlag{Name: "max-results", Aliases: []string{"n"}, Usage: "Maximum results per search", EnvVars: []string{"DEVSEARCH_MAX_RESULTS"}},
			&cli.StringFlag{Name: "provider", Usage: "Search provider: duckduckgo, searxng or file", EnvVars: []string{"DEVSEARCH_PROVIDER"}},
			&cli.StringFlag{Name: "searx.url", Usage: "SearxNG base URL", EnvVars: []string{"SEARX_URL"}},
			&cli.StringFlag{Name: "searx.key", Usage: "SearxNG API key (optional)", EnvVars: []string{"SEARX_KEY"}},
			&cli.StringFlag{Name: "search.file", Usage: "JSON results file for the offline file provider", EnvVars: []string{"SEARCH_FILE"}},
			&cli.BoolFlag{Name: "site-query", Usage: "Also run a site: query over the priority sites and merge it first", EnvVars: []string{"DEVSEARCH_SITE_QUERY"}},
			&cli.BoolFlag{Name: "strict-domains", Usage: "Only match priority sites on domain label boundaries", EnvVars: []string{"DEVSEARCH_STRICT_DOMAINS"}},
			&cli.StringFlag{Name: "theme", Usage: "Colour theme: dark or light", EnvVars: []string{"DEVSEARCH_THEME"}},
			&cli.StringFlag{Name: "renderer", Usage: "Page renderer: http or chrome", EnvVars: []string{"DEVSEARCH_RENDERER"}},
			&cli.StringFlag{Name: "chrome.url", Usage: "DevTools URL of a running Chrome (renderer=chrome)", EnvVars: []string{"CHROME_URL"}},
			&cli.DurationFlag{Name: "page-timeout", Usage: "Timeout for loading one page", EnvVars: []string{"DEVSEARCH_PAGE_TIMEOUT"}},
			&cli.StringFlag{Name: "cache.dir", Usage: "Page cache directory (unset disables caching)", EnvVars: []string{"DEVSEARCH_CACHE_DIR"}},
			&cli.DurationFlag{Name: "cache.max-age", Usage: "Purge cached pages older than this; 0 keeps them", EnvVars: []string{"DEVSEARCH_CACHE_MAX_AGE"}},
			&cli.BoolFlag{Name: "cache.clear", Usage: "Clear the page cache at startup"},
			&cli.StringFlag{Name: "llm.base", Usage: "OpenAI-compatible base URL for page summaries", EnvVars: []string{"LLM_BASE_URL"}},
			&cli.StringFlag{Name: "llm.model", Usage: "Model name; summaries are off when empty", EnvVars: []string{"LLM_MODEL"}},
			&cli.StringFlag{Name: "llm.key", Usage: "API key for the summary model", EnvVars: []string{"LLM_API_KEY"}},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Debug logging"},
			&cli.StringFlag{Name: "log.file", Usage: "Log file used while the TUI owns the terminal", EnvVars: []string{"DEVSEARCH_LOG_FILE"}},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
			return nil
		},
		Action: runTUI,
		Commands: []*cli.Command{
			{
				Name:      "query",
				Usage:     "Run one search and print the results",
				ArgsUsage: "<terms...>",
				Action:    runQuery,
			},
		},
	}
}

// buildConfig layers defaults, then the settings and sites files, then
// flags and environment.
func buildConfig(c *cli.Context) (app.Config, error) {
	cfg := app.Defaults()
	if c.IsSet("settings") {
		cfg.SettingsPath = c.String("settings")
	}
	if c.IsSet("sites") {
		cfg.SitesPath = c.String("sites")
	}
	if err := app.LoadFiles(&cfg); err != nil {
		return cfg, err
	}

	str := func(name string, dst *string) {
		if c.IsSet(name) {
			*dst = strings.TrimSpace(c.String(name))
		}
	}
	boolean := func(name string, dst *bool) {
		if c.IsSet(name) {
			*dst = c.Bool(name)
		}
	}
	dur := func(name string, dst *time.Duration) {
		if c.IsSet(name) {
			*dst = c.Duration(name)
		}
	}
	if c.IsSet("max-results") {
		cfg.MaxResults = c.Int("max-results")
	}
	str("provider", &cfg.Provider)
	str("searx.url", &cfg.SearxURL)
	str("searx.key", &cfg.SearxKey)
	str("search.file", &cfg.SearchFile)
	boolean("site-query", &cfg.SiteQuery)
	boolean("strict-domains", &cfg.StrictDomainMatch)
	str("theme", &cfg.Theme)
	str("renderer", &cfg.Renderer)
	str("chrome.url", &cfg.ChromeURL)
	dur("page-timeout", &cfg.PageTimeout)
	str("cache.dir", &cfg.CacheDir)
	dur("cache.max-age", &cfg.CacheMaxAge)
	boolean("cache.clear", &cfg.CacheClear)
	str("llm.base", &cfg.LLMBaseURL)
	str("llm.model", &cfg.LLMModel)
	str("llm.key", &cfg.LLMAPIKey)
	boolean("verbose", &cfg.Verbose)
	str("log.file", &cfg.LogFile)
	return cfg, cfg.Validate()
}

func runQuery(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return errors.New("usage: devsearch query <terms...>")
	}
	cfg, err := buildConfig(c)
	if err != nil {
		return err
	}
	a, err := app.New(cfg)
	if err != nil {
		return errors.Wrap(err, "init")
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	set, err := a.Searcher.Search(ctx, query)
	if err != nil {
		return err
	}
	printResults(c.App.Writer, set)
	return nil
}

// printResults writes a numbered listing; prioritized results carry a "*".
func printResults(w io.Writer, set app.ResultSet) {
	if len(set.Results) == 0 {
		fmt.Fprintln(w, tui.NoResults)
		return
	}
	titleColor := color.New(color.Bold).SprintFunc()
	markColor := color.New(color.FgYellow, color.Bold).SprintFunc()
	urlColor := color.New(color.FgGreen).SprintFunc()
	for i, r := range set.Results {
		mark := " "
		if r.Prioritized {
			mark = markColor("*")
		}
		title := strings.TrimSpace(r.Title)
		if title == "" {
			title = tui.NoTitle
		}
		snippet := strings.TrimSpace(r.Snippet)
		if snippet == "" {
			snippet = tui.NoDescription
		}
		fmt.Fprintf(w, "%2d. %s %s\n    %s\n    %s\n", i+1, mark, titleColor(title), urlColor(r.URL), snippet)
	}
}

func runTUI(c *cli.Context) error {
	cfg, err := buildConfig(c)
	if err != nil {
		return err
	}
	closeLog, err := logToFile(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	a, err := app.New(cfg)
	if err != nil {
		return errors.Wrap(err, "init")
	}
	defer a.Close()

	deps := tui.Deps{
		Searcher:     a.Searcher,
		Renderer:     a.Renderer,
		OpenExternal: browser.OpenExternal,
		Theme:        tui.NewTheme(cfg.Theme),
	}
	if a.Summarizer != nil {
		deps.Summarizer = a.Summarizer
	}
	m := tui.New(deps)
	if q := strings.TrimSpace(strings.Join(c.Args().Slice(), " ")); q != "" {
		m.SetQuery(q)
	}
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(c.Context)).Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "tui")
	}
	return nil
}

// logToFile redirects logging to a rotating file while the TUI owns the
// terminal.
func logToFile(path string) (func(), error) {
	if strings.TrimSpace(path) == "" {
		path = filepath.Join(userDir(), "devsearch.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "log dir")
	}
	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // megabytes
		MaxBackups: 3,
		MaxAge:     28,
		LocalTime:  true,
	}
	prev := log.Logger
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	return func() {
		log.Logger = prev
		_ = w.Close()
	}, nil
}

func userDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "devsearch")
}
