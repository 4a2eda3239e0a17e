package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/hyperifyio/devsearch/internal/app"
)

func fixtures(t *testing.T) (results, sites string) {
	t.Helper()
	dir := t.TempDir()
	results = filepath.Join(dir, "results.json")
	require.NoError(t, os.WriteFile(results, []byte(`[
		{"title": "Reverse a slice", "url": "https://stackoverflow.com/q/1", "snippet": "two-index loop"},
		{"title": "", "url": "https://blog.example.com/reverse-slice", "snippet": ""},
		{"title": "Reverse a slice (dup)", "url": "https://stackoverflow.com/q/1", "snippet": "dup"}
	]`), 0o644))
	sites = filepath.Join(dir, "sites.json")
	require.NoError(t, os.WriteFile(sites, []byte(`["stackoverflow.com"]`), 0o644))
	return results, sites
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	var out bytes.Buffer
	err := newCLI(&out).Run(append([]string{"devsearch"}, args...))
	return out.String(), err
}

func TestQuery_PrintsRankedResults(t *testing.T) {
	results, sites := fixtures(t)
	out, err := run(t,
		"--settings", "", "--sites", sites,
		"--provider", "file", "--search.file", results,
		"query", "reverse", "slice")
	require.NoError(t, err)

	assert.Contains(t, out, " 1. * Reverse a slice")
	assert.Contains(t, out, "https://blog.example.com/reverse-slice")
	assert.NotContains(t, out, "(dup)")
	assert.NotContains(t, out, " 3. ")
}

func TestQuery_NoResults(t *testing.T) {
	results, sites := fixtures(t)
	out, err := run(t,
		"--settings", "", "--sites", sites,
		"--provider", "file", "--search.file", results,
		"query", "haskell")
	require.NoError(t, err)
	assert.Equal(t, "No results found.\n", out)
}

func TestQuery_MaxResultsCaps(t *testing.T) {
	results, sites := fixtures(t)
	out, err := run(t,
		"--settings", "", "--sites", sites,
		"--provider", "file", "--search.file", results, "-n", "1",
		"query", "slice")
	require.NoError(t, err)
	assert.Contains(t, out, " 1. ")
	assert.NotContains(t, out, " 2. ")
}

func TestQuery_RequiresTerms(t *testing.T) {
	_, err := run(t, "--settings", "", "--sites", "", "query")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "usage")
}

func TestQuery_RejectsBadConfig(t *testing.T) {
	_, err := run(t, "--settings", "", "--sites", "", "--provider", "bing", "query", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}

func TestBuildConfig_SettingsFileThenFlags(t *testing.T) {
	dir := t.TempDir()
	settings := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(settings, []byte(`{
		// comments are allowed
		"max_results": 9,
		"theme": "light",
		"provider": "file",
		"search_file": "from-settings.json",
	}`), 0o644))

	var captured struct {
		max      int
		theme    string
		file     string
		provider string
	}
	cmd := newCLI(&bytes.Buffer{})
	cmd.Action = func(c *cli.Context) error {
		cfg, err := buildConfig(c)
		if err != nil {
			return err
		}
		captured.max, captured.theme, captured.file, captured.provider = cfg.MaxResults, cfg.Theme, cfg.SearchFile, cfg.Provider
		return nil
	}
	require.NoError(t, cmd.Run([]string{"devsearch", "--settings", settings, "--sites", "", "--max-results", "3"}))
	assert.Equal(t, 3, captured.max)
	assert.Equal(t, "light", captured.theme)
	assert.Equal(t, "from-settings.json", captured.file)
	assert.Equal(t, "file", captured.provider)
}

func configFrom(t *testing.T, args ...string) app.Config {
	t.Helper()
	var cfg app.Config
	cmd := newCLI(&bytes.Buffer{})
	cmd.Action = func(c *cli.Context) error {
		var err error
		cfg, err = buildConfig(c)
		return err
	}
	require.NoError(t, cmd.Run(append([]string{"devsearch"}, args...)))
	return cfg
}

func TestBuildConfig_CacheOffUnlessConfigured(t *testing.T) {
	t.Setenv("DEVSEARCH_CACHE_DIR", "")
	cfg := configFrom(t, "--settings", "", "--sites", "")
	assert.Empty(t, cfg.CacheDir)

	pages := filepath.Join(t.TempDir(), "pages")
	cfg = configFrom(t, "--settings", "", "--sites", "", "--cache.dir", pages)
	assert.Equal(t, pages, cfg.CacheDir)
}

func TestLogToFile_WritesAndRestores(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "devsearch.log")
	restore, err := logToFile(path)
	require.NoError(t, err)
	log.Info().Msg("hello from the tui")
	restore()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "hello from the tui")
}
