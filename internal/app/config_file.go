package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tailscale/hujson"
	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the settings file schema. Every field is optional; pointers
// distinguish "absent" from zero values.
type FileConfig struct {
	MaxResults        *int     `yaml:"max_results" json:"max_results"`
	Provider          string   `yaml:"provider" json:"provider"`
	SearxURL          string   `yaml:"searx_url" json:"searx_url"`
	SearxKey          string   `yaml:"searx_key" json:"searx_key"`
	UserAgent         string   `yaml:"user_agent" json:"user_agent"`
	SearchFile        string   `yaml:"search_file" json:"search_file"`
	SiteQuery         *bool    `yaml:"site_query" json:"site_query"`
	StrictDomainMatch *bool    `yaml:"strict_domain_match" json:"strict_domain_match"`
	Theme             string   `yaml:"theme" json:"theme"`
	Renderer          string   `yaml:"renderer" json:"renderer"`
	ChromeURL         string   `yaml:"chrome_url" json:"chrome_url"`
	PageTimeout       Duration `yaml:"page_timeout" json:"page_timeout"`
	CacheDir          string   `yaml:"cache_dir" json:"cache_dir"`
	CacheMaxAge       Duration `yaml:"cache_max_age" json:"cache_max_age"`

	LLM struct {
		BaseURL string `yaml:"base" json:"base"`
		Model   string `yaml:"model" json:"model"`
		APIKey  string `yaml:"key" json:"key"`
	} `yaml:"llm" json:"llm"`
}

// Duration accepts Go duration strings ("15s") in JSON and YAML.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"15s\": %w", err)
	}
	return d.set(s)
}

func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	return d.set(n.Value)
}

func (d *Duration) set(s string) error {
	if strings.TrimSpace(s) == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// LoadConfigFile reads a settings file. .yaml/.yml files are parsed as YAML;
// anything else as JSON with comments and trailing commas allowed.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml %s: %w", path, err)
		}
	default:
		if err := unmarshalJSONC(b, &fc); err != nil {
			return fc, fmt.Errorf("parse settings %s: %w", path, err)
		}
	}
	return fc, nil
}

// LoadPrioritySites reads the priority site list. The file holds either a
// JSON array of strings or an object with a "sites" array. Blank entries
// are skipped.
func LoadPrioritySites(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw []string
	if filepath.Ext(path) == ".yaml" || filepath.Ext(path) == ".yml" {
		err = yaml.Unmarshal(b, &raw)
	} else {
		err = unmarshalJSONC(b, &raw)
		if err != nil {
			var obj struct {
				Sites []string `json:"sites"`
			}
			if oerr := unmarshalJSONC(b, &obj); oerr == nil {
				raw, err = obj.Sites, nil
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("parse priority sites %s: %w", path, err)
	}
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

func unmarshalJSONC(b []byte, v any) error {
	std, err := hujson.Standardize(b)
	if err != nil {
		return err
	}
	return json.Unmarshal(std, v)
}

// ApplyFileConfig overlays values present in fc onto cfg.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	if fc.MaxResults != nil {
		cfg.MaxResults = *fc.MaxResults
	}
	setString := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	setString(&cfg.Provider, fc.Provider)
	setString(&cfg.SearxURL, fc.SearxURL)
	setString(&cfg.SearxKey, fc.SearxKey)
	setString(&cfg.UserAgent, fc.UserAgent)
	setString(&cfg.SearchFile, fc.SearchFile)
	setString(&cfg.Theme, fc.Theme)
	setString(&cfg.Renderer, fc.Renderer)
	setString(&cfg.ChromeURL, fc.ChromeURL)
	setString(&cfg.CacheDir, fc.CacheDir)
	setString(&cfg.LLMBaseURL, fc.LLM.BaseURL)
	setString(&cfg.LLMModel, fc.LLM.Model)
	setString(&cfg.LLMAPIKey, fc.LLM.APIKey)
	if fc.SiteQuery != nil {
		cfg.SiteQuery = *fc.SiteQuery
	}
	if fc.StrictDomainMatch != nil {
		cfg.StrictDomainMatch = *fc.StrictDomainMatch
	}
	if fc.PageTimeout > 0 {
		cfg.PageTimeout = time.Duration(fc.PageTimeout)
	}
	if fc.CacheMaxAge > 0 {
		cfg.CacheMaxAge = time.Duration(fc.CacheMaxAge)
	}
}

// LoadFiles reads the settings and priority site files named by cfg and
// overlays them. A missing file is not an error: defaults stay in place and
// a warning is logged. Malformed files are errors.
func LoadFiles(cfg *Config) error {
	if cfg == nil {
		return errors.New("nil config")
	}
	if p := strings.TrimSpace(cfg.SettingsPath); p != "" {
		fc, err := LoadConfigFile(p)
		switch {
		case errors.Is(err, os.ErrNotExist):
			log.Warn().Str("path", p).Int("max_results", cfg.MaxResults).Msg("settings file not found; using defaults")
		case err != nil:
			return err
		default:
			ApplyFileConfig(cfg, fc)
		}
	}
	if p := strings.TrimSpace(cfg.SitesPath); p != "" {
		sites, err := LoadPrioritySites(p)
		switch {
		case errors.Is(err, os.ErrNotExist):
			log.Warn().Str("path", p).Msg("priority sites file not found; no sites will be prioritized")
		case err != nil:
			return err
		default:
			cfg.PrioritySites = sites
		}
	}
	return nil
}
