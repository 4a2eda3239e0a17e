package cache

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// SummaryCache stores page summaries keyed by model and page URL so that
// reopening a page does not call the model again.
type SummaryCache struct {
	Dir string
}

type summaryEntry struct {
	URL     string    `json:"url"`
	Model   string    `json:"model"`
	Summary string    `json:"summary"`
	SavedAt time.Time `json:"saved_at"`
}

func (c *SummaryCache) path(model, url string) string {
	return filepath.Join(c.Dir, key(model+"\n"+url)+".summary.json")
}

// Get returns a cached summary. ok is false on a miss.
func (c *SummaryCache) Get(model, url string) (summary string, ok bool) {
	if c == nil || c.Dir == "" {
		return "", false
	}
	b, err := os.ReadFile(c.path(model, url))
	if err != nil {
		return "", false
	}
	var e summaryEntry
	if json.Unmarshal(b, &e) != nil || e.URL != url || e.Model != model {
		return "", false
	}
	return e.Summary, true
}

// Put stores a summary.
func (c *SummaryCache) Put(model, url, summary string) error {
	if c == nil || c.Dir == "" {
		return errors.New("cache dir not configured")
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return err
	}
	b, err := json.Marshal(summaryEntry{URL: url, Model: model, Summary: summary, SavedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	return os.WriteFile(c.path(model, url), b, 0o644)
}
