package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// PageEntry is the metadata stored next to a cached page body. It carries
// enough to revalidate with If-None-Match / If-Modified-Since.
type PageEntry struct {
	URL          string    `json:"url"`
	ContentType  string    `json:"content_type"`
	ETag         string    `json:"etag"`
	LastModified string    `json:"last_modified"`
	SavedAt      time.Time `json:"saved_at"`
}

// PageCache stores viewed pages on disk as <key>.meta.json and <key>.body,
// where key is sha256(url). Queries are never recorded.
type PageCache struct {
	Dir string
}

func (c *PageCache) ensureDir() error {
	if c == nil || c.Dir == "" {
		return errors.New("cache dir not configured")
	}
	return os.MkdirAll(c.Dir, 0o755)
}

func key(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

func (c *PageCache) metaPath(url string) string { return filepath.Join(c.Dir, key(url)+".meta.json") }
func (c *PageCache) bodyPath(url string) string { return filepath.Join(c.Dir, key(url)+".body") }

// LoadMeta returns the entry metadata for url if present.
func (c *PageCache) LoadMeta(url string) (*PageEntry, error) {
	if err := c.ensureDir(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(c.metaPath(url))
	if err != nil {
		return nil, err
	}
	var e PageEntry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("decode cache meta: %w", err)
	}
	return &e, nil
}

// LoadBody returns the cached body for url if present.
func (c *PageCache) LoadBody(url string) ([]byte, error) {
	if err := c.ensureDir(); err != nil {
		return nil, err
	}
	return os.ReadFile(c.bodyPath(url))
}

// Save writes the body then atomically replaces the metadata.
func (c *PageCache) Save(e PageEntry, body []byte) error {
	if err := c.ensureDir(); err != nil {
		return err
	}
	if e.SavedAt.IsZero() {
		e.SavedAt = time.Now().UTC()
	}
	if err := os.WriteFile(c.bodyPath(e.URL), body, 0o644); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}
	tmp := c.metaPath(e.URL) + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}
	return os.Rename(tmp, c.metaPath(e.URL))
}

// Purge removes pages and summaries saved more than maxAge ago and returns
// how many were removed. Unreadable entries are left alone.
func (c *PageCache) Purge(maxAge time.Duration) (int, error) {
	if maxAge <= 0 || c == nil || c.Dir == "" {
		return 0, nil
	}
	now := time.Now().UTC()
	removed := 0
	err := filepath.WalkDir(c.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		isMeta := strings.HasSuffix(d.Name(), ".meta.json")
		if d.IsDir() || !(isMeta || strings.HasSuffix(d.Name(), ".summary.json")) {
			return nil
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		// both kinds carry saved_at
		var e PageEntry
		if json.Unmarshal(b, &e) != nil || now.Sub(e.SavedAt) <= maxAge {
			return nil
		}
		removed++
		_ = os.Remove(path)
		if isMeta {
			_ = os.Remove(strings.TrimSuffix(path, ".meta.json") + ".body")
		}
		return nil
	})
	return removed, err
}

// Clear removes the cache directory and recreates it empty.
func (c *PageCache) Clear() error {
	if c == nil || strings.TrimSpace(c.Dir) == "" {
		return errors.New("cache dir not configured")
	}
	if err := os.RemoveAll(c.Dir); err != nil {
		return err
	}
	return os.MkdirAll(c.Dir, 0o755)
}
