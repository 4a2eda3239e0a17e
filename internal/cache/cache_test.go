package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageCache_SaveLoad(t *testing.T) {
	c := &PageCache{Dir: filepath.Join(t.TempDir(), "pages")}
	err := c.Save(PageEntry{URL: "https://go.dev/doc", ContentType: "text/html", ETag: `"v1"`}, []byte("<html>doc</html>"))
	require.NoError(t, err)

	meta, err := c.LoadMeta("https://go.dev/doc")
	require.NoError(t, err)
	assert.Equal(t, `"v1"`, meta.ETag)
	assert.False(t, meta.SavedAt.IsZero())

	body, err := c.LoadBody("https://go.dev/doc")
	require.NoError(t, err)
	assert.Equal(t, "<html>doc</html>", string(body))

	_, err = c.LoadBody("https://go.dev/other")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPageCache_Unconfigured(t *testing.T) {
	var c *PageCache
	_, err := c.LoadMeta("x")
	require.Error(t, err)
	require.Error(t, (&PageCache{}).Save(PageEntry{URL: "x"}, nil))
}

func TestPageCache_Purge(t *testing.T) {
	dir := t.TempDir()
	c := &PageCache{Dir: dir}
	require.NoError(t, c.Save(PageEntry{URL: "https://old", SavedAt: time.Now().Add(-48 * time.Hour)}, []byte("old")))
	require.NoError(t, c.Save(PageEntry{URL: "https://new"}, []byte("new")))

	removed, err := c.Purge(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = c.LoadBody("https://old")
	assert.Error(t, err)
	_, err = c.LoadBody("https://new")
	assert.NoError(t, err)

	n, err := c.Purge(0)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPageCache_Clear(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "c")
	c := &PageCache{Dir: dir}
	require.NoError(t, c.Save(PageEntry{URL: "https://a"}, []byte("a")))
	require.NoError(t, c.Clear())
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSummaryCache_RoundTrip(t *testing.T) {
	c := &SummaryCache{Dir: t.TempDir()}
	_, ok := c.Get("m", "https://a")
	assert.False(t, ok)

	require.NoError(t, c.Put("m", "https://a", "short summary"))
	got, ok := c.Get("m", "https://a")
	require.True(t, ok)
	assert.Equal(t, "short summary", got)

	_, ok = c.Get("other-model", "https://a")
	assert.False(t, ok)
}

func TestSummaryCache_IgnoresCorruptEntry(t *testing.T) {
	c := &SummaryCache{Dir: t.TempDir()}
	require.NoError(t, c.Put("m", "https://a", "s"))
	require.NoError(t, os.WriteFile(c.path("m", "https://a"), []byte("{"), 0o644))
	_, ok := c.Get("m", "https://a")
	assert.False(t, ok)

	b, _ := json.Marshal(summaryEntry{URL: "https://b", Model: "m", Summary: "wrong"})
	require.NoError(t, os.WriteFile(c.path("m", "https://a"), b, 0o644))
	_, ok = c.Get("m", "https://a")
	assert.False(t, ok)
}

func TestPageCache_PurgeSummaries(t *testing.T) {
	dir := t.TempDir()
	s := &SummaryCache{Dir: dir}
	require.NoError(t, s.Put("m", "https://fresh", "fresh"))

	old, err := json.Marshal(summaryEntry{URL: "https://stale", Model: "m", Summary: "stale", SavedAt: time.Now().Add(-72 * time.Hour)})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(s.path("m", "https://stale"), old, 0o644))

	removed, err := (&PageCache{Dir: dir}).Purge(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	_, ok := s.Get("m", "https://stale")
	assert.False(t, ok)
	_, ok = s.Get("m", "https://fresh")
	assert.True(t, ok)
}
