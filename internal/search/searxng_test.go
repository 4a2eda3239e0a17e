package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearxNG_Search_ParsesResults(t *testing.T) {
	var gotQuery, gotCount, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotCount = r.URL.Query().Get("count")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"title": " Doc ", "url": "https://example.com", "content": "snippet"},
				{"title": "", "url": "https://example.org/untitled", "content": ""},
				{"title": "Third", "url": "https://example.net", "content": "over limit"},
			},
		})
	}))
	defer srv.Close()

	s := &SearxNG{BaseURL: srv.URL, HTTPClient: srv.Client(), UserAgent: "devsearch-test"}
	got, err := s.Search(context.Background(), "golang generics", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "golang generics", gotQuery)
	assert.Equal(t, "2", gotCount)
	assert.Equal(t, "devsearch-test", gotUA)
	assert.Equal(t, Result{Title: "Doc", URL: "https://example.com", Snippet: "snippet", Source: "searxng"}, got[0])
	// untitled records are kept; the UI substitutes a placeholder
	assert.Equal(t, "https://example.org/untitled", got[1].URL)
	assert.Empty(t, got[1].Title)
}

func TestSearxNG_Search_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := &SearxNG{BaseURL: srv.URL, HTTPClient: srv.Client()}
	_, err := s.Search(context.Background(), "q", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestSearxNG_Search_MissingBaseURL(t *testing.T) {
	_, err := (&SearxNG{}).Search(context.Background(), "q", 5)
	require.Error(t, err)
}
