package tui

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hyperifyio/devsearch/internal/browser"
)

func TestPageView_RefreshLayout(t *testing.T) {
	th := NewTheme("dark")
	v := newPageView(context.Background(), 1, ranked("", "https://go.dev/doc", "", true))
	defer v.Close()

	v.refresh(nil, th)
	assert.Contains(t, v.content, "No title")
	assert.Contains(t, v.content, "https://go.dev/doc")
	assert.Contains(t, v.content, "Loading…")

	v.Loading = false
	v.Page = browser.Page{Title: "Documentation", Markdown: "Read the docs."}
	v.SummaryErr = errors.New("model offline")
	v.refresh(nil, th)
	assert.Contains(t, v.content, "Documentation")
	assert.Contains(t, v.content, "Summary failed: model offline")
	assert.Contains(t, v.content, "Read the docs.")

	v.SummaryErr, v.Summary = nil, "Short."
	v.refresh(nil, th)
	assert.Contains(t, v.content, "Summary")
	assert.Contains(t, v.content, "Short.")
	assert.NotContains(t, v.content, "failed")
}
