package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"

	"github.com/hyperifyio/devsearch/internal/browser"
	"github.com/hyperifyio/devsearch/internal/priority"
)

// PageView is one opened result. Views are independent of each other and of
// the result list; closing one cancels only its own work.
type PageView struct {
	ID     int
	Result priority.Ranked
	Page   browser.Page

	Loading     bool
	Err         error
	Summary     string
	Summarizing bool
	SummaryErr  error

	ctx      context.Context
	cancel   context.CancelFunc
	viewport viewport.Model
	content  string
}

func newPageView(parent context.Context, id int, r priority.Ranked) *PageView {
	ctx, cancel := context.WithCancel(parent)
	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3
	return &PageView{ID: id, Result: r, Loading: true, ctx: ctx, cancel: cancel, viewport: vp}
}

// Close cancels any in-flight load or summary.
func (v *PageView) Close() {
	if v.cancel != nil {
		v.cancel()
	}
}

// Label is the short name shown in the page tab bar.
func (v *PageView) Label() string {
	return truncate(v.title(), 24)
}

func (v *PageView) setSize(w, h int) {
	if h < 1 {
		h = 1
	}
	v.viewport.Width, v.viewport.Height = w, h
}

// title is the page title, or the result's title before the page loads.
func (v *PageView) title() string {
	if v.Page.Title != "" {
		return v.Page.Title
	}
	return Item{Result: v.Result}.Title()
}

// markdown is the page body handed to glamour.
func (v *PageView) markdown() string {
	switch {
	case v.Loading:
		return "Loading…"
	case v.Err != nil:
		return "Press `o` to open it in your browser."
	case strings.TrimSpace(v.Page.Markdown) == "":
		return "_This page has no readable text. Press `o` to open it in your browser._"
	}
	return v.Page.Markdown
}

// summary renders the summary block, or "" when none was asked for.
func (v *PageView) summary(th Theme, width int) string {
	switch {
	case v.Summarizing:
		return th.Placeholder.Render("Summarizing…")
	case v.SummaryErr != nil:
		return th.Error.Render(fmt.Sprintf("Summary failed: %v", v.SummaryErr))
	case v.Summary != "":
		return th.SummaryBox.Width(max(width-4, 10)).Render("Summary\n\n" + v.Summary)
	}
	return ""
}

// refresh re-renders the content. A nil renderer shows the raw Markdown.
func (v *PageView) refresh(r *glamour.TermRenderer, th Theme) {
	width := v.viewport.Width
	parts := []string{
		th.PageTitle.Render(v.title()),
		th.ItemURL.Render(v.Result.URL),
		"",
	}
	if s := v.summary(th, width); s != "" {
		parts = append(parts, s, "")
	}
	if v.Err != nil && !v.Loading {
		parts = append(parts, th.Error.Render(fmt.Sprintf("Could not load page: %v", v.Err)))
	}
	body := v.markdown()
	if r != nil {
		if s, err := r.Render(body); err == nil {
			body = s
		}
	}
	v.content = strings.Join(append(parts, body), "\n")
	v.viewport.SetContent(v.content)
}
