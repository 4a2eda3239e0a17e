package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hyperifyio/devsearch/internal/browser"
	"github.com/hyperifyio/devsearch/internal/priority"
)

// searchCmd runs a search off the UI loop.
func searchCmd(ctx context.Context, s Searcher, seq int, query string) tea.Cmd {
	return func() tea.Msg {
		set, err := s.Search(ctx, query)
		return searchResultMsg{seq: seq, set: set, err: err}
	}
}

// openPageCmd is the activation callback given to every result item.
func openPageCmd(r priority.Ranked) tea.Cmd {
	return func() tea.Msg { return openPageMsg{result: r} }
}

func loadPageCmd(ctx context.Context, r browser.Renderer, id int, url string) tea.Cmd {
	return func() tea.Msg {
		p, err := r.Render(ctx, url)
		return pageLoadedMsg{id: id, page: p, err: err}
	}
}

func summarizeCmd(ctx context.Context, s Summarizer, id int, p browser.Page) tea.Cmd {
	return func() tea.Msg {
		text, err := s.Summarize(ctx, p)
		return summaryMsg{id: id, text: text, err: err}
	}
}

func openExternalCmd(open func(string) error, url string) tea.Cmd {
	return func() tea.Msg {
		return externalOpenedMsg{url: url, err: open(url)}
	}
}

func copyCmd(write func(string) error, url string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{url: url, err: write(url)}
	}
}
