package tui

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperifyio/devsearch/internal/app"
	"github.com/hyperifyio/devsearch/internal/browser"
	"github.com/hyperifyio/devsearch/internal/priority"
	"github.com/hyperifyio/devsearch/internal/search"
)

type fakeSearcher struct {
	mu      sync.Mutex
	calls   []string
	ctxs    []context.Context
	results map[string][]priority.Ranked
	err     error
}

func (f *fakeSearcher) Search(ctx context.Context, q string) (app.ResultSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, q)
	f.ctxs = append(f.ctxs, ctx)
	if f.err != nil {
		return app.ResultSet{}, f.err
	}
	return app.ResultSet{Query: q, Results: f.results[q]}, nil
}

type fakeRenderer struct{ err error }

func (f fakeRenderer) Name() string { return "fake" }

func (f fakeRenderer) Render(_ context.Context, url string) (browser.Page, error) {
	if f.err != nil {
		return browser.Page{}, f.err
	}
	return browser.Page{URL: url, Title: "Rendered " + url, Markdown: "body text"}, nil
}

type fakeSummarizer struct{}

func (fakeSummarizer) Summarize(_ context.Context, p browser.Page) (string, error) {
	return "summary of " + p.URL, nil
}

func ranked(title, url, snippet string, prio bool) priority.Ranked {
	return priority.Ranked{Result: search.Result{Title: title, URL: url, Snippet: snippet}, Prioritized: prio}
}

// collect runs cmd and any batched children, returning the produced messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if b, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range b {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func find[T any](msgs []tea.Msg) (T, bool) {
	for _, m := range msgs {
		if v, ok := m.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func newTestModel(s Searcher) *Model {
	m := New(Deps{Searcher: s, Renderer: fakeRenderer{}, Theme: NewTheme("dark")})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

func enter() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyEnter} }

func key(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

// submit types q and presses enter, returning the search result message.
func submit(t *testing.T, m *Model, q string) searchResultMsg {
	t.Helper()
	m.setFocus(focusInput)
	m.input.SetValue(q)
	_, cmd := m.Update(enter())
	res, ok := find[searchResultMsg](collect(cmd))
	require.True(t, ok, "expected a search to start")
	return res
}

func TestSubmit_BlankQueryDoesNothing(t *testing.T) {
	fs := &fakeSearcher{}
	m := newTestModel(fs)
	m.input.SetValue("   ")
	_, cmd := m.Update(enter())
	assert.Nil(t, cmd)
	assert.Empty(t, fs.calls)
	assert.False(t, m.searching)
}

func TestSubmit_ShowsResultsWithPlaceholders(t *testing.T) {
	fs := &fakeSearcher{results: map[string][]priority.Ranked{
		"golang": {
			ranked("", "https://stackoverflow.com/q/1", "", true),
			ranked("Go docs", "https://go.dev/doc", "Official documentation", false),
		},
	}}
	m := newTestModel(fs)
	res := submit(t, m, "  golang  ")
	assert.Equal(t, []string{"golang"}, fs.calls)
	assert.True(t, m.searching)

	m.Update(res)
	assert.False(t, m.searching)
	assert.Equal(t, 2, m.list.Len())
	assert.Equal(t, focusList, m.focus)

	out := m.View()
	assert.Contains(t, out, NoTitle)
	assert.Contains(t, out, NoDescription)
	assert.Contains(t, out, "Go docs")
	assert.Contains(t, out, windowTitle)
}

func TestSubmit_NoResults(t *testing.T) {
	m := newTestModel(&fakeSearcher{})
	m.Update(submit(t, m, "nothing matches"))
	assert.Equal(t, 0, m.list.Len())
	assert.Contains(t, m.View(), "No results found.")
	assert.Equal(t, focusInput, m.focus)
}

func TestSubmit_ProviderFailureShowsEmpty(t *testing.T) {
	fs := &fakeSearcher{}
	m := newTestModel(fs)
	res := submit(t, m, "q")
	res.set.Failed = true
	m.Update(res)
	assert.Contains(t, m.View(), "No results found.")
}

func TestSubmit_ErrorGoesToStatus(t *testing.T) {
	m := newTestModel(&fakeSearcher{err: errors.New("boom")})
	m.Update(submit(t, m, "q"))
	assert.Equal(t, "boom", m.status)
}

func TestSubmit_StaleResultsDropped(t *testing.T) {
	fs := &fakeSearcher{results: map[string][]priority.Ranked{
		"first":  {ranked("Old", "https://old.example", "", false)},
		"second": {ranked("New", "https://new.example", "", false), ranked("New 2", "https://new2.example", "", false)},
	}}
	m := newTestModel(fs)
	first := submit(t, m, "first")
	second := submit(t, m, "second")

	require.Len(t, fs.ctxs, 2)
	assert.Error(t, fs.ctxs[0].Err(), "superseded search should be cancelled")

	m.Update(second)
	m.Update(first)
	require.Equal(t, 2, m.list.Len())
	it, ok := m.list.Selected()
	require.True(t, ok)
	assert.Equal(t, "New", it.Result.Title)
}

func TestActivate_OpensPageView(t *testing.T) {
	fs := &fakeSearcher{results: map[string][]priority.Ranked{
		"q": {ranked("A", "https://a.example", "", false), ranked("B", "https://b.example", "", false)},
	}}
	m := newTestModel(fs)
	m.Update(submit(t, m, "q"))

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := m.Update(enter())
	open, ok := find[openPageMsg](collect(cmd))
	require.True(t, ok)
	assert.Equal(t, "https://b.example", open.result.URL)

	_, cmd = m.Update(open)
	assert.Equal(t, screenPage, m.screen)
	require.Len(t, m.views, 1)
	assert.True(t, m.views[0].Loading)

	loaded, ok := find[pageLoadedMsg](collect(cmd))
	require.True(t, ok)
	m.Update(loaded)
	v := m.views[0]
	assert.False(t, v.Loading)
	assert.Equal(t, "Rendered https://b.example", v.Page.Title)
	assert.Contains(t, v.markdown(), "body text")
}

func TestMouseClick_ActivatesItem(t *testing.T) {
	fs := &fakeSearcher{results: map[string][]priority.Ranked{
		"q": {ranked("A", "https://a.example", "", false)},
	}}
	m := newTestModel(fs)
	m.Update(submit(t, m, "q"))

	_, cmd := m.Update(tea.MouseMsg{X: 3, Y: headerHeight, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	open, ok := find[openPageMsg](collect(cmd))
	require.True(t, ok)
	assert.Equal(t, "https://a.example", open.result.URL)
}

func TestPageViews_Independent(t *testing.T) {
	m := newTestModel(&fakeSearcher{})
	_, cmdA := m.Update(openPageMsg{result: ranked("A", "https://a.example", "", false)})
	_, cmdB := m.Update(openPageMsg{result: ranked("B", "https://b.example", "", false)})
	require.Len(t, m.views, 2)
	assert.Equal(t, 1, m.active)

	loadedA, _ := find[pageLoadedMsg](collect(cmdA))
	loadedB, _ := find[pageLoadedMsg](collect(cmdB))

	// close B before its page arrives
	m.Update(key("x"))
	require.Len(t, m.views, 1)
	assert.Equal(t, screenPage, m.screen)
	m.Update(loadedB)
	m.Update(loadedA)
	assert.Equal(t, "Rendered https://a.example", m.views[0].Page.Title)

	m.Update(key("x"))
	assert.Empty(t, m.views)
	assert.Equal(t, screenSearch, m.screen)
}

func TestPageView_CycleAndBack(t *testing.T) {
	m := newTestModel(&fakeSearcher{})
	m.Update(openPageMsg{result: ranked("A", "https://a.example", "", false)})
	m.Update(openPageMsg{result: ranked("B", "https://b.example", "", false)})
	m.Update(key("]"))
	assert.Equal(t, 0, m.active)
	m.Update(key("["))
	assert.Equal(t, 1, m.active)
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, screenSearch, m.screen)
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlP})
	assert.Equal(t, screenPage, m.screen)
}

func TestPageView_LoadError(t *testing.T) {
	m := New(Deps{Searcher: &fakeSearcher{}, Renderer: fakeRenderer{err: errors.New("refused")}})
	_, cmd := m.Update(openPageMsg{result: ranked("A", "https://a.example", "", false)})
	loaded, ok := find[pageLoadedMsg](collect(cmd))
	require.True(t, ok)
	m.Update(loaded)
	assert.Contains(t, m.views[0].content, "Could not load page: refused")
}

func TestPageView_Summarize(t *testing.T) {
	m := New(Deps{Searcher: &fakeSearcher{}, Renderer: fakeRenderer{}, Summarizer: fakeSummarizer{}})
	_, cmd := m.Update(openPageMsg{result: ranked("A", "https://a.example", "", false)})
	loaded, _ := find[pageLoadedMsg](collect(cmd))
	m.Update(loaded)

	_, cmd = m.Update(key("s"))
	assert.True(t, m.views[0].Summarizing)
	sum, ok := find[summaryMsg](collect(cmd))
	require.True(t, ok)
	m.Update(sum)
	assert.Equal(t, "summary of https://a.example", m.views[0].Summary)
	assert.Contains(t, m.views[0].content, "summary of https://a.example")
}

func TestPageView_SummarizeDisabled(t *testing.T) {
	m := newTestModel(&fakeSearcher{})
	m.Update(openPageMsg{result: ranked("A", "https://a.example", "", false)})
	_, cmd := m.Update(key("s"))
	assert.Nil(t, cmd)
	assert.Contains(t, m.status, "summaries are off")
}

func TestPageView_OpenExternal(t *testing.T) {
	var opened string
	m := New(Deps{Searcher: &fakeSearcher{}, Renderer: fakeRenderer{}, OpenExternal: func(u string) error {
		opened = u
		return nil
	}})
	m.Update(openPageMsg{result: ranked("A", "https://a.example", "", false)})
	_, cmd := m.Update(key("o"))
	msgs := collect(cmd)
	assert.Equal(t, "https://a.example", opened)
	done, ok := find[externalOpenedMsg](msgs)
	require.True(t, ok)
	m.Update(done)
	assert.Equal(t, "opened https://a.example", m.status)
}

func TestCtrlC_QuitsAndCancels(t *testing.T) {
	m := newTestModel(&fakeSearcher{})
	m.Update(openPageMsg{result: ranked("A", "https://a.example", "", false)})
	v := m.views[0]
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	_, ok := find[tea.QuitMsg](collect(cmd))
	assert.True(t, ok)
	assert.Error(t, v.ctx.Err())
}

func TestSetQuery_SearchesOnInit(t *testing.T) {
	fs := &fakeSearcher{}
	m := newTestModel(fs)
	m.SetQuery("preset terms")
	_, ok := find[searchResultMsg](collect(m.Init()))
	assert.True(t, ok)
	assert.Equal(t, []string{"preset terms"}, fs.calls)
}

func TestCopyURL(t *testing.T) {
	var copied string
	fs := &fakeSearcher{results: map[string][]priority.Ranked{
		"q": {ranked("A", "https://a.example", "", false)},
	}}
	m := New(Deps{Searcher: fs, Renderer: fakeRenderer{}, Copy: func(s string) error {
		copied = s
		return nil
	}})
	m.Update(submit(t, m, "q"))
	_, cmd := m.Update(key("y"))
	done, ok := find[copiedMsg](collect(cmd))
	require.True(t, ok)
	assert.Equal(t, "https://a.example", copied)
	m.Update(done)
	assert.Equal(t, "copied https://a.example", m.status)

	m.deps.Copy = func(string) error { return errors.New("no clipboard") }
	_, cmd = m.Update(key("y"))
	done, _ = find[copiedMsg](collect(cmd))
	m.Update(done)
	assert.Contains(t, m.status, "no clipboard")
}
