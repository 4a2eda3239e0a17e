package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/devsearch/internal/app"
	"github.com/hyperifyio/devsearch/internal/browser"
	"github.com/hyperifyio/devsearch/internal/priority"
)

// Ensure *Model satisfies tea.Model.
var _ tea.Model = (*Model)(nil)

// Searcher runs one query.
type Searcher interface {
	Search(ctx context.Context, query string) (app.ResultSet, error)
}

// Summarizer condenses a rendered page.
type Summarizer interface {
	Summarize(ctx context.Context, p browser.Page) (string, error)
}

// Deps are the collaborators of the search window.
type Deps struct {
	Searcher Searcher
	Renderer browser.Renderer
	// Summarizer is optional; summaries are disabled when nil.
	Summarizer Summarizer
	// OpenExternal defaults to browser.OpenExternal.
	OpenExternal func(url string) error
	// Copy defaults to the system clipboard.
	Copy  func(text string) error
	Theme Theme
}

type screen int

const (
	screenSearch screen = iota
	screenPage
)

type focusArea int

const (
	focusInput focusArea = iota
	focusList
)

const (
	headerHeight = 3 // title bar, query box, rule
	footerHeight = 1
	windowTitle  = "Programmer Search"
)

// Model is the root Bubble Tea model.
type Model struct {
	deps  Deps
	theme Theme

	ctx       context.Context
	cancelAll context.CancelFunc

	input   textinput.Model
	list    ResultList
	spinner spinner.Model
	focus   focusArea
	screen  screen

	// seq increments per submit; only the matching searchResultMsg is shown.
	seq          int
	searching    bool
	cancelSearch context.CancelFunc
	lastSet      app.ResultSet
	status       string

	views  []*PageView
	active int
	nextID int

	// autoSubmit runs the preset query on Init.
	autoSubmit bool

	md      *glamour.TermRenderer
	mdWidth int

	width  int
	height int
}

// New creates the search window.
func New(deps Deps) *Model {
	if deps.OpenExternal == nil {
		deps.OpenExternal = browser.OpenExternal
	}
	if deps.Copy == nil {
		deps.Copy = clipboard.WriteAll
	}
	if deps.Theme.Name == "" {
		deps.Theme = NewTheme("dark")
	}
	th := deps.Theme

	ti := textinput.New()
	ti.Placeholder = "Enter your search query..."
	ti.Prompt = "› "
	ti.PromptStyle = th.Prompt
	ti.PlaceholderStyle = th.Placeholder
	ti.TextStyle = th.Input
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	ctx, cancel := context.WithCancel(context.Background())
	m := &Model{
		deps:      deps,
		theme:     th,
		ctx:       ctx,
		cancelAll: cancel,
		input:     ti,
		list:      NewResultList(th),
		spinner:   sp,
		width:     80,
		height:    24,
	}
	m.layout()
	return m
}

// SetQuery presets the query box; the search starts when the program runs.
func (m *Model) SetQuery(q string) {
	m.input.SetValue(q)
	m.input.CursorEnd()
	m.autoSubmit = true
}

// Init starts the cursor blink and any preset search.
func (m *Model) Init() tea.Cmd {
	if m.autoSubmit {
		m.autoSubmit = false
		return tea.Batch(textinput.Blink, m.submit())
	}
	return textinput.Blink
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.shutdown()
			return m, tea.Quit
		}
		if m.screen == screenPage {
			return m, m.updatePage(msg)
		}
		return m, m.updateSearch(msg)

	case tea.MouseMsg:
		if m.screen == screenPage {
			if v := m.activeView(); v != nil {
				var cmd tea.Cmd
				v.viewport, cmd = v.viewport.Update(msg)
				return m, cmd
			}
			return m, nil
		}
		return m, m.handleMouse(msg)

	case searchResultMsg:
		return m, m.handleSearchResult(msg)

	case openPageMsg:
		return m, m.openPage(msg.result)

	case pageLoadedMsg:
		v := m.view(msg.id)
		if v == nil {
			return m, nil // closed while loading
		}
		v.Loading = false
		v.Page, v.Err = msg.page, msg.err
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			log.Warn().Err(msg.err).Str("url", v.Result.URL).Msg("page load failed")
		}
		v.refresh(m.renderer(), m.theme)
		return m, nil

	case summaryMsg:
		v := m.view(msg.id)
		if v == nil {
			return m, nil
		}
		v.Summarizing = false
		v.Summary, v.SummaryErr = msg.text, msg.err
		if msg.err != nil {
			log.Warn().Err(msg.err).Str("url", v.Result.URL).Msg("summary failed")
		}
		v.refresh(m.renderer(), m.theme)
		return m, nil

	case externalOpenedMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			log.Warn().Err(msg.err).Msg("open external failed")
		} else {
			m.status = "opened " + msg.url
		}
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.status = "copy failed: " + msg.err.Error()
			log.Warn().Err(msg.err).Msg("clipboard write failed")
		} else {
			m.status = "copied " + msg.url
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.screen == screenSearch && m.focus == focusInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		if m.focus == focusInput {
			return m.submit()
		}
		if it, ok := m.list.Selected(); ok {
			return it.Activate()
		}
		return nil
	case "tab", "shift+tab":
		m.setFocus(1 - m.focus)
		return nil
	case "up":
		m.list.Move(-1)
		return nil
	case "down":
		m.list.Move(1)
		return nil
	case "pgup", "pgdown":
		return m.list.UpdateViewport(msg)
	case "ctrl+p":
		if len(m.views) > 0 {
			m.screen = screenPage
		}
		return nil
	case "esc":
		m.setFocus(focusInput)
		return nil
	}
	if m.focus == focusList {
		switch msg.String() {
		case "k":
			m.list.Move(-1)
		case "j":
			m.list.Move(1)
		case "/":
			m.setFocus(focusInput)
		case "o":
			if it, ok := m.list.Selected(); ok {
				return openExternalCmd(m.deps.OpenExternal, it.Result.URL)
			}
		case "y":
			if it, ok := m.list.Selected(); ok {
				return copyCmd(m.deps.Copy, it.Result.URL)
			}
		}
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) updatePage(msg tea.KeyMsg) tea.Cmd {
	v := m.activeView()
	if v == nil {
		m.screen = screenSearch
		return nil
	}
	switch msg.String() {
	case "esc", "backspace", "q":
		m.screen = screenSearch
	case "x":
		m.closeView(m.active)
	case "[":
		m.active = (m.active - 1 + len(m.views)) % len(m.views)
	case "]":
		m.active = (m.active + 1) % len(m.views)
	case "o":
		return openExternalCmd(m.deps.OpenExternal, v.Result.URL)
	case "y":
		return copyCmd(m.deps.Copy, v.Result.URL)
	case "r":
		return m.load(v)
	case "s":
		return m.summarize(v)
	default:
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		if msg.Y == 1 {
			m.setFocus(focusInput)
			return nil
		}
		if idx, ok := m.list.ItemAt(msg.Y - headerHeight); ok {
			m.setFocus(focusList)
			m.list.Select(idx)
			if it, ok := m.list.Selected(); ok {
				return it.Activate()
			}
		}
		return nil
	}
	return m.list.UpdateViewport(msg)
}

// submit starts a search for the query box contents. A blank query does
// nothing. An in-flight search is cancelled and its result will be ignored.
func (m *Model) submit() tea.Cmd {
	q := strings.TrimSpace(m.input.Value())
	if q == "" || m.deps.Searcher == nil {
		return nil
	}
	if m.cancelSearch != nil {
		m.cancelSearch()
		log.Debug().Int("seq", m.seq).Msg("superseding in-flight search")
	}
	m.seq++
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancelSearch = cancel
	m.searching = true
	m.status = ""
	m.list.Clear()
	return tea.Batch(searchCmd(ctx, m.deps.Searcher, m.seq, q), m.spinner.Tick)
}

func (m *Model) handleSearchResult(msg searchResultMsg) tea.Cmd {
	if msg.seq != m.seq {
		return nil
	}
	if m.cancelSearch != nil {
		m.cancelSearch()
		m.cancelSearch = nil
	}
	m.searching = false
	if msg.err != nil {
		if !errors.Is(msg.err, context.Canceled) && !errors.Is(msg.err, app.ErrEmptyQuery) {
			m.status = msg.err.Error()
		}
		return nil
	}
	m.lastSet = msg.set
	items := make([]Item, 0, len(msg.set.Results))
	for _, r := range msg.set.Results {
		items = append(items, Item{Result: r, OnActivate: openPageCmd})
	}
	m.list.SetItems(items, msg.set.Failed)
	if len(items) > 0 {
		m.setFocus(focusList)
		m.status = fmt.Sprintf("%d results, %d prioritized, %s", len(items), msg.set.PrioritizedCount(), msg.set.Elapsed.Round(1e6))
	}
	return nil
}

func (m *Model) openPage(r priority.Ranked) tea.Cmd {
	m.nextID++
	v := newPageView(m.ctx, m.nextID, r)
	v.setSize(m.width, m.pageHeight())
	m.views = append(m.views, v)
	m.active = len(m.views) - 1
	m.screen = screenPage
	return m.load(v)
}

func (m *Model) load(v *PageView) tea.Cmd {
	v.Loading, v.Err = true, nil
	if m.deps.Renderer == nil {
		v.Loading, v.Err = false, errors.New("no page renderer configured")
		v.refresh(m.renderer(), m.theme)
		return nil
	}
	v.refresh(m.renderer(), m.theme)
	return tea.Batch(loadPageCmd(v.ctx, m.deps.Renderer, v.ID, v.Result.URL), m.spinner.Tick)
}

func (m *Model) summarize(v *PageView) tea.Cmd {
	if m.deps.Summarizer == nil {
		m.status = "summaries are off; set llm.model to enable them"
		return nil
	}
	if v.Loading || v.Err != nil || v.Summarizing {
		return nil
	}
	v.Summarizing, v.SummaryErr = true, nil
	v.refresh(m.renderer(), m.theme)
	return tea.Batch(summarizeCmd(v.ctx, m.deps.Summarizer, v.ID, v.Page), m.spinner.Tick)
}

func (m *Model) closeView(i int) {
	if i < 0 || i >= len(m.views) {
		return
	}
	m.views[i].Close()
	m.views = append(m.views[:i], m.views[i+1:]...)
	if len(m.views) == 0 {
		m.active = 0
		m.screen = screenSearch
		return
	}
	if m.active >= len(m.views) {
		m.active = len(m.views) - 1
	}
}

func (m *Model) view(id int) *PageView {
	for _, v := range m.views {
		if v.ID == id {
			return v
		}
	}
	return nil
}

func (m *Model) activeView() *PageView {
	if m.active < 0 || m.active >= len(m.views) {
		return nil
	}
	return m.views[m.active]
}

func (m *Model) setFocus(f focusArea) {
	if f == focusList && m.list.Len() == 0 {
		f = focusInput
	}
	m.focus = f
	if f == focusInput {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

func (m *Model) busy() bool {
	if m.searching {
		return true
	}
	for _, v := range m.views {
		if v.Loading || v.Summarizing {
			return true
		}
	}
	return false
}

func (m *Model) shutdown() {
	for _, v := range m.views {
		v.Close()
	}
	m.cancelAll()
}

func (m *Model) pageHeight() int { return m.height - 1 - footerHeight }

func (m *Model) layout() {
	m.input.Width = m.width - 4
	m.list.SetSize(m.width, m.height-headerHeight-footerHeight)
	r := m.renderer()
	for _, v := range m.views {
		v.setSize(m.width, m.pageHeight())
		v.refresh(r, m.theme)
	}
}

// renderer returns a glamour renderer wrapped to the current width.
func (m *Model) renderer() *glamour.TermRenderer {
	w := m.width - 2
	if w < 20 {
		w = 20
	}
	if m.md != nil && m.mdWidth == w {
		return m.md
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.theme.Glamour),
		glamour.WithWordWrap(w),
	)
	if err != nil {
		log.Warn().Err(err).Msg("markdown renderer unavailable")
		return nil
	}
	m.md, m.mdWidth = r, w
	return r
}

// View renders the current screen.
func (m *Model) View() string {
	if m.screen == screenPage && m.activeView() != nil {
		return m.pageScreen()
	}
	return m.searchScreen()
}

func (m *Model) searchScreen() string {
	th := m.theme
	right := ""
	if m.searching {
		right = m.spinner.View() + " searching"
	}
	title := th.TitleBar.Width(m.width).Render(spread(windowTitle, right, m.width-2))
	rule := th.Separator.Render(strings.Repeat("─", max(m.width, 1)))

	help := "enter search · tab focus · ↑/↓ select · enter/click open · o browser · y copy · ctrl+c quit"
	if len(m.views) > 0 {
		help = fmt.Sprintf("ctrl+p pages (%d) · ", len(m.views)) + help
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.input.View(),
		rule,
		m.list.View(),
		m.footer(help),
	)
}

func (m *Model) pageScreen() string {
	th := m.theme
	tabs := make([]string, 0, len(m.views))
	for i, v := range m.views {
		label := v.Label()
		if v.Loading {
			label = m.spinner.View() + " " + label
		}
		if i == m.active {
			tabs = append(tabs, th.PageTabActive.Render(label))
		} else {
			tabs = append(tabs, th.PageTab.Render(label))
		}
	}
	bar := lipgloss.NewStyle().MaxWidth(m.width).Render(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	help := "esc results · [ ] switch · x close · o browser · y copy · r reload"
	if m.deps.Summarizer != nil {
		help += " · s summarize"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		bar,
		m.activeView().viewport.View(),
		m.footer(help),
	)
}

func (m *Model) footer(help string) string {
	text := help
	if m.status != "" {
		text = m.status + " · " + help
	}
	return m.theme.Status.Width(m.width).Render(truncate(text, m.width-2))
}

// spread places left and right on one line of the given width.
func spread(left, right string, width int) string {
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}
