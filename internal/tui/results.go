package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// NoResults is shown when a search returns nothing.
const NoResults = "No results found."

type listState int

const (
	listIdle listState = iota
	listResults
	listEmpty
	listFailed
)

// ResultList shows the current result set in a scrollable viewport and maps
// screen lines back to items for mouse activation.
type ResultList struct {
	theme    Theme
	items    []Item
	selected int
	state    listState
	// offsets[i] is the first content line of item i; heights[i] its height.
	offsets  []int
	heights  []int
	viewport viewport.Model
	width    int
	height   int
}

// NewResultList creates an empty list.
func NewResultList(th Theme) ResultList {
	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3
	return ResultList{theme: th, viewport: vp}
}

// SetSize sets the viewport dimensions.
func (l *ResultList) SetSize(w, h int) {
	if h < 1 {
		h = 1
	}
	l.width, l.height = w, h
	l.viewport.Width, l.viewport.Height = w, h
	l.render()
}

// SetItems replaces the list contents and selects the first item.
func (l *ResultList) SetItems(items []Item, failed bool) {
	l.items = items
	l.selected = 0
	switch {
	case len(items) > 0:
		l.state = listResults
	case failed:
		l.state = listFailed
	default:
		l.state = listEmpty
	}
	l.viewport.GotoTop()
	l.render()
}

// Clear empties the list while a new search runs.
func (l *ResultList) Clear() {
	l.items = nil
	l.selected = 0
	l.state = listIdle
	l.viewport.GotoTop()
	l.render()
}

// UpdateViewport forwards scrolling input to the viewport.
func (l *ResultList) UpdateViewport(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	l.viewport, cmd = l.viewport.Update(msg)
	return cmd
}

// Len returns the number of items.
func (l *ResultList) Len() int { return len(l.items) }

// Selected returns the selected item.
func (l *ResultList) Selected() (Item, bool) {
	if l.selected < 0 || l.selected >= len(l.items) {
		return Item{}, false
	}
	return l.items[l.selected], true
}

// Move shifts the selection by delta and scrolls it into view.
func (l *ResultList) Move(delta int) {
	if len(l.items) == 0 {
		return
	}
	l.Select(l.selected + delta)
}

// Select selects item i, clamped to the list bounds.
func (l *ResultList) Select(i int) {
	if len(l.items) == 0 {
		return
	}
	if i < 0 {
		i = 0
	}
	if i >= len(l.items) {
		i = len(l.items) - 1
	}
	l.selected = i
	l.render()
	l.scrollIntoView()
}

// ItemAt maps a line relative to the top of the list to an item index.
func (l *ResultList) ItemAt(line int) (int, bool) {
	if line < 0 || line >= l.height {
		return 0, false
	}
	content := line + l.viewport.YOffset
	for i, off := range l.offsets {
		if content >= off && content < off+l.heights[i] {
			return i, true
		}
	}
	return 0, false
}

func (l *ResultList) scrollIntoView() {
	if l.selected >= len(l.offsets) {
		return
	}
	top, bottom := l.offsets[l.selected], l.offsets[l.selected]+l.heights[l.selected]
	switch {
	case top < l.viewport.YOffset:
		l.viewport.SetYOffset(top)
	case bottom > l.viewport.YOffset+l.viewport.Height:
		l.viewport.SetYOffset(bottom - l.viewport.Height)
	}
}

func (l *ResultList) render() {
	l.offsets = l.offsets[:0]
	l.heights = l.heights[:0]
	w := l.width
	if w <= 0 {
		w = 80
	}
	switch l.state {
	case listIdle:
		l.viewport.SetContent("")
		return
	case listEmpty:
		l.viewport.SetContent(l.theme.Empty.Width(w).Render(NoResults))
		return
	case listFailed:
		l.viewport.SetContent(l.theme.Empty.Width(w).Render(NoResults + " The search provider could not be reached."))
		return
	}
	sep := l.theme.Separator.Render(strings.Repeat("─", w))
	var b strings.Builder
	line := 0
	for i, it := range l.items {
		block := it.Render(l.theme, w, i == l.selected)
		h := lipgloss.Height(block)
		l.offsets = append(l.offsets, line)
		l.heights = append(l.heights, h)
		b.WriteString(block)
		b.WriteString("\n")
		b.WriteString(sep)
		b.WriteString("\n")
		line += h + 1
	}
	l.viewport.SetContent(strings.TrimSuffix(b.String(), "\n"))
}

// View renders the list.
func (l ResultList) View() string {
	return l.viewport.View()
}
