package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hyperifyio/devsearch/internal/priority"
)

// Placeholders shown for results missing a field.
const (
	NoTitle       = "No title"
	NoDescription = "No description available"
)

// Item is one activatable entry in the result list. Activation behaviour is
// injected through OnActivate rather than built into the list.
type Item struct {
	Result     priority.Ranked
	OnActivate func(priority.Ranked) tea.Cmd
}

// Activate runs the item's callback.
func (it Item) Activate() tea.Cmd {
	if it.OnActivate == nil {
		return nil
	}
	return it.OnActivate(it.Result)
}

// Title returns the result title or NoTitle.
func (it Item) Title() string {
	if t := strings.TrimSpace(it.Result.Title); t != "" {
		return t
	}
	return NoTitle
}

// Snippet returns the result snippet or NoDescription.
func (it Item) Snippet() string {
	if s := strings.TrimSpace(it.Result.Snippet); s != "" {
		return s
	}
	return NoDescription
}

// Render draws the item at the given width.
func (it Item) Render(th Theme, width int, selected bool) string {
	inner := width
	if it.Result.Prioritized {
		// left border plus padding
		inner -= 2
	}
	if inner < 10 {
		inner = 10
	}
	title := th.ItemTitle.Render(it.Title())
	if it.Result.Prioritized {
		title = th.PriorityBadge.Render("★") + " " + title
	}
	block := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Width(inner).Render(title),
		th.ItemURL.Width(inner).Render(truncate(it.Result.URL, inner)),
		th.ItemSnippet.Width(inner).Render(it.Snippet()),
	)
	if it.Result.Prioritized {
		block = th.ItemPriority.Render(block)
	}
	if selected {
		block = th.ItemSelected.Width(width).Render(block)
	}
	return block
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 1 || len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
