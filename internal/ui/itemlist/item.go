package itemlist

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/checklist-sync/internal/model"
	"github.com/nhle/checklist-sync/internal/theme"
)

// Entry wraps a model.ChecklistItem so it can be used in a bubbles/list.
type Entry struct {
	Item model.ChecklistItem
}

// FilterValue returns the string used for fuzzy filtering.
func (e Entry) FilterValue() string { return e.Item.Title }

// Title returns the item title for the list.
func (e Entry) Title() string { return e.Item.Title }

// Description returns a short summary line for the list.
func (e Entry) Description() string {
	return relativeTime(e.Item.UpdatedAt)
}

// Delegate implements list.ItemDelegate for rendering checklist items.
type Delegate struct{}

// Height returns the number of lines each item takes.
func (d Delegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d Delegate) Spacing() int { return 0 }

// Update handles per-item messages (unused for now).
func (d Delegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single checklist item line.
func (d Delegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	entry, ok := item.(Entry)
	if !ok {
		return
	}

	it := entry.Item
	isSelected := index == m.Index()

	prefix := "○"
	if it.Completed {
		prefix = "✓"
	}

	timeStr := theme.HelpStyle.Render(relativeTime(it.UpdatedAt))
	line := fmt.Sprintf("%s %s  %s", prefix, it.Title, timeStr)

	switch {
	case isSelected:
		line = theme.SelectedItemStyle.Render(line)
	case it.Completed:
		line = theme.CompletedItemStyle.Render(line)
	default:
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		mins := int(d.Minutes())
		if mins == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", mins)
	case d < 24*time.Hour:
		hrs := int(d.Hours())
		if hrs == 1 {
			return "1h ago"
		}
		return fmt.Sprintf("%dh ago", hrs)
	case d < 7*24*time.Hour:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1d ago"
		}
		return fmt.Sprintf("%dd ago", days)
	default:
		weeks := int(d.Hours() / 24 / 7)
		if weeks == 1 {
			return "1w ago"
		}
		return fmt.Sprintf("%dw ago", weeks)
	}
}
