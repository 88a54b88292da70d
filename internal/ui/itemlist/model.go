// Package itemlist renders the ordered items of one checklist.
package itemlist

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/checklist-sync/internal/keys"
	"github.com/nhle/checklist-sync/internal/model"
	"github.com/nhle/checklist-sync/internal/theme"
)

// Model is the checklist item list view component.
type Model struct {
	list        list.Model
	keys        *keys.KeyMap
	items       []model.ChecklistItem
	query       string
	searchMode  bool
	searchInput textinput.Model
	width       int
	height      int
}

// New creates a new item list model.
func New(k *keys.KeyMap, title string, width, height int) Model {
	l := list.New([]list.Item{}, Delegate{}, width, height-2)
	l.Title = title
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search items..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		keys:        k,
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// SetItems replaces the displayed items, reapplying the active search
// query.
func (m *Model) SetItems(items []model.ChecklistItem) tea.Cmd {
	m.items = items
	return m.applyQuery()
}

// SetTitle updates the list header.
func (m *Model) SetTitle(title string) {
	m.list.Title = title
}

// SelectedItem returns the currently focused checklist item.
func (m Model) SelectedItem() (model.ChecklistItem, bool) {
	entry, ok := m.list.SelectedItem().(Entry)
	if !ok {
		return model.ChecklistItem{}, false
	}
	return entry.Item, true
}

// Searching reports whether the search input currently owns the
// keyboard.
func (m Model) Searching() bool { return m.searchMode }

// Update handles messages for the item list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && m.searchMode {
		return m.handleSearchKeys(keyMsg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "/" {
		m.searchMode = true
		m.searchInput.Reset()
		return m, m.searchInput.Focus()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while in search mode.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.query = strings.TrimSpace(m.searchInput.Value())
		return m, m.applyQuery()

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.query = ""
		return m, m.applyQuery()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// applyQuery filters the backing items by the active query and pushes
// the result into the list.
func (m *Model) applyQuery() tea.Cmd {
	var entries []list.Item
	for _, it := range m.items {
		if m.query != "" && !strings.Contains(strings.ToLower(it.Title), strings.ToLower(m.query)) {
			continue
		}
		entries = append(entries, Entry{Item: it})
	}
	return m.list.SetItems(entries)
}

// View renders the item list view.
func (m Model) View() string {
	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, m.list.View())
	}

	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}

	return m.list.View()
}

// renderEmptyState shows guidance text when the checklist has no items.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.query != "" {
		return style.Render("No matching items.\nPress / to change the search.")
	}

	return style.Render("Checklist is empty.\n\nPress a to add the first item.")
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}
