// Package itemform implements the add/rename form for checklist items.
package itemform

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/checklist-sync/internal/model"
	"github.com/nhle/checklist-sync/internal/theme"
)

// SubmittedMsg is dispatched when the form is confirmed. EditID is
// empty for a new item.
type SubmittedMsg struct {
	Title  string
	EditID string
}

// CancelMsg is dispatched when the user aborts the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title string
}

// Model is the Bubble Tea model for the item add/rename form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	editMode bool
	editID   string
	width    int
	height   int
}

// New creates a new item form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// StartCreate initializes the form for adding a new item.
func (m *Model) StartCreate() tea.Cmd {
	m.editMode = false
	m.editID = ""
	m.fb.title = ""
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit initializes the form for renaming an existing item.
func (m *Model) StartEdit(item model.ChecklistItem) tea.Cmd {
	m.editMode = true
	m.editID = item.ID
	m.fb.title = item.Title
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the item form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		title := strings.TrimSpace(m.fb.title)
		editID := m.editID
		return m, func() tea.Msg {
			return SubmittedMsg{Title: title, EditID: editID}
		}
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the item form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Item"
	if m.editMode {
		titleText = "Rename Item"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("What needs doing?").
				Value(&m.fb.title).
				Validate(validateTitle),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 8 {
		h = 8
	}
	return h
}

func validateTitle(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("title is required")
	}
	return nil
}
