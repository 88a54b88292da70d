// Package app wires the checklist store, sync poller, and views into
// the root Bubble Tea model.
package app

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/checklist-sync/internal/checklist"
	"github.com/nhle/checklist-sync/internal/keys"
	"github.com/nhle/checklist-sync/internal/model"
	appsync "github.com/nhle/checklist-sync/internal/sync"
	"github.com/nhle/checklist-sync/internal/theme"
	"github.com/nhle/checklist-sync/internal/ui"
	helpview "github.com/nhle/checklist-sync/internal/ui/help"
	"github.com/nhle/checklist-sync/internal/ui/itemform"
	"github.com/nhle/checklist-sync/internal/ui/itemlist"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewForm
	ViewHelp
)

// Model is the root Bubble Tea model that manages view routing, layout,
// and access to the checklist store.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	store        *checklist.Store
	poller       *appsync.Poller
	keys         *keys.KeyMap
	logger       *zap.Logger
	itemList     itemlist.Model
	itemForm     itemform.Model
	helpView     helpview.Model
	ready        bool
	statusNotice string
	statusIsErr  bool
}

// New creates the root application model for one checklist.
func New(store *checklist.Store, poller *appsync.Poller, logger *zap.Logger) Model {
	k := keys.DefaultKeyMap()
	if logger == nil {
		logger = zap.NewNop()
	}

	return Model{
		currentView: ViewList,
		store:       store,
		poller:      poller,
		keys:        k,
		logger:      logger,
		itemList:    itemlist.New(k, store.Name(), 80, 24),
		itemForm:    itemform.New(80, 24),
		helpView:    helpview.New(k, 80, 24),
	}
}

// Init loads the checklist and starts the background sync poller.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadChecklist(),
		m.poller.Start(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.itemList.SetSize(contentWidth, contentHeight)
		m.itemForm.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		// Forward to the active view so huh forms can lay themselves out.
		return m.updateActiveView(msg)

	case checklistLoadedMsg:
		if msg.err != nil {
			m.statusNotice = msg.err.Error()
			m.statusIsErr = true
			return m, nil
		}
		m.statusIsErr = false
		if msg.checklist != nil {
			m.itemList.SetTitle(msg.checklist.Name)
			return m, m.itemList.SetItems(msg.checklist.Items)
		}
		return m, nil

	case itemMutatedMsg:
		if msg.err != nil {
			m.statusNotice = msg.err.Error()
			m.statusIsErr = true
		} else {
			m.statusNotice = ""
			m.statusIsErr = false
		}
		return m, m.loadChecklist()

	case appsync.ResultMsg:
		if msg.Err != nil {
			m.statusNotice = fmt.Sprintf("sync failed: %v", msg.Err)
			m.statusIsErr = true
		} else if msg.SyncedItems > 0 {
			m.statusNotice = fmt.Sprintf("synced %d items", msg.SyncedItems)
			m.statusIsErr = false
		}
		return m, tea.Batch(m.loadChecklist(), m.poller.WaitForNextResult())

	case itemform.SubmittedMsg:
		m.currentView = ViewList
		if msg.EditID == "" {
			return m, m.addItem(msg.Title)
		}
		return m, m.renameItem(msg.EditID, msg.Title)

	case itemform.CancelMsg:
		m.currentView = ViewList
		return m, nil

	case tea.KeyMsg:
		if cmd, handled := m.handleGlobalKeys(msg); handled {
			return m, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKeys processes keys that apply outside text input focus.
// It returns handled=false when the key should fall through to the
// active view.
func (m *Model) handleGlobalKeys(msg tea.KeyMsg) (tea.Cmd, bool) {
	// Forms and the search input own the keyboard while active.
	if m.currentView == ViewForm || m.itemList.Searching() {
		if msg.String() == "ctrl+c" {
			m.poller.Stop()
			return tea.Quit, true
		}
		return nil, false
	}

	switch msg.String() {
	case "ctrl+c":
		m.poller.Stop()
		return tea.Quit, true

	case "q":
		if m.currentView == ViewList {
			m.poller.Stop()
			return tea.Quit, true
		}

	case "?":
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return nil, true

	case "esc":
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return nil, true
		}

	case "a":
		if m.currentView == ViewList {
			m.previousView = m.currentView
			m.currentView = ViewForm
			return m.itemForm.StartCreate(), true
		}

	case "e":
		if m.currentView == ViewList {
			item, ok := m.itemList.SelectedItem()
			if !ok {
				return nil, true
			}
			m.previousView = m.currentView
			m.currentView = ViewForm
			return m.itemForm.StartEdit(item), true
		}

	case "enter", " ":
		if m.currentView == ViewList {
			item, ok := m.itemList.SelectedItem()
			if !ok {
				return nil, true
			}
			return m.toggleItem(item.ID), true
		}

	case "x":
		if m.currentView == ViewList {
			item, ok := m.itemList.SelectedItem()
			if !ok {
				return nil, true
			}
			return m.deleteItem(item.ID), true
		}

	case "d":
		if m.currentView == ViewList {
			item, ok := m.itemList.SelectedItem()
			if !ok {
				return nil, true
			}
			return m.duplicateItem(item.ID), true
		}

	case "s":
		if m.currentView == ViewList {
			m.statusNotice = "syncing..."
			m.statusIsErr = false
			return m.poller.Flush(m.store.Slug()), true
		}
	}

	return nil, false
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.itemList, cmd = m.itemList.Update(msg)
	case ViewForm:
		m.itemForm, cmd = m.itemForm.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	modeBadge := theme.ModeLabelStyle(string(m.store.Mode())).Render(string(m.store.Mode()))
	header := m.layout.RenderHeader(m.store.Name(), modeBadge, m.syncStatus())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewList:
		return m.itemList.View()
	case ViewForm:
		return m.itemForm.View()
	case ViewHelp:
		return m.helpView.View()
	default:
		return ""
	}
}

// syncStatus returns a short string describing the sync state.
func (m Model) syncStatus() string {
	if m.store.Mode() == model.ModeLocal {
		return "local"
	}

	if m.store.SyncStatus().Pending {
		return theme.PendingBadgeStyle.Render("pending")
	}

	for _, s := range m.poller.Statuses() {
		if s.Slug != m.store.Slug() {
			continue
		}
		switch s.State {
		case appsync.Running:
			return "syncing"
		case appsync.Failed:
			return theme.ErrorStyle.Render("sync error")
		}
	}
	return "synced"
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.statusNotice != "" && m.currentView == ViewList {
		if m.statusIsErr {
			return theme.ErrorStyle.Render(m.statusNotice)
		}
		return m.statusNotice
	}

	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewForm:
		return "enter submit | esc cancel"
	default:
		return "q quit | ? help | a add | enter toggle | e rename | d duplicate | x delete | s sync"
	}
}
