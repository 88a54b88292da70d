package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/checklist-sync/internal/model"
)

// checklistLoadedMsg carries the result of loading the checklist.
type checklistLoadedMsg struct {
	checklist *model.Checklist
	err       error
}

// itemMutatedMsg carries the result of an item mutation. The list is
// reloaded regardless so optimistic offline writes show up immediately.
type itemMutatedMsg struct {
	err error
}

// loadChecklist returns a command that ensures the checklist exists
// and loads its current items.
func (m Model) loadChecklist() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		c, err := s.CreateOrGet(context.Background())
		return checklistLoadedMsg{checklist: c, err: err}
	}
}

// addItem returns a command that appends a new item.
func (m Model) addItem(title string) tea.Cmd {
	s := m.store
	logger := m.logger
	return func() tea.Msg {
		_, err := s.AddItem(context.Background(), title)
		if err != nil {
			logger.Warn("add item failed", zap.Error(err))
		}
		return itemMutatedMsg{err: err}
	}
}

// renameItem returns a command that retitles an existing item.
func (m Model) renameItem(itemID, title string) tea.Cmd {
	s := m.store
	logger := m.logger
	return func() tea.Msg {
		_, err := s.UpdateItem(context.Background(), itemID, title)
		if err != nil {
			logger.Warn("rename item failed", zap.Error(err))
		}
		return itemMutatedMsg{err: err}
	}
}

// toggleItem returns a command that flips an item's completed state.
func (m Model) toggleItem(itemID string) tea.Cmd {
	s := m.store
	logger := m.logger
	return func() tea.Msg {
		_, err := s.ToggleItem(context.Background(), itemID)
		if err != nil {
			logger.Warn("toggle item failed", zap.Error(err))
		}
		return itemMutatedMsg{err: err}
	}
}

// deleteItem returns a command that removes an item.
func (m Model) deleteItem(itemID string) tea.Cmd {
	s := m.store
	logger := m.logger
	return func() tea.Msg {
		err := s.DeleteItem(context.Background(), itemID)
		if err != nil {
			logger.Warn("delete item failed", zap.Error(err))
		}
		return itemMutatedMsg{err: err}
	}
}

// duplicateItem returns a command that inserts a copy of an item
// directly after the original.
func (m Model) duplicateItem(itemID string) tea.Cmd {
	s := m.store
	logger := m.logger
	return func() tea.Msg {
		_, err := s.DuplicateItem(context.Background(), itemID)
		if err != nil {
			logger.Warn("duplicate item failed", zap.Error(err))
		}
		return itemMutatedMsg{err: err}
	}
}
