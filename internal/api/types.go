package api

import (
	"strings"

	"github.com/nhle/checklist-sync/internal/model"
)

// createChecklistRequest is the body of POST /checklists.
type createChecklistRequest struct {
	Name string     `json:"name"`
	Mode model.Mode `json:"mode"`
}

// updateItemRequest is the body of PUT /checklists/{slug}/items/{itemId}.
// Nil fields are omitted and left unchanged by the server.
type updateItemRequest struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// addItemRequest is the body of POST /checklists/{slug}/items.
type addItemRequest struct {
	Title string `json:"title"`
}

// checklistResponse is the response schema for checklist-scoped endpoints.
type checklistResponse struct {
	Success   bool             `json:"success"`
	Checklist *model.Checklist `json:"checklist,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// itemResponse is the response schema for item-scoped endpoints.
type itemResponse struct {
	Success bool                 `json:"success"`
	Item    *model.ChecklistItem `json:"item,omitempty"`
	Error   string               `json:"error,omitempty"`
}

// errorResponse is the generic error body the service returns on
// non-2xx statuses.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// message returns whichever error text field is populated.
func (e errorResponse) message() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

// isNotFoundMessage reports whether msg is shaped like the service's
// "not found" error. Absence is signaled by message text, not by a
// distinguished status alone.
func isNotFoundMessage(msg string) bool {
	return strings.Contains(strings.ToLower(msg), "not found")
}

// isConflictMessage reports whether msg is shaped like the service's
// "already exists" error.
func isConflictMessage(msg string) bool {
	return strings.Contains(strings.ToLower(msg), "already exists")
}
