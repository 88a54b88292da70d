package api

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/nhle/checklist-sync/internal/model"
)

// GetChecklist fetches a checklist by slug. Returns ErrNotFound when
// the service reports the checklist absent, by status or by message.
func (c *Client) GetChecklist(ctx context.Context, slug string) (*model.Checklist, error) {
	return c.getChecklist(ctx, "/checklists/"+url.PathEscape(slug))
}

// GetChecklistFresh fetches a checklist with a cache-defeating query
// parameter, bypassing any intermediate response caches. Used after a
// create conflict to read the record the conflict claims exists.
func (c *Client) GetChecklistFresh(ctx context.Context, slug string) (*model.Checklist, error) {
	path := fmt.Sprintf("/checklists/%s?_ts=%d",
		url.PathEscape(slug), time.Now().UnixNano())
	return c.getChecklist(ctx, path)
}

func (c *Client) getChecklist(ctx context.Context, path string) (*model.Checklist, error) {
	var resp checklistResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return checklistFromResponse(resp)
}

// CreateChecklist creates a new checklist. Returns ErrConflict when a
// checklist with the same slug already exists.
func (c *Client) CreateChecklist(ctx context.Context, name string, mode model.Mode) (*model.Checklist, error) {
	var resp checklistResponse
	err := c.post(ctx, "/checklists", createChecklistRequest{Name: name, Mode: mode}, &resp)
	if err != nil {
		return nil, err
	}
	return checklistFromResponse(resp)
}

// PutChecklist saves the full checklist record.
func (c *Client) PutChecklist(ctx context.Context, checklist *model.Checklist) error {
	var resp checklistResponse
	err := c.put(ctx, "/checklists/"+url.PathEscape(checklist.Slug), checklist, &resp)
	if err != nil {
		return err
	}
	if !resp.Success {
		return responseError(resp.Error)
	}
	return nil
}

// DeleteChecklist removes the checklist and all its items.
func (c *Client) DeleteChecklist(ctx context.Context, slug string) error {
	return c.delete(ctx, "/checklists/"+url.PathEscape(slug))
}

// AddItem appends a new item to the checklist.
func (c *Client) AddItem(ctx context.Context, slug, title string) (*model.ChecklistItem, error) {
	var resp itemResponse
	path := "/checklists/" + url.PathEscape(slug) + "/items"
	if err := c.post(ctx, path, addItemRequest{Title: title}, &resp); err != nil {
		return nil, err
	}
	return itemFromResponse(resp)
}

// ItemPatch selects which item fields to change; nil fields are left
// untouched by the server.
type ItemPatch struct {
	Title     *string
	Completed *bool
}

// UpdateItem patches an item's title and/or completion state.
func (c *Client) UpdateItem(ctx context.Context, slug, itemID string, patch ItemPatch) (*model.ChecklistItem, error) {
	var resp itemResponse
	path := "/checklists/" + url.PathEscape(slug) + "/items/" + url.PathEscape(itemID)
	body := updateItemRequest{Title: patch.Title, Completed: patch.Completed}
	if err := c.put(ctx, path, body, &resp); err != nil {
		return nil, err
	}
	return itemFromResponse(resp)
}

// DeleteItem removes an item from the checklist.
func (c *Client) DeleteItem(ctx context.Context, slug, itemID string) error {
	path := "/checklists/" + url.PathEscape(slug) + "/items/" + url.PathEscape(itemID)
	return c.delete(ctx, path)
}

// checklistFromResponse validates the response envelope at the
// boundary instead of trusting its shape at point of use.
func checklistFromResponse(resp checklistResponse) (*model.Checklist, error) {
	if !resp.Success {
		return nil, responseError(resp.Error)
	}
	if resp.Checklist == nil {
		return nil, &Error{Message: "response missing checklist payload"}
	}
	return resp.Checklist, nil
}

func itemFromResponse(resp itemResponse) (*model.ChecklistItem, error) {
	if !resp.Success {
		return nil, responseError(resp.Error)
	}
	if resp.Item == nil {
		return nil, &Error{Message: "response missing item payload"}
	}
	return resp.Item, nil
}

// responseError classifies a success=false envelope carried on a 2xx
// status. Some deployments report absence and conflicts this way
// rather than through the status code.
func responseError(msg string) error {
	switch {
	case isNotFoundMessage(msg):
		return ErrNotFound
	case isConflictMessage(msg):
		return ErrConflict
	case msg == "":
		return &Error{Message: "request failed"}
	default:
		return &Error{Message: msg}
	}
}
