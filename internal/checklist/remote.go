package checklist

import (
	"context"
	"errors"

	"github.com/nhle/checklist-sync/internal/api"
	"github.com/nhle/checklist-sync/internal/model"
)

// remoteGet fetches the checklist from the API. A not-found-shaped
// response is normalized to absence, never surfaced as a failure.
func (s *Store) remoteGet(ctx context.Context) (*model.Checklist, error) {
	c, err := s.client.GetChecklist(ctx, s.slg)
	if errors.Is(err, api.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	// Backfill legacy item timestamps in memory; the server record is
	// rewritten on the next full save.
	migrateItemTimestamps(c, s.now().UTC())
	return c, nil
}

// remoteCreate issues the create request. A conflict means another
// writer got there first: fall back to a cache-defeating fetch of the
// record the conflict claims exists before giving up.
func (s *Store) remoteCreate(ctx context.Context) (*model.Checklist, error) {
	c, err := s.client.CreateChecklist(ctx, s.Name(), model.ModeAPI)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, api.ErrConflict) {
		return nil, err
	}

	existing, fetchErr := s.client.GetChecklistFresh(ctx, s.slg)
	if errors.Is(fetchErr, api.ErrNotFound) {
		return nil, &ChecklistUnavailableError{Slug: s.slg}
	}
	if fetchErr != nil {
		return nil, fetchErr
	}
	return existing, nil
}

func (s *Store) remoteAddItem(ctx context.Context, title string) (*model.ChecklistItem, error) {
	item, err := s.client.AddItem(ctx, s.slg, title)
	if err == nil {
		s.cacheMutate(func(c *model.Checklist) {
			c.Items = append(c.Items, *item)
		})
		return item, nil
	}
	if errors.Is(err, api.ErrNotFound) {
		return nil, &ChecklistNotFoundError{Slug: s.slg}
	}

	if s.offline && isTransient(err) {
		optimistic := s.newItem(title)
		if ok := s.offlineMutate(func(c *model.Checklist) error {
			c.Items = append(c.Items, optimistic)
			return nil
		}); ok {
			return &optimistic, nil
		}
	}
	return nil, err
}

func (s *Store) remoteToggleItem(ctx context.Context, itemID string) (*model.ChecklistItem, error) {
	current, err := s.currentRecord(ctx)
	if err != nil {
		return nil, err
	}

	i := current.ItemIndex(itemID)
	if i < 0 {
		return nil, &ItemNotFoundError{ItemID: itemID}
	}
	completed := !current.Items[i].Completed

	item, err := s.client.UpdateItem(ctx, s.slg, itemID, api.ItemPatch{Completed: &completed})
	if err == nil {
		s.cacheReplaceItem(*item)
		return item, nil
	}
	if errors.Is(err, api.ErrNotFound) {
		return nil, &ItemNotFoundError{ItemID: itemID}
	}

	if s.offline && isTransient(err) {
		var toggled model.ChecklistItem
		if ok := s.offlineMutate(func(c *model.Checklist) error {
			j := c.ItemIndex(itemID)
			if j < 0 {
				return &ItemNotFoundError{ItemID: itemID}
			}
			c.Items[j].Completed = completed
			c.Items[j].UpdatedAt = s.now().UTC()
			toggled = c.Items[j]
			return nil
		}); ok {
			return &toggled, nil
		}
	}
	return nil, err
}

func (s *Store) remoteUpdateItem(ctx context.Context, itemID, newTitle string) (*model.ChecklistItem, error) {
	item, err := s.client.UpdateItem(ctx, s.slg, itemID, api.ItemPatch{Title: &newTitle})
	if err == nil {
		s.cacheReplaceItem(*item)
		return item, nil
	}
	if errors.Is(err, api.ErrNotFound) {
		return nil, &ItemNotFoundError{ItemID: itemID}
	}

	if s.offline && isTransient(err) {
		var updated model.ChecklistItem
		if ok := s.offlineMutate(func(c *model.Checklist) error {
			j := c.ItemIndex(itemID)
			if j < 0 {
				return &ItemNotFoundError{ItemID: itemID}
			}
			c.Items[j].Title = newTitle
			c.Items[j].UpdatedAt = s.now().UTC()
			updated = c.Items[j]
			return nil
		}); ok {
			return &updated, nil
		}
	}
	return nil, err
}

func (s *Store) remoteDeleteItem(ctx context.Context, itemID string) error {
	err := s.client.DeleteItem(ctx, s.slg, itemID)
	if err == nil {
		s.cacheMutate(func(c *model.Checklist) {
			if i := c.ItemIndex(itemID); i >= 0 {
				c.Items = append(c.Items[:i], c.Items[i+1:]...)
			}
		})
		return nil
	}
	if errors.Is(err, api.ErrNotFound) {
		return &ItemNotFoundError{ItemID: itemID}
	}

	if s.offline && isTransient(err) {
		if ok := s.offlineMutate(func(c *model.Checklist) error {
			i := c.ItemIndex(itemID)
			if i < 0 {
				return &ItemNotFoundError{ItemID: itemID}
			}
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return nil
		}); ok {
			return nil
		}
	}
	return err
}

// remoteDuplicateItem has no dedicated endpoint; the copy is spliced in
// after the original and the full record saved, which preserves the
// insert-after ordering the item POST endpoint cannot express.
func (s *Store) remoteDuplicateItem(ctx context.Context, itemID string) (*model.ChecklistItem, error) {
	current, err := s.currentRecord(ctx)
	if err != nil {
		return nil, err
	}

	i := current.ItemIndex(itemID)
	if i < 0 {
		return nil, &ItemNotFoundError{ItemID: itemID}
	}

	copied := s.newItem(copyTitle(current.Items[i].Title))
	if err := s.apply(current, func(c *model.Checklist) error {
		c.Items = append(c.Items, model.ChecklistItem{})
		copy(c.Items[i+2:], c.Items[i+1:])
		c.Items[i+1] = copied
		return nil
	}); err != nil {
		return nil, err
	}

	if err := s.client.PutChecklist(ctx, current); err != nil {
		if s.offline && isTransient(err) {
			s.setCached(current)
			s.setPending(true)
			return &copied, nil
		}
		return nil, err
	}

	s.setCached(current)
	s.setPending(false)
	return &copied, nil
}

// currentRecord returns the last known record, fetching from the API
// when nothing is cached yet.
func (s *Store) currentRecord(ctx context.Context) (*model.Checklist, error) {
	if c := s.getCached(); c != nil {
		return c, nil
	}
	c, err := s.remoteGet(ctx)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, &ChecklistNotFoundError{Slug: s.slg}
	}
	s.setCached(c)
	return c, nil
}

// cacheMutate applies fn to the cached record, if any. The cache is an
// optimistic, possibly-stale copy of remote state.
func (s *Store) cacheMutate(fn func(c *model.Checklist)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached == nil {
		return
	}
	fn(s.cached)
	s.cached.UpdatedAt = s.now().UTC()
}

// cacheReplaceItem swaps the server's view of an item into the cache.
func (s *Store) cacheReplaceItem(item model.ChecklistItem) {
	s.cacheMutate(func(c *model.Checklist) {
		if i := c.ItemIndex(item.ID); i >= 0 {
			c.Items[i] = item
		}
	})
}

// offlineMutate applies fn to the cached record and raises the
// pending-sync flag. Returns false when no record is cached, in which
// case the caller surfaces the original remote error.
func (s *Store) offlineMutate(fn func(c *model.Checklist) error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached == nil {
		return false
	}
	if err := fn(s.cached); err != nil {
		return false
	}
	s.cached.UpdatedAt = s.now().UTC()
	s.pending = true
	return true
}

// isTransient reports whether a remote failure may succeed on a later
// sync pass. Typed API outcomes and canceled contexts are terminal;
// exhausted network/5xx retries are not.
func isTransient(err error) bool {
	if errors.Is(err, api.ErrNotFound) || errors.Is(err, api.ErrConflict) {
		return false
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}
