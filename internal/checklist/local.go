package checklist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/checklist-sync/internal/kvstore"
	"github.com/nhle/checklist-sync/internal/model"
)

// localGet reads the durable record for this checklist. Legacy items
// missing CreatedAt are backfilled on load and the migrated record is
// persisted; the migration is idempotent.
func (s *Store) localGet(ctx context.Context) (*model.Checklist, error) {
	raw, err := s.kv.Get(ctx, model.StorageKey(s.slg))
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var c model.Checklist
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decoding stored checklist %q: %w", s.slg, err)
	}

	if migrateItemTimestamps(&c, s.now().UTC()) {
		if err := s.localSave(ctx, &c); err != nil {
			return nil, fmt.Errorf("persisting migrated checklist %q: %w", s.slg, err)
		}
	}

	return &c, nil
}

// localCreate synthesizes a fresh record and persists it immediately.
func (s *Store) localCreate(ctx context.Context) (*model.Checklist, error) {
	now := s.now().UTC()
	c := &model.Checklist{
		ID:        uuid.New().String(),
		Slug:      s.slg,
		Name:      s.Name(),
		Mode:      model.ModeLocal,
		Items:     []model.ChecklistItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.localSave(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// localSave writes the full record through to durable storage.
func (s *Store) localSave(ctx context.Context, c *model.Checklist) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding checklist %q: %w", s.slg, err)
	}
	return s.kv.Set(ctx, model.StorageKey(s.slg), raw)
}

// mutateLocal runs a read-modify-write cycle: load the record, apply
// fn, stamp UpdatedAt, and write the full record back. The checklist
// must already exist.
func (s *Store) mutateLocal(ctx context.Context, fn func(c *model.Checklist) error) (*model.Checklist, error) {
	c, err := s.localGet(ctx)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, &ChecklistNotFoundError{Slug: s.slg}
	}

	if err := s.apply(c, fn); err != nil {
		return nil, err
	}
	if err := s.localSave(ctx, c); err != nil {
		return nil, err
	}

	s.setCached(c)
	return c, nil
}

func (s *Store) localAddItem(ctx context.Context, title string) (*model.ChecklistItem, error) {
	var added model.ChecklistItem
	_, err := s.mutateLocal(ctx, func(c *model.Checklist) error {
		added = s.newItem(title)
		c.Items = append(c.Items, added)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &added, nil
}

func (s *Store) localToggleItem(ctx context.Context, itemID string) (*model.ChecklistItem, error) {
	var toggled model.ChecklistItem
	_, err := s.mutateLocal(ctx, func(c *model.Checklist) error {
		i := c.ItemIndex(itemID)
		if i < 0 {
			return &ItemNotFoundError{ItemID: itemID}
		}
		c.Items[i].Completed = !c.Items[i].Completed
		c.Items[i].UpdatedAt = s.now().UTC()
		toggled = c.Items[i]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &toggled, nil
}

func (s *Store) localUpdateItem(ctx context.Context, itemID, newTitle string) (*model.ChecklistItem, error) {
	var updated model.ChecklistItem
	_, err := s.mutateLocal(ctx, func(c *model.Checklist) error {
		i := c.ItemIndex(itemID)
		if i < 0 {
			return &ItemNotFoundError{ItemID: itemID}
		}
		c.Items[i].Title = newTitle
		c.Items[i].UpdatedAt = s.now().UTC()
		updated = c.Items[i]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Store) localDeleteItem(ctx context.Context, itemID string) error {
	_, err := s.mutateLocal(ctx, func(c *model.Checklist) error {
		i := c.ItemIndex(itemID)
		if i < 0 {
			return &ItemNotFoundError{ItemID: itemID}
		}
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
		return nil
	})
	return err
}

func (s *Store) localDuplicateItem(ctx context.Context, itemID string) (*model.ChecklistItem, error) {
	var copied model.ChecklistItem
	_, err := s.mutateLocal(ctx, func(c *model.Checklist) error {
		i := c.ItemIndex(itemID)
		if i < 0 {
			return &ItemNotFoundError{ItemID: itemID}
		}
		copied = s.newItem(copyTitle(c.Items[i].Title))
		c.Items = append(c.Items, model.ChecklistItem{})
		copy(c.Items[i+2:], c.Items[i+1:])
		c.Items[i+1] = copied
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &copied, nil
}

// newItem builds a fresh incomplete item with a random UUID.
func (s *Store) newItem(title string) model.ChecklistItem {
	now := s.now().UTC()
	return model.ChecklistItem{
		ID:        uuid.New().String(),
		Title:     title,
		Completed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// copyTitle names a duplicated item after its original.
func copyTitle(original string) string {
	return original + " (Copy)"
}

// migrateItemTimestamps backfills CreatedAt on items stored by older
// versions that only tracked UpdatedAt. Items missing both get now.
// Returns whether any item changed.
func migrateItemTimestamps(c *model.Checklist, now time.Time) bool {
	changed := false
	for i := range c.Items {
		if !c.Items[i].CreatedAt.IsZero() {
			continue
		}
		if !c.Items[i].UpdatedAt.IsZero() {
			c.Items[i].CreatedAt = c.Items[i].UpdatedAt
		} else {
			c.Items[i].CreatedAt = now
			c.Items[i].UpdatedAt = now
		}
		changed = true
	}
	return changed
}
