package checklist

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/checklist-sync/internal/model"
)

// legacyRecord mimics a checklist stored by an older version whose
// items carried no created_at field.
const legacyRecord = `{
	"id": "cl-1",
	"slug": "grocery-list",
	"name": "Grocery List",
	"mode": "local",
	"items": [
		{"id": "item-1", "title": "Eggs", "completed": true, "updated_at": "2024-03-01T10:00:00Z"},
		{"id": "item-2", "title": "Milk", "completed": false}
	],
	"created_at": "2024-02-01T09:00:00Z",
	"updated_at": "2024-03-01T10:00:00Z"
}`

func TestGetBackfillsLegacyItemTimestamps(t *testing.T) {
	ctx := context.Background()
	s, kv := newLocalStore(t, "Grocery List")

	require.NoError(t, kv.Set(ctx, model.StorageKey("grocery-list"), []byte(legacyRecord)))

	before := time.Now().UTC()
	c, err := s.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, c)
	require.Len(t, c.Items, 2)

	// Item with an updated_at inherits it; title/completed/id untouched.
	assert.Equal(t, "item-1", c.Items[0].ID)
	assert.Equal(t, "Eggs", c.Items[0].Title)
	assert.True(t, c.Items[0].Completed)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), c.Items[0].CreatedAt)

	// Item with neither timestamp is stamped with "now", in UTC like
	// every other timestamp the store writes.
	assert.Equal(t, "item-2", c.Items[1].ID)
	assert.Equal(t, "Milk", c.Items[1].Title)
	assert.False(t, c.Items[1].Completed)
	assert.False(t, c.Items[1].CreatedAt.Before(before))
	assert.Equal(t, time.UTC, c.Items[1].CreatedAt.Location())

	// The migrated record was persisted.
	raw, err := kv.Get(ctx, model.StorageKey("grocery-list"))
	require.NoError(t, err)
	var stored model.Checklist
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, c.Items[0].CreatedAt, stored.Items[0].CreatedAt)
	assert.False(t, stored.Items[1].CreatedAt.IsZero())
}

func TestMigrationIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, kv := newLocalStore(t, "Grocery List")

	require.NoError(t, kv.Set(ctx, model.StorageKey("grocery-list"), []byte(legacyRecord)))

	first, err := s.Get(ctx)
	require.NoError(t, err)

	second, err := s.Get(ctx)
	require.NoError(t, err)

	assert.Equal(t, first.Items[0].CreatedAt, second.Items[0].CreatedAt)
	assert.Equal(t, first.Items[1].CreatedAt, second.Items[1].CreatedAt)
}

func TestMigrateItemTimestampsReportsChange(t *testing.T) {
	now := time.Now().UTC()

	c := &model.Checklist{Items: []model.ChecklistItem{
		{ID: "a", CreatedAt: now, UpdatedAt: now},
	}}
	assert.False(t, migrateItemTimestamps(c, now))

	c.Items = append(c.Items, model.ChecklistItem{ID: "b", UpdatedAt: now})
	assert.True(t, migrateItemTimestamps(c, now))
	assert.Equal(t, now, c.Items[1].CreatedAt)
}
