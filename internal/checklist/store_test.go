package checklist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/checklist-sync/internal/kvstore"
	"github.com/nhle/checklist-sync/internal/model"
)

func newLocalStore(t *testing.T, name string) (*Store, *kvstore.MemoryStore) {
	t.Helper()

	kv := kvstore.NewMemoryStore()
	t.Cleanup(func() { kv.Close() })

	s, err := New(name, Options{Mode: model.ModeLocal, KV: kv})
	require.NoError(t, err)
	return s, kv
}

func TestNewDerivesSlug(t *testing.T) {
	s, _ := newLocalStore(t, "Grocery List")
	assert.Equal(t, "grocery-list", s.Slug())
	assert.Equal(t, "Grocery List", s.Name())
}

func TestNewRejectsUnsluggableName(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	defer kv.Close()

	_, err := New("!!!", Options{Mode: model.ModeLocal, KV: kv})

	var invalidName *InvalidNameError
	require.ErrorAs(t, err, &invalidName)
	assert.Equal(t, "!!!", invalidName.Name)
}

func TestNewRejectsMissingBackend(t *testing.T) {
	_, err := New("Grocery List", Options{Mode: model.ModeLocal})
	require.Error(t, err)

	_, err = New("Grocery List", Options{Mode: model.ModeAPI})
	require.Error(t, err)

	_, err = New("Grocery List", Options{Mode: model.Mode("cloud")})
	require.Error(t, err)
}

func TestGetAbsentIsNotAnError(t *testing.T) {
	s, _ := newLocalStore(t, "Grocery List")

	c, err := s.Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestCreateOrGetIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, _ := newLocalStore(t, "Grocery List")

	first, err := s.CreateOrGet(ctx)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "grocery-list", first.Slug)
	assert.Equal(t, model.ModeLocal, first.Mode)
	assert.Empty(t, first.Items)

	second, err := s.CreateOrGet(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestAddItemTrimsTitle(t *testing.T) {
	ctx := context.Background()
	s, _ := newLocalStore(t, "Grocery List")

	_, err := s.CreateOrGet(ctx)
	require.NoError(t, err)

	item, err := s.AddItem(ctx, "  Buy milk  ")
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", item.Title)
	assert.False(t, item.Completed)
	assert.NotEmpty(t, item.ID)

	c, err := s.Get(ctx)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "Buy milk", c.Items[0].Title)
	assert.False(t, c.Items[0].Completed)
}

func TestAddItemRejectsEmptyTitle(t *testing.T) {
	ctx := context.Background()
	s, _ := newLocalStore(t, "Grocery List")

	_, err := s.CreateOrGet(ctx)
	require.NoError(t, err)

	_, err = s.AddItem(ctx, "   ")
	require.ErrorIs(t, err, ErrEmptyTitle)
}

func TestAddItemRequiresChecklist(t *testing.T) {
	s, _ := newLocalStore(t, "Grocery List")

	_, err := s.AddItem(context.Background(), "Eggs")

	var notFound *ChecklistNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "grocery-list", notFound.Slug)
}

func TestToggleItemRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := newLocalStore(t, "Grocery List")

	_, err := s.CreateOrGet(ctx)
	require.NoError(t, err)

	item, err := s.AddItem(ctx, "Eggs")
	require.NoError(t, err)

	toggled, err := s.ToggleItem(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)

	back, err := s.ToggleItem(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, back.Completed)
}

func TestUpdateItemRenamesInPlace(t *testing.T) {
	ctx := context.Background()
	s, _ := newLocalStore(t, "Grocery List")

	_, err := s.CreateOrGet(ctx)
	require.NoError(t, err)

	item, err := s.AddItem(ctx, "Eggs")
	require.NoError(t, err)

	renamed, err := s.UpdateItem(ctx, item.ID, "  Free-range eggs ")
	require.NoError(t, err)
	assert.Equal(t, item.ID, renamed.ID)
	assert.Equal(t, "Free-range eggs", renamed.Title)

	c, err := s.Get(ctx)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "Free-range eggs", c.Items[0].Title)
}

func TestDeleteItem(t *testing.T) {
	ctx := context.Background()
	s, _ := newLocalStore(t, "Grocery List")

	_, err := s.CreateOrGet(ctx)
	require.NoError(t, err)

	item, err := s.AddItem(ctx, "Eggs")
	require.NoError(t, err)

	require.NoError(t, s.DeleteItem(ctx, item.ID))

	c, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}

func TestItemOperationsFailForUnknownID(t *testing.T) {
	ctx := context.Background()
	s, _ := newLocalStore(t, "Grocery List")

	_, err := s.CreateOrGet(ctx)
	require.NoError(t, err)

	var itemMissing *ItemNotFoundError

	_, err = s.ToggleItem(ctx, "nope")
	require.ErrorAs(t, err, &itemMissing)

	_, err = s.UpdateItem(ctx, "nope", "x")
	require.ErrorAs(t, err, &itemMissing)

	err = s.DeleteItem(ctx, "nope")
	require.ErrorAs(t, err, &itemMissing)

	_, err = s.DuplicateItem(ctx, "nope")
	require.ErrorAs(t, err, &itemMissing)
}

func TestDuplicateItemInsertsCopyAfterOriginal(t *testing.T) {
	ctx := context.Background()
	s, _ := newLocalStore(t, "Grocery List")

	_, err := s.CreateOrGet(ctx)
	require.NoError(t, err)

	first, err := s.AddItem(ctx, "Sand the door")
	require.NoError(t, err)
	_, err = s.AddItem(ctx, "Paint the door")
	require.NoError(t, err)

	// Complete the original to prove the copy starts incomplete anyway.
	_, err = s.ToggleItem(ctx, first.ID)
	require.NoError(t, err)

	copied, err := s.DuplicateItem(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sand the door (Copy)", copied.Title)
	assert.False(t, copied.Completed)
	assert.NotEqual(t, first.ID, copied.ID)

	c, err := s.Get(ctx)
	require.NoError(t, err)
	require.Len(t, c.Items, 3)
	assert.Equal(t, "Sand the door", c.Items[0].Title)
	assert.Equal(t, "Sand the door (Copy)", c.Items[1].Title)
	assert.Equal(t, "Paint the door", c.Items[2].Title)
}

func TestUpdatePatchesNameWithoutChangingSlug(t *testing.T) {
	ctx := context.Background()
	s, _ := newLocalStore(t, "Grocery List")

	_, err := s.CreateOrGet(ctx)
	require.NoError(t, err)

	name := "Weekly Groceries"
	c, err := s.Update(ctx, Patch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Weekly Groceries", c.Name)
	assert.Equal(t, "grocery-list", c.Slug)
	assert.Equal(t, "grocery-list", s.Slug())
}

func TestUpdateRejectsModeSwitchWithoutBackend(t *testing.T) {
	ctx := context.Background()
	s, _ := newLocalStore(t, "Grocery List")

	_, err := s.CreateOrGet(ctx)
	require.NoError(t, err)

	api := model.ModeAPI
	_, err = s.Update(ctx, Patch{Mode: &api})

	var opErr *OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, model.ModeLocal, s.Mode())

	// The store must still route to the local backend afterwards.
	item, err := s.AddItem(ctx, "Eggs")
	require.NoError(t, err)
	assert.Equal(t, "Eggs", item.Title)
}

func TestRenameIsVisibleToConcurrentReaders(t *testing.T) {
	ctx := context.Background()
	s, _ := newLocalStore(t, "Grocery List")

	_, err := s.CreateOrGet(ctx)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			_ = s.Name()
			_ = s.Mode()
		}
	}()

	name := "Weekly Groceries"
	_, err = s.Update(ctx, Patch{Name: &name})
	require.NoError(t, err)
	<-done

	assert.Equal(t, "Weekly Groceries", s.Name())
}

func TestUpdateRejectsUnsluggableName(t *testing.T) {
	ctx := context.Background()
	s, _ := newLocalStore(t, "Grocery List")

	_, err := s.CreateOrGet(ctx)
	require.NoError(t, err)

	bad := "???"
	_, err = s.Update(ctx, Patch{Name: &bad})

	var invalidName *InvalidNameError
	require.ErrorAs(t, err, &invalidName)
}

func TestDeleteChecklistCascades(t *testing.T) {
	ctx := context.Background()
	s, kv := newLocalStore(t, "Grocery List")

	_, err := s.CreateOrGet(ctx)
	require.NoError(t, err)
	_, err = s.AddItem(ctx, "Eggs")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx))

	c, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, c)

	keys, err := kv.Keys(ctx, "checklist_")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestGroceryListScenario(t *testing.T) {
	ctx := context.Background()
	s, _ := newLocalStore(t, "Grocery List")
	require.Equal(t, "grocery-list", s.Slug())

	_, err := s.CreateOrGet(ctx)
	require.NoError(t, err)

	item, err := s.AddItem(ctx, "Eggs")
	require.NoError(t, err)

	_, err = s.ToggleItem(ctx, item.ID)
	require.NoError(t, err)

	c, err := s.Get(ctx)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "Eggs", c.Items[0].Title)
	assert.True(t, c.Items[0].Completed)
}

func TestSyncPendingChangesNoOpForLocalMode(t *testing.T) {
	ctx := context.Background()
	s, _ := newLocalStore(t, "Grocery List")

	result, err := s.SyncPendingChanges(ctx)
	require.NoError(t, err)
	assert.Zero(t, result.SyncedItems)
	assert.Empty(t, result.Errors)
	assert.False(t, s.SyncStatus().Pending)
}
