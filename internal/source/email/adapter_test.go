package email

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/checklist-sync/internal/checklist"
	"github.com/nhle/checklist-sync/internal/kvstore"
	"github.com/nhle/checklist-sync/internal/model"
)

type fakeFetcher struct {
	messages []Message
	fetchErr error
	seen     []uint32
	seenErr  error
}

func (f *fakeFetcher) FetchUnseenMessages(context.Context, int) ([]Message, error) {
	return f.messages, f.fetchErr
}

func (f *fakeFetcher) MarkSeen(_ context.Context, uid uint32) error {
	if f.seenErr != nil {
		return f.seenErr
	}
	f.seen = append(f.seen, uid)
	return nil
}

func memoryOpener(kv kvstore.Store) StoreOpener {
	return func(name string) (*checklist.Store, error) {
		return checklist.New(name, checklist.Options{Mode: model.ModeLocal, KV: kv})
	}
}

func TestParseItemLines(t *testing.T) {
	body := "- Buy milk\n*  Eggs\n\n[ ] Bread\n- [x] Butter\nPlain line\n   \n"

	got := parseItemLines(body)
	assert.Equal(t, []string{"Buy milk", "Eggs", "Bread", "Butter", "Plain line"}, got)
}

func TestChecklistName(t *testing.T) {
	name, ok := checklistName("Checklist: Grocery List")
	require.True(t, ok)
	assert.Equal(t, "Grocery List", name)

	_, ok = checklistName("Re: weekend plans")
	assert.False(t, ok)

	_, ok = checklistName("checklist:   ")
	assert.False(t, ok)
}

func TestImporterRunAppendsItemsAndMarksSeen(t *testing.T) {
	fetcher := &fakeFetcher{
		messages: []Message{
			{
				Envelope: Envelope{MessageID: "<m1>", Subject: "checklist: Grocery List", UID: 7},
				TextBody: "- Milk\n- Eggs\n",
			},
			{
				Envelope: Envelope{MessageID: "<m2>", Subject: "lunch?", UID: 8},
				TextBody: "nothing to import",
			},
		},
	}

	kv := kvstore.NewMemoryStore()
	imp := NewImporter(fetcher, memoryOpener(kv), nil)

	result, err := imp.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.MessagesSeen)
	assert.Equal(t, 2, result.ItemsAdded)
	assert.Empty(t, result.Errors)
	assert.Equal(t, []uint32{7}, fetcher.seen)

	store, err := checklist.New("Grocery List", checklist.Options{Mode: model.ModeLocal, KV: kv})
	require.NoError(t, err)
	got, err := store.Get(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Milk", got.Items[0].Title)
	assert.Equal(t, "Eggs", got.Items[1].Title)
}

func TestImporterRunCreatesChecklistOnDemand(t *testing.T) {
	fetcher := &fakeFetcher{
		messages: []Message{{
			Envelope: Envelope{MessageID: "<m1>", Subject: "checklist: Garage Cleanup", UID: 3},
			TextBody: "Sort tools",
		}},
	}

	kv := kvstore.NewMemoryStore()
	imp := NewImporter(fetcher, memoryOpener(kv), nil)

	result, err := imp.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.ItemsAdded)

	keys, err := kv.Keys(context.Background(), "checklist_")
	require.NoError(t, err)
	assert.Contains(t, keys, "checklist_garage-cleanup")
}

func TestImporterRunContinuesPastBadMessage(t *testing.T) {
	fetcher := &fakeFetcher{
		messages: []Message{
			{
				Envelope: Envelope{MessageID: "<bad>", Subject: "checklist: !!!", UID: 1},
				TextBody: "- broken",
			},
			{
				Envelope: Envelope{MessageID: "<good>", Subject: "checklist: Grocery List", UID: 2},
				TextBody: "- Milk",
			},
		},
	}

	kv := kvstore.NewMemoryStore()
	imp := NewImporter(fetcher, memoryOpener(kv), nil)

	result, err := imp.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.MessagesSeen)
	assert.Equal(t, 1, result.ItemsAdded)
	require.Len(t, result.Errors, 1)

	var invalid *checklist.InvalidNameError
	assert.ErrorAs(t, result.Errors[0], &invalid)
	assert.Equal(t, []uint32{2}, fetcher.seen)
}

func TestImporterRunSkipsEmptyBody(t *testing.T) {
	fetcher := &fakeFetcher{
		messages: []Message{{
			Envelope: Envelope{MessageID: "<m1>", Subject: "checklist: Grocery List", UID: 4},
			TextBody: "\n   \n",
		}},
	}

	kv := kvstore.NewMemoryStore()
	imp := NewImporter(fetcher, memoryOpener(kv), nil)

	result, err := imp.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.MessagesSeen)
	assert.Zero(t, result.ItemsAdded)
	assert.Equal(t, []uint32{4}, fetcher.seen)
}

func TestImporterRunSurfacesFetchFailure(t *testing.T) {
	fetcher := &fakeFetcher{fetchErr: errors.New("connection reset")}
	imp := NewImporter(fetcher, memoryOpener(kvstore.NewMemoryStore()), nil)

	_, err := imp.Run(context.Background())
	require.Error(t, err)
}
