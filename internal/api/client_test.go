package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/checklist-sync/internal/model"
)

func testClient(t *testing.T, url string) *Client {
	t.Helper()
	return NewClient(url, StaticToken("secret-token"),
		WithRetryAttempts(3),
		WithBaseDelay(time.Millisecond),
	)
}

func okChecklist(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"checklist": model.Checklist{
			ID:   "cl-1",
			Slug: "grocery-list",
			Name: "Grocery List",
			Mode: model.ModeAPI,
		},
	})
}

func TestClientSendsBearerToken(t *testing.T) {
	var gotAuth atomic.Value

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		okChecklist(w)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	_, err := c.GetChecklist(context.Background(), "grocery-list")
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", gotAuth.Load())
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		okChecklist(w)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	got, err := c.GetChecklist(context.Background(), "grocery-list")
	require.NoError(t, err)
	assert.Equal(t, "cl-1", got.ID)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		okChecklist(w)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	_, err := c.GetChecklist(context.Background(), "grocery-list")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClientDoesNotRetryNotFound(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	_, err := c.GetChecklist(context.Background(), "grocery-list")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClientClassifiesNotFoundMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   "Checklist not found",
		})
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	_, err := c.GetChecklist(context.Background(), "grocery-list")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestClientClassifiesConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	_, err := c.CreateChecklist(context.Background(), "Grocery List", model.ModeAPI)
	require.ErrorIs(t, err, ErrConflict)
}

func TestClientAuthFailureIsTerminal(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	_, err := c.GetChecklist(context.Background(), "grocery-list")

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClientBadRequestIsTerminal(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   "title is required",
		})
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	_, err := c.AddItem(context.Background(), "grocery-list", "")

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "title is required", apiErr.Message)
	assert.Equal(t, int32(1), calls.Load())
}

func TestUpdateItemSendsOnlyPatchedFields(t *testing.T) {
	var body atomic.Value

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var m map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&m))
		body.Store(m)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"item":    model.ChecklistItem{ID: "item-1", Title: "Eggs", Completed: true},
		})
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	completed := true
	item, err := c.UpdateItem(context.Background(), "grocery-list", "item-1", ItemPatch{Completed: &completed})
	require.NoError(t, err)
	assert.True(t, item.Completed)

	m := body.Load().(map[string]interface{})
	assert.Equal(t, true, m["completed"])
	_, hasTitle := m["title"]
	assert.False(t, hasTitle, "unset patch fields must be omitted")
}

func TestGetChecklistFreshAddsCacheBuster(t *testing.T) {
	var query atomic.Value

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query.Store(r.URL.Query().Get("_ts"))
		okChecklist(w)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	_, err := c.GetChecklistFresh(context.Background(), "grocery-list")
	require.NoError(t, err)
	assert.NotEmpty(t, query.Load())
}
