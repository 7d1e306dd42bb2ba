package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basewire/basewire-go/pkg/basewire"
)

func TestBatch_WireShape(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/batch", r.URL.Path)

		var payload struct {
			Requests []struct {
				Method string         `json:"method"`
				URL    string         `json:"url"`
				Body   map[string]any `json:"body"`
			} `json:"requests"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))

		// Insertion order survives, across collections.
		require.Len(t, payload.Requests, 4)
		assert.Equal(t, "POST", payload.Requests[0].Method)
		assert.Equal(t, "/api/collections/posts/records", payload.Requests[0].URL)
		assert.Equal(t, "PUT", payload.Requests[1].Method)
		assert.Equal(t, "/api/collections/tags/records", payload.Requests[1].URL)
		assert.Equal(t, "PATCH", payload.Requests[2].Method)
		assert.Equal(t, "/api/collections/posts/records/r1", payload.Requests[2].URL)
		assert.Equal(t, "DELETE", payload.Requests[3].Method)
		assert.Equal(t, "/api/collections/posts/records/r2", payload.Requests[3].URL)
		assert.Nil(t, payload.Requests[3].Body)

		writeJSON(t, w, http.StatusOK, `[
			{"status": 200, "body": {"id": "new1", "collectionName": "posts", "title": "first"}},
			{"status": 200, "body": {"id": "tag_news", "collectionName": "tags", "name": "news"}},
			{"status": 200, "body": {"id": "r1", "collectionName": "posts", "status": "published"}},
			{"status": 204, "body": null}
		]`)
	}))

	batch := client.NewBatch()
	posts := batch.Collection("posts")

	posts.Create(map[string]any{"title": "first"})
	batch.Collection("tags").Upsert(map[string]any{"id": "tag_news", "name": "news"})
	posts.Update("r1", map[string]any{"status": "published"})
	posts.Delete("r2")

	results, err := batch.Send(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 4)

	require.NotNil(t, results[0].Record)
	assert.Equal(t, "new1", results[0].Record.ID)
	assert.True(t, results[0].OK())

	assert.Equal(t, "tag_news", results[1].Record.ID)
	assert.Equal(t, "published", results[2].Record.GetString("status"))

	assert.Equal(t, http.StatusNoContent, results[3].Status)
	assert.Nil(t, results[3].Record)
	assert.True(t, results[3].OK())
}

func TestBatch_MixedResults(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, `[
			{"status": 200, "body": {"id": "new1", "collectionName": "posts"}},
			{"status": 400, "body": {
				"status": 400,
				"message": "Failed to create record.",
				"data": {"title": {"code": "validation_required", "message": "Missing required value."}}
			}},
			{"status": 404, "body": null}
		]`)
	}))

	batch := client.NewBatch()
	batch.Collection("posts").
		Create(map[string]any{"title": "ok"}).
		Create(map[string]any{}).
		Delete("missing1")

	results, err := batch.Send(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].OK())

	require.NotNil(t, results[1].Err)
	assert.False(t, results[1].OK())
	assert.Equal(t, http.StatusBadRequest, results[1].Err.Status)
	assert.Contains(t, results[1].Err.Data, "title")

	require.NotNil(t, results[2].Err)
	assert.Equal(t, http.StatusNotFound, results[2].Err.Status)
	assert.Equal(t, "Not Found", results[2].Err.Message)
}

func TestBatch_Empty_NoNetworkCall(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	client, _ := newTestClient(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		calls.Add(1)
	}))

	_, err := client.NewBatch().Send(context.Background())
	require.Error(t, err)
	assert.True(t, basewire.IsValidation(err))
	assert.ErrorIs(t, err, basewire.ErrEmptyBatch)
	assert.Zero(t, calls.Load())
}

func TestBatch_TooLarge(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		calls.Add(1)
	}))
	t.Cleanup(server.Close)

	client, err := New(context.Background(), &basewire.Config{
		Endpoint:         server.URL,
		MaxBatchRequests: 2,
	})
	require.NoError(t, err)

	batch := client.NewBatch()
	batch.Collection("posts").
		Create(map[string]any{"n": 1}).
		Create(map[string]any{"n": 2}).
		Create(map[string]any{"n": 3})

	_, err = batch.Send(context.Background())
	require.Error(t, err)
	assert.True(t, basewire.IsValidation(err))
	assert.ErrorIs(t, err, basewire.ErrBatchTooLarge)
	assert.Zero(t, calls.Load())
}

func TestBatch_LimitDisabled(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Requests []json.RawMessage `json:"requests"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))

		entries := make([]map[string]any, len(payload.Requests))
		for i := range entries {
			entries[i] = map[string]any{"status": 204, "body": nil}
		}

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(entries))
	}))
	t.Cleanup(server.Close)

	client, err := New(context.Background(), &basewire.Config{
		Endpoint:         server.URL,
		MaxBatchRequests: -1,
	})
	require.NoError(t, err)

	batch := client.NewBatch()
	posts := batch.Collection("posts")

	for i := range 120 {
		posts.Create(map[string]any{"n": i})
	}

	results, err := batch.Send(context.Background())
	require.NoError(t, err)
	assert.Len(t, results, 120)
}

func TestBatch_EmptyID_FailsAtSend(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	client, _ := newTestClient(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		calls.Add(1)
	}))

	batch := client.NewBatch()
	batch.Collection("posts").
		Create(map[string]any{"title": "ok"}).
		Update("", map[string]any{"title": "bad"})

	_, err := batch.Send(context.Background())
	require.Error(t, err)
	assert.True(t, basewire.IsValidation(err))
	assert.ErrorIs(t, err, basewire.ErrMissingRecordID)
	assert.Zero(t, calls.Load())

	batch = client.NewBatch()
	batch.Collection("posts").Delete("")

	_, err = batch.Send(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, basewire.ErrMissingRecordID)
}

func TestBatch_LengthMismatch(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, `[{"status": 200, "body": {"id": "new1"}}]`)
	}))

	batch := client.NewBatch()
	batch.Collection("posts").
		Create(map[string]any{"n": 1}).
		Create(map[string]any{"n": 2})

	_, err := batch.Send(context.Background())
	require.Error(t, err)
	assert.True(t, basewire.IsDecode(err))
}

func TestBatch_TransactionRejected(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusBadRequest, `{
			"status": 400,
			"message": "Batch transaction failed."
		}`)
	}))

	batch := client.NewBatch()
	batch.Collection("posts").Create(map[string]any{"n": 1})

	_, err := batch.Send(context.Background())
	require.Error(t, err)
	assert.True(t, basewire.IsBadRequest(err))
}

func TestBatch_Len(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	batch := client.NewBatch()
	assert.Equal(t, 0, batch.Len())

	batch.Collection("posts").Create(map[string]any{"n": 1})
	batch.Collection("tags").Delete("t1")
	assert.Equal(t, 2, batch.Len())
}

func TestResolveMaxBatch(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 50, resolveMaxBatch(0))
	assert.Equal(t, 10, resolveMaxBatch(10))
	assert.Equal(t, 0, resolveMaxBatch(-1))
}
