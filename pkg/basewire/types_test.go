package basewire_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basewire/basewire-go/pkg/basewire"
)

func TestRecord_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	payload := `{
		"id": "abc123def456xyz",
		"collectionId": "col_posts",
		"collectionName": "posts",
		"title": "Hello",
		"views": 42,
		"published": true,
		"created": "2026-08-25 10:30:00.000Z",
		"expand": {"author": {"id": "usr1", "name": "Ann"}}
	}`

	var record basewire.Record
	require.NoError(t, json.Unmarshal([]byte(payload), &record))

	assert.Equal(t, "abc123def456xyz", record.ID)
	assert.Equal(t, "col_posts", record.CollectionID)
	assert.Equal(t, "posts", record.CollectionName)

	assert.Equal(t, "Hello", record.GetString("title"))
	assert.Equal(t, 42, record.GetInt("views"))
	assert.InDelta(t, 42.0, record.GetFloat("views"), 0.0001)
	assert.True(t, record.GetBool("published"))

	// System keys never leak into Data.
	assert.NotContains(t, record.Data, "id")
	assert.NotContains(t, record.Data, "collectionName")
	assert.NotContains(t, record.Data, "expand")

	require.Contains(t, record.Expand, "author")

	created, err := record.GetDateTime("created")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 25, 10, 30, 0, 0, time.UTC), created)
}

func TestRecord_MarshalJSON(t *testing.T) {
	t.Parallel()

	record := basewire.Record{
		ID:             "rec1",
		CollectionName: "posts",
		Data: map[string]any{
			"title": "Hello",
			"views": 42,
		},
	}

	data, err := json.Marshal(record)
	require.NoError(t, err)

	var flat map[string]any
	require.NoError(t, json.Unmarshal(data, &flat))

	assert.Equal(t, "rec1", flat["id"])
	assert.Equal(t, "posts", flat["collectionName"])
	assert.Equal(t, "Hello", flat["title"])
	assert.NotContains(t, flat, "collectionId")
	assert.NotContains(t, flat, "expand")
}

func TestRecord_RoundTrip(t *testing.T) {
	t.Parallel()

	original := `{"id":"r1","collectionId":"c1","collectionName":"posts","title":"x","n":1.5}`

	var record basewire.Record
	require.NoError(t, json.Unmarshal([]byte(original), &record))

	data, err := json.Marshal(record)
	require.NoError(t, err)

	var again basewire.Record
	require.NoError(t, json.Unmarshal(data, &again))

	assert.Equal(t, record.ID, again.ID)
	assert.Equal(t, record.CollectionID, again.CollectionID)
	assert.Equal(t, record.Data, again.Data)
}

func TestRecord_Getters_Missing(t *testing.T) {
	t.Parallel()

	var record basewire.Record

	assert.Nil(t, record.Get("absent"))
	assert.Empty(t, record.GetString("absent"))
	assert.False(t, record.GetBool("absent"))
	assert.Zero(t, record.GetInt("absent"))

	_, err := record.GetDateTime("absent")
	require.Error(t, err)
	assert.True(t, basewire.IsDecode(err))
}

func TestListResult_Unmarshal(t *testing.T) {
	t.Parallel()

	payload := `{
		"page": 2,
		"perPage": 30,
		"totalItems": 61,
		"totalPages": 3,
		"items": [
			{"id": "r1", "title": "a"},
			{"id": "r2", "title": "b"}
		]
	}`

	var list basewire.RecordList
	require.NoError(t, json.Unmarshal([]byte(payload), &list))

	assert.Equal(t, 2, list.Page)
	assert.Equal(t, 30, list.PerPage)
	assert.Equal(t, 61, list.TotalItems)
	assert.Equal(t, 3, list.TotalPages)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "r1", list.Items[0].ID)
	assert.Equal(t, "b", list.Items[1].GetString("title"))
}

func TestCollectionField(t *testing.T) {
	t.Parallel()

	field := basewire.CollectionField{
		"name":     "title",
		"type":     "text",
		"required": true,
		"max":      120,
	}

	assert.Equal(t, "title", field.Name())
	assert.Equal(t, "text", field.Type())
	assert.True(t, field.Required())
}
