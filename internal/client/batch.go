package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/basewire/basewire-go/pkg/basewire"
)

// batchOperation is one buffered sub-request.
type batchOperation struct {
	Method string         `json:"method"`
	URL    string         `json:"url"`
	Body   map[string]any `json:"body,omitempty"`
}

// batchPayload is the wire envelope for /api/batch.
type batchPayload struct {
	Requests []batchOperation `json:"requests"`
}

// batchEntryResponse is one entry of the /api/batch response array.
type batchEntryResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// Batch implements basewire.Batch. Operations are buffered in insertion
// order, across collections, and submitted as a single request.
type Batch struct {
	client *Client

	mu       sync.Mutex
	ops      []batchOperation
	buildErr error
}

// Collection returns a sub-builder appending operations for one collection.
func (b *Batch) Collection(idOrName string) basewire.CollectionBatch {
	return &CollectionBatch{batch: b, collection: idOrName}
}

// Len returns the number of buffered operations.
func (b *Batch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.ops)
}

func (b *Batch) add(op batchOperation) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.ops = append(b.ops, op)
}

func (b *Batch) fail(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.buildErr == nil {
		b.buildErr = err
	}
}

// Send submits the batch and demuxes the response into one result per
// operation, in order. Per-operation failures land in the result entries;
// Send itself fails only on validation, transport, or decode problems.
func (b *Batch) Send(ctx context.Context) ([]basewire.BatchResult, error) {
	b.mu.Lock()
	ops := append([]batchOperation(nil), b.ops...)
	buildErr := b.buildErr
	b.mu.Unlock()

	if buildErr != nil {
		return nil, buildErr
	}

	if len(ops) == 0 {
		return nil, fmt.Errorf("%w: %w", basewire.ErrValidation, basewire.ErrEmptyBatch)
	}

	if b.client.maxBatch > 0 && len(ops) > b.client.maxBatch {
		return nil, fmt.Errorf("%w: %w: %d operations, limit %d",
			basewire.ErrValidation, basewire.ErrBatchTooLarge, len(ops), b.client.maxBatch)
	}

	resp, err := b.client.httpClient.Post(ctx, "/api/batch", batchPayload{Requests: ops})
	if err != nil {
		return nil, err
	}

	var entries []batchEntryResponse

	err = decodeJSON(resp.Body, &entries, "batch response")
	if err != nil {
		return nil, err
	}

	if len(entries) != len(ops) {
		return nil, fmt.Errorf("%w: batch response has %d entries for %d operations",
			basewire.ErrDecode, len(entries), len(ops))
	}

	results := make([]basewire.BatchResult, len(entries))

	for i, entry := range entries {
		result := basewire.BatchResult{
			Status: entry.Status,
			Body:   entry.Body,
		}

		if entry.Status >= http.StatusBadRequest {
			apiErr := &basewire.APIError{Status: entry.Status}
			if len(entry.Body) > 0 {
				_ = json.Unmarshal(entry.Body, apiErr)
			}

			apiErr.Status = entry.Status
			if apiErr.Message == "" {
				apiErr.Message = http.StatusText(entry.Status)
			}

			result.Err = apiErr
		} else if isJSONObject(entry.Body) {
			var record basewire.Record
			if json.Unmarshal(entry.Body, &record) == nil && record.ID != "" {
				result.Record = &record
			}
		}

		results[i] = result
	}

	return results, nil
}

func isJSONObject(raw json.RawMessage) bool {
	for _, c := range raw {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		case '{':
			return true
		default:
			return false
		}
	}

	return false
}

// CollectionBatch appends operations for one collection to its parent
// batch.
type CollectionBatch struct {
	batch      *Batch
	collection string
}

func (cb *CollectionBatch) crudPath() string {
	return "/api/collections/" + url.PathEscape(cb.collection) + "/records"
}

// Create buffers a record insert.
func (cb *CollectionBatch) Create(body map[string]any) basewire.CollectionBatch {
	cb.batch.add(batchOperation{
		Method: http.MethodPost,
		URL:    cb.crudPath(),
		Body:   body,
	})

	return cb
}

// Update buffers a record patch.
func (cb *CollectionBatch) Update(recordID string, body map[string]any) basewire.CollectionBatch {
	if recordID == "" {
		cb.batch.fail(fmt.Errorf("%w: batch update: %w", basewire.ErrValidation, basewire.ErrMissingRecordID))

		return cb
	}

	cb.batch.add(batchOperation{
		Method: http.MethodPatch,
		URL:    cb.crudPath() + "/" + url.PathEscape(recordID),
		Body:   body,
	})

	return cb
}

// Delete buffers a record delete.
func (cb *CollectionBatch) Delete(recordID string) basewire.CollectionBatch {
	if recordID == "" {
		cb.batch.fail(fmt.Errorf("%w: batch delete: %w", basewire.ErrValidation, basewire.ErrMissingRecordID))

		return cb
	}

	cb.batch.add(batchOperation{
		Method: http.MethodDelete,
		URL:    cb.crudPath() + "/" + url.PathEscape(recordID),
	})

	return cb
}

// Upsert buffers a create-or-replace keyed on the body's "id".
func (cb *CollectionBatch) Upsert(body map[string]any) basewire.CollectionBatch {
	cb.batch.add(batchOperation{
		Method: http.MethodPut,
		URL:    cb.crudPath(),
		Body:   body,
	})

	return cb
}
