package basewire

import (
	"context"
	"encoding/json"
	"net/http"
)

// DefaultMaxBatchRequests is the client-side cap on operations per batch.
const DefaultMaxBatchRequests = 50

// Batch buffers write operations and submits them as one transactional
// request. Operations execute server-side in insertion order.
type Batch interface {
	// Collection returns a sub-builder appending operations for one
	// collection. Operations from multiple sub-builders interleave in the
	// order the calls were made.
	Collection(idOrName string) CollectionBatch
	// Len returns the number of buffered operations.
	Len() int
	// Send submits the batch. The result slice has exactly one entry per
	// buffered operation, in the same order. A failed operation yields a
	// failure entry, not an error from Send.
	Send(ctx context.Context) ([]BatchResult, error)
}

// CollectionBatch appends operations for a single collection to its parent
// batch. All methods return the builder for chaining.
type CollectionBatch interface {
	Create(body map[string]any) CollectionBatch
	Update(recordID string, body map[string]any) CollectionBatch
	Delete(recordID string) CollectionBatch
	// Upsert creates the record, or fully replaces it when body contains a
	// matching "id".
	Upsert(body map[string]any) CollectionBatch
}

// BatchResult is the outcome of one batch operation.
type BatchResult struct {
	// Status is the operation's HTTP status.
	Status int `json:"status"`
	// Body is the operation's raw response payload.
	Body json.RawMessage `json:"body,omitempty"`
	// Record is the decoded record for successful create/update/upsert
	// operations; nil for deletes and failures.
	Record *Record `json:"-"`
	// Err is set when the operation failed (Status >= 400).
	Err *APIError `json:"-"`
}

// OK reports whether the operation succeeded.
func (r *BatchResult) OK() bool {
	return r.Status >= http.StatusOK && r.Status < http.StatusBadRequest
}
