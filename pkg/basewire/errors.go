package basewire

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Static errors for err113 compliance.
var (
	// ErrValidation marks requests rejected client-side before any network
	// I/O (bad paging values, empty batch, missing record ID, ...).
	ErrValidation = errors.New("validation failed")
	// ErrNetwork marks transport-level failures: connection refused,
	// timeouts, TLS handshake errors. The request may or may not have
	// reached the server.
	ErrNetwork = errors.New("network error")
	// ErrDecode marks responses that arrived but could not be decoded into
	// the expected shape.
	ErrDecode = errors.New("decoding response failed")

	ErrConfigRequired    = errors.New("config is required")
	ErrEndpointRequired  = errors.New("endpoint is required")
	ErrEmptyBatch        = errors.New("batch contains no operations")
	ErrBatchTooLarge     = errors.New("batch exceeds maximum size")
	ErrMissingRecordID   = errors.New("record ID is required")
	ErrMissingCollection = errors.New("collection name is required")
	ErrMissingFilter     = errors.New("filter is required")
	ErrNoAuthRecord      = errors.New("no authenticated record")
	ErrPageOutOfRange    = errors.New("page and perPage must be positive")
	ErrCacheKeyNotFound  = errors.New("key not found")
	ErrCacheEntryExpired = errors.New("entry expired")
	ErrCacheDisabled     = errors.New("cache is disabled")
	ErrUnknownCacheType  = errors.New("unknown cache type")
)

// FieldError describes a single invalid field in an API error payload.
type FieldError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIError is a non-2xx response from the backend, decoded from its JSON
// error envelope. URL and Status are filled in by the transport.
type APIError struct {
	URL     string                `json:"url,omitempty"`
	Status  int                   `json:"status"`
	Code    string                `json:"code,omitempty"`
	Message string                `json:"message"`
	Data    map[string]FieldError `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "Something went wrong while processing your request."
	}

	if len(e.Data) == 0 {
		return fmt.Sprintf("%d: %s", e.Status, msg)
	}

	fields := make([]string, 0, len(e.Data))
	for name, fe := range e.Data {
		fields = append(fields, fmt.Sprintf("%s: %s", name, fe.Message))
	}

	sort.Strings(fields)

	return fmt.Sprintf("%d: %s (%s)", e.Status, msg, strings.Join(fields, "; "))
}

// IsNotFound returns true if the error is a 404 API error.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized returns true if the error is a 401 API error.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsForbidden returns true if the error is a 403 API error.
func IsForbidden(err error) bool {
	return hasStatus(err, http.StatusForbidden)
}

// IsBadRequest returns true if the error is a 400 API error.
func IsBadRequest(err error) bool {
	return hasStatus(err, http.StatusBadRequest)
}

// IsValidation returns true if the request was rejected client-side
// before reaching the network.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNetwork returns true if the error is a transport-level failure.
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// IsDecode returns true if a response arrived but could not be decoded.
func IsDecode(err error) bool {
	return errors.Is(err, ErrDecode)
}

// IsAbort returns true if the error stems from context cancellation or an
// exceeded deadline.
func IsAbort(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == status
	}

	return false
}
