// Package constants centralizes tunable defaults shared across packages.
package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration and credential
	// files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for API requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick probe operations (health checks,
	// endpoint normalization).
	ShortHTTPTimeout = 10 * time.Second

	// DefaultUserAgent is sent with every request unless overridden.
	DefaultUserAgent = "basewire-go"
)

// Transient retry defaults, applied when retries are enabled via config.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Auth defaults.
const (
	// TokenExpiryBuffer treats tokens expiring within this window as
	// already expired, so requests are not sent with a token about to
	// lapse mid-flight.
	TokenExpiryBuffer = 30 * time.Second

	// DefaultAuthCollection is the collection used for identity/password
	// auth when none is configured.
	DefaultAuthCollection = "users"

	// SuperusersCollection is the reserved superusers auth collection.
	SuperusersCollection = "_superusers"
)

// Batch limits.
const (
	// DefaultMaxBatchRequests caps operations per batch client-side.
	DefaultMaxBatchRequests = 50
)

// Cache defaults.
const (
	// DefaultCacheSize is the maximum number of in-memory cache entries.
	DefaultCacheSize = 1000

	// DefaultCacheTTL is the time-to-live for cached responses.
	DefaultCacheTTL = 5 * time.Minute
)

// Pagination defaults.
const (
	// DefaultPageSize is the perPage value used by full-list helpers.
	DefaultPageSize = 100
)
