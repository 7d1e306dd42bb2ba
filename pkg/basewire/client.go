package basewire

import (
	"context"
	"time"
)

// Client is the top-level API client.
type Client interface {
	// Collection returns the records client for a collection ID or name.
	Collection(idOrName string) RecordsClient
	// Collections manages collection schemas (superuser).
	Collections() CollectionsClient
	// Logs accesses request logs (superuser).
	Logs() LogsClient
	// Settings manages application settings (superuser).
	Settings() SettingsClient
	// Backups manages application backups (superuser).
	Backups() BackupsClient
	// Crons lists and triggers scheduled jobs (superuser).
	Crons() CronsClient
	// Files builds file URLs and issues file tokens.
	Files() FilesClient
	// Health performs API health checks.
	Health() HealthClient
	// NewBatch starts an empty batch of write operations.
	NewBatch() Batch
	// Auth exposes the current auth state.
	Auth() AuthState
	// BaseURL returns the normalized API endpoint.
	BaseURL() string
}

// AuthState is a read view over the client's auth session.
type AuthState interface {
	// Token returns the current auth token, or "" when unauthenticated.
	Token() string
	// Record returns the authenticated record, or nil.
	Record() *Record
	// IsValid reports whether a non-expired token is held.
	IsValid() bool
	// IsSuperuser reports whether the authenticated record belongs to the
	// superusers collection.
	IsSuperuser() bool
	// Clear drops the current credential and clears persistence.
	Clear() error
}

// RecordsClient performs CRUD and auth operations against one collection.
type RecordsClient interface {
	GetList(ctx context.Context, page, perPage int, opts *ListOptions) (*RecordList, error)
	GetFullList(ctx context.Context, opts *ListOptions) ([]*Record, error)
	GetFirstListItem(ctx context.Context, filter string, opts *ListOptions) (*Record, error)
	GetOne(ctx context.Context, recordID string, opts *ListOptions) (*Record, error)
	Create(ctx context.Context, body map[string]any, opts *ListOptions) (*Record, error)
	Update(ctx context.Context, recordID string, body map[string]any, opts *ListOptions) (*Record, error)
	Delete(ctx context.Context, recordID string) error

	// Auth operations (auth collections only).
	AuthWithPassword(ctx context.Context, identity, password string) (*AuthResponse, error)
	AuthWithOTP(ctx context.Context, otpID, password string) (*AuthResponse, error)
	RequestOTP(ctx context.Context, email string) (*OTPResponse, error)
	AuthRefresh(ctx context.Context) (*AuthResponse, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, password, passwordConfirm string) error
	RequestVerification(ctx context.Context, email string) error
	ConfirmVerification(ctx context.Context, token string) error
	RequestEmailChange(ctx context.Context, newEmail string) error
	ConfirmEmailChange(ctx context.Context, token, password string) error
	ListAuthMethods(ctx context.Context) (*AuthMethodsResponse, error)
	// Impersonate issues a token for another record and returns a fresh
	// client bound to it. The current client's session is untouched.
	Impersonate(ctx context.Context, recordID string, duration time.Duration) (Client, error)
}

// CollectionsClient manages collection schemas.
type CollectionsClient interface {
	GetList(ctx context.Context, page, perPage int, opts *ListOptions) (*ListResult[*Collection], error)
	GetFullList(ctx context.Context, opts *ListOptions) ([]*Collection, error)
	GetOne(ctx context.Context, idOrName string) (*Collection, error)
	Create(ctx context.Context, collection *Collection) (*Collection, error)
	Update(ctx context.Context, idOrName string, collection *Collection) (*Collection, error)
	Delete(ctx context.Context, idOrName string) error
	// Truncate deletes all records of a collection.
	Truncate(ctx context.Context, idOrName string) error
	// Import replaces the schema with the given collections; deleteMissing
	// removes collections absent from the import set.
	Import(ctx context.Context, collections []*Collection, deleteMissing bool) error
}

// LogsClient reads request logs.
type LogsClient interface {
	GetList(ctx context.Context, page, perPage int, opts *ListOptions) (*ListResult[*LogEntry], error)
	GetOne(ctx context.Context, logID string) (*LogEntry, error)
	GetStats(ctx context.Context, opts *ListOptions) ([]*LogStat, error)
}

// SettingsClient manages application settings.
type SettingsClient interface {
	GetAll(ctx context.Context) (Settings, error)
	Update(ctx context.Context, body Settings) (Settings, error)
	// TestEmail sends a test email of the given template ("verification",
	// "password-reset", "email-change") to the address.
	TestEmail(ctx context.Context, collection, toEmail, template string) error
	GenerateAppleClientSecret(ctx context.Context, req *AppleClientSecretRequest) (string, error)
}

// AppleClientSecretRequest carries the inputs for Apple OAuth2 secret
// generation.
type AppleClientSecretRequest struct {
	ClientID   string `json:"clientId"`
	TeamID     string `json:"teamId"`
	KeyID      string `json:"keyId"`
	PrivateKey string `json:"privateKey"`
	Duration   int    `json:"duration"`
}

// BackupsClient manages application backups.
type BackupsClient interface {
	GetFullList(ctx context.Context) ([]*BackupFileInfo, error)
	Create(ctx context.Context, basename string) error
	// Upload stores an existing backup archive under the given key.
	Upload(ctx context.Context, key string, archive []byte) error
	Delete(ctx context.Context, key string) error
	Restore(ctx context.Context, key string) error
	// GetDownloadURL builds the download URL for a backup using a file
	// token from FilesClient.GetToken.
	GetDownloadURL(fileToken, key string) string
}

// CronsClient lists and triggers scheduled jobs.
type CronsClient interface {
	GetFullList(ctx context.Context) ([]*CronJob, error)
	Run(ctx context.Context, jobID string) error
}

// FilesClient issues file tokens and builds file URLs.
type FilesClient interface {
	// GetToken requests a short-lived token for protected file access.
	GetToken(ctx context.Context) (string, error)
	// GetURL builds the public URL of a record file.
	GetURL(record *Record, filename string, opts *FileOptions) string
}

// FileOptions tune file URL construction.
type FileOptions struct {
	// Thumb is a thumbnail spec such as "100x250".
	Thumb string
	// Download forces a download response.
	Download bool
	// Token is a protected-file token from FilesClient.GetToken.
	Token string
}

// HealthClient performs API health checks.
type HealthClient interface {
	Check(ctx context.Context) (*HealthResponse, error)
}

// Logger is the logging interface used across the client.
type Logger interface {
	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

// Config configures a client.
type Config struct {
	// Endpoint is the API base URL, e.g. "https://app.example.com".
	Endpoint string

	// Token seeds the auth session with an existing token.
	Token string

	// Identity/Password authenticate against AuthCollection on first use
	// when no token is configured.
	Identity string
	Password string

	// AuthCollection is the collection used for Identity/Password auth.
	// Defaults to "users".
	AuthCollection string

	// Lang sets the Accept-Language header.
	Lang string

	// UserAgent overrides the default User-Agent header.
	UserAgent string

	// AuthStorePath persists the auth credential to a file when set.
	AuthStorePath string

	// HTTPTimeout bounds each HTTP request. Zero means the default.
	HTTPTimeout time.Duration

	// RetryMax enables transient retries (429/5xx) when positive.
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// MaxBatchRequests caps the client-side batch size. Zero means the
	// default; negative disables the check.
	MaxBatchRequests int

	// CacheConfig enables the optional read cache.
	CacheConfig *CacheConfig

	Logger Logger
	Debug  bool
}
