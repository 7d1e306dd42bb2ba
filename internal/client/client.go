// Package client implements the concrete API client behind the
// basewire.Client interface: per-resource service clients and the batch
// engine, all sharing one request pipeline and auth session.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/basewire/basewire-go/internal/auth"
	"github.com/basewire/basewire-go/internal/constants"
	bwhttp "github.com/basewire/basewire-go/internal/http"
	"github.com/basewire/basewire-go/pkg/basewire"
)

// Client is the concrete basewire.Client.
type Client struct {
	config     *basewire.Config
	httpClient *bwhttp.Client
	session    *auth.Session
	logger     basewire.Logger
	maxBatch   int
	cache      *basewire.CacheManager

	recordsMu sync.Mutex
	records   map[string]*RecordsClient

	collections *CollectionsClient
	logs        *LogsClient
	settings    *SettingsClient
	backups     *BackupsClient
	crons       *CronsClient
	files       *FilesClient
	health      *HealthClient
}

// New creates a client from a validated config. The endpoint must already
// be normalized (see pkg/bwclient).
func New(ctx context.Context, config *basewire.Config) (*Client, error) {
	if config == nil {
		return nil, basewire.ErrConfigRequired
	}

	if config.Endpoint == "" {
		return nil, basewire.ErrEndpointRequired
	}

	var store auth.Store = auth.NoopStore{}
	if config.AuthStorePath != "" {
		store = auth.NewFileStore(config.AuthStorePath)
	}

	session, err := auth.NewSession(store)
	if err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	httpOpts := []bwhttp.Option{
		bwhttp.WithLogger(logger),
		bwhttp.WithDebug(config.Debug),
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, bwhttp.WithHTTPTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 {
		waitMin := config.RetryWaitMin
		if waitMin <= 0 {
			waitMin = constants.DefaultRetryWaitMin
		}

		waitMax := config.RetryWaitMax
		if waitMax <= 0 {
			waitMax = constants.DefaultRetryWaitMax
		}

		httpOpts = append(httpOpts, bwhttp.WithRetryConfig(config.RetryMax, waitMin, waitMax))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, bwhttp.WithUserAgent(config.UserAgent))
	}

	if config.Lang != "" {
		httpOpts = append(httpOpts, bwhttp.WithLang(config.Lang))
	}

	client := &Client{
		config:     config,
		session:    session,
		logger:     logger,
		maxBatch:   resolveMaxBatch(config.MaxBatchRequests),
		records:    make(map[string]*RecordsClient),
		httpClient: bwhttp.NewClient(config.Endpoint, session, httpOpts...),
	}

	client.httpClient.SetRefresher(client.refreshAuth)

	client.collections = &CollectionsClient{client: client}
	client.logs = &LogsClient{client: client}
	client.settings = &SettingsClient{client: client}
	client.backups = &BackupsClient{client: client}
	client.crons = &CronsClient{client: client}
	client.files = &FilesClient{client: client}
	client.health = &HealthClient{client: client}

	if config.CacheConfig != nil {
		cache, cacheErr := basewire.NewCacheFromConfig(config.CacheConfig)
		if cacheErr != nil {
			return nil, fmt.Errorf("creating cache: %w", cacheErr)
		}

		client.cache = basewire.NewCacheManager(cache, nil)
	}

	err = client.establishAuth(ctx)
	if err != nil {
		return nil, err
	}

	return client, nil
}

func resolveMaxBatch(configured int) int {
	switch {
	case configured > 0:
		return configured
	case configured < 0:
		return 0
	default:
		return constants.DefaultMaxBatchRequests
	}
}

// establishAuth seeds the session from the config: an explicit token wins,
// otherwise identity/password triggers a password auth.
func (c *Client) establishAuth(ctx context.Context) error {
	if c.config.Token != "" {
		return c.session.Set(&auth.Credential{Token: c.config.Token})
	}

	if c.config.Identity == "" || c.session.IsValid() {
		return nil
	}

	collection := c.config.AuthCollection
	if collection == "" {
		collection = constants.DefaultAuthCollection
	}

	_, err := c.Collection(collection).AuthWithPassword(ctx, c.config.Identity, c.config.Password)
	if err != nil {
		return fmt.Errorf("authenticating %q: %w", c.config.Identity, err)
	}

	return nil
}

// refreshAuth re-issues the session token via the auth-refresh endpoint of
// the authenticated record's collection.
func (c *Client) refreshAuth(ctx context.Context) error {
	record := c.session.Record()
	if record == nil || record.CollectionName == "" {
		return basewire.ErrNoAuthRecord
	}

	_, err := c.Collection(record.CollectionName).AuthRefresh(ctx)

	return err
}

// Collection returns the records client for a collection, reusing one
// instance per collection name.
func (c *Client) Collection(idOrName string) basewire.RecordsClient {
	c.recordsMu.Lock()
	defer c.recordsMu.Unlock()

	records, ok := c.records[idOrName]
	if !ok {
		records = &RecordsClient{client: c, collection: idOrName}
		c.records[idOrName] = records
	}

	return records
}

// Collections returns the collections management client.
func (c *Client) Collections() basewire.CollectionsClient {
	return c.collections
}

// Logs returns the request logs client.
func (c *Client) Logs() basewire.LogsClient {
	return c.logs
}

// Settings returns the settings client.
func (c *Client) Settings() basewire.SettingsClient {
	return c.settings
}

// Backups returns the backups client.
func (c *Client) Backups() basewire.BackupsClient {
	return c.backups
}

// Crons returns the scheduled jobs client.
func (c *Client) Crons() basewire.CronsClient {
	return c.crons
}

// Files returns the files client.
func (c *Client) Files() basewire.FilesClient {
	return c.files
}

// Health returns the health check client.
func (c *Client) Health() basewire.HealthClient {
	return c.health
}

// NewBatch starts an empty batch.
func (c *Client) NewBatch() basewire.Batch {
	return &Batch{client: c}
}

// Auth exposes the auth session.
func (c *Client) Auth() basewire.AuthState {
	return c.session
}

// BaseURL returns the API endpoint.
func (c *Client) BaseURL() string {
	return c.httpClient.BaseURL()
}

// decodeJSON unmarshals a response body, mapping failures to the decode
// error kind.
func decodeJSON(data []byte, v any, what string) error {
	err := json.Unmarshal(data, v)
	if err != nil {
		return fmt.Errorf("%w: parsing %s: %w", basewire.ErrDecode, what, err)
	}

	return nil
}

// noopLogger discards all log output.
type noopLogger struct{}

func (noopLogger) Debug(string, map[string]any) {}
func (noopLogger) Info(string, map[string]any)  {}
func (noopLogger) Warn(string, map[string]any)  {}
func (noopLogger) Error(string, map[string]any) {}
