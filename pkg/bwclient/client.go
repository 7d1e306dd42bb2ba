// Package bwclient is the entry point for creating Basewire API clients.
package bwclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/basewire/basewire-go/internal/client"
	"github.com/basewire/basewire-go/pkg/basewire"
)

// New creates an API client from a config. The endpoint is normalized:
// trailing slashes are stripped and a missing scheme defaults to https.
func New(ctx context.Context, config *basewire.Config) (basewire.Client, error) {
	if config == nil {
		return nil, basewire.ErrConfigRequired
	}

	if config.Endpoint == "" {
		return nil, basewire.ErrEndpointRequired
	}

	endpoint := strings.TrimSuffix(config.Endpoint, "/")
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	config.Endpoint = endpoint

	apiClient, err := client.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return apiClient, nil
}

// NewWithEndpoint creates an unauthenticated client.
func NewWithEndpoint(ctx context.Context, endpoint string) (basewire.Client, error) {
	return New(ctx, &basewire.Config{
		Endpoint: endpoint,
	})
}

// NewWithToken creates a client seeded with an existing auth token.
func NewWithToken(ctx context.Context, endpoint, token string) (basewire.Client, error) {
	return New(ctx, &basewire.Config{
		Endpoint: endpoint,
		Token:    token,
	})
}

// NewWithPassword creates a client that authenticates with an
// identity/password pair against the given auth collection ("" means the
// default users collection).
func NewWithPassword(ctx context.Context, endpoint, collection, identity, password string) (basewire.Client, error) {
	return New(ctx, &basewire.Config{
		Endpoint:       endpoint,
		AuthCollection: collection,
		Identity:       identity,
		Password:       password,
	})
}
