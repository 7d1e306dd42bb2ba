package client

import (
	"context"

	"github.com/basewire/basewire-go/pkg/basewire"
)

// HealthClient performs API health checks.
type HealthClient struct {
	client *Client
}

// Check calls the health endpoint.
func (h *HealthClient) Check(ctx context.Context) (*basewire.HealthResponse, error) {
	resp, err := h.client.httpClient.Get(ctx, "/api/health", nil)
	if err != nil {
		return nil, err
	}

	var health basewire.HealthResponse

	err = decodeJSON(resp.Body, &health, "health response")
	if err != nil {
		return nil, err
	}

	return &health, nil
}
