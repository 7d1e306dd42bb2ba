package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/basewire/basewire-go/pkg/basewire"
)

// CronsClient lists and triggers scheduled jobs.
type CronsClient struct {
	client *Client
}

const cronsPath = "/api/crons"

// GetFullList lists all registered scheduled jobs.
func (c *CronsClient) GetFullList(ctx context.Context) ([]*basewire.CronJob, error) {
	resp, err := c.client.httpClient.Get(ctx, cronsPath, nil)
	if err != nil {
		return nil, err
	}

	var jobs []*basewire.CronJob

	err = decodeJSON(resp.Body, &jobs, "cron job list")
	if err != nil {
		return nil, err
	}

	return jobs, nil
}

// Run triggers a scheduled job immediately.
func (c *CronsClient) Run(ctx context.Context, jobID string) error {
	if jobID == "" {
		return fmt.Errorf("%w: job ID is required", basewire.ErrValidation)
	}

	_, err := c.client.httpClient.Post(ctx, cronsPath+"/"+url.PathEscape(jobID), nil)

	return err
}
