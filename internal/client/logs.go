package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/basewire/basewire-go/pkg/basewire"
)

// LogsClient reads request logs.
type LogsClient struct {
	client *Client
}

const logsPath = "/api/logs"

// GetList fetches one page of request logs.
func (l *LogsClient) GetList(ctx context.Context, page, perPage int, opts *basewire.ListOptions) (*basewire.ListResult[*basewire.LogEntry], error) {
	if page <= 0 || perPage <= 0 {
		return nil, fmt.Errorf("%w: %w: page=%d perPage=%d",
			basewire.ErrValidation, basewire.ErrPageOutOfRange, page, perPage)
	}

	query, err := opts.ToValues()
	if err != nil {
		return nil, err
	}

	query.Set("page", fmt.Sprintf("%d", page))
	query.Set("perPage", fmt.Sprintf("%d", perPage))

	resp, err := l.client.httpClient.Get(ctx, logsPath, query)
	if err != nil {
		return nil, err
	}

	var result basewire.ListResult[*basewire.LogEntry]

	err = decodeJSON(resp.Body, &result, "log list")
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// GetOne fetches a single log entry.
func (l *LogsClient) GetOne(ctx context.Context, logID string) (*basewire.LogEntry, error) {
	if logID == "" {
		return nil, fmt.Errorf("%w: log ID is required", basewire.ErrValidation)
	}

	resp, err := l.client.httpClient.Get(ctx, logsPath+"/"+url.PathEscape(logID), nil)
	if err != nil {
		return nil, err
	}

	var entry basewire.LogEntry

	err = decodeJSON(resp.Body, &entry, "log entry")
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

// GetStats fetches hourly aggregated log statistics. The options' Filter
// narrows the aggregation window.
func (l *LogsClient) GetStats(ctx context.Context, opts *basewire.ListOptions) ([]*basewire.LogStat, error) {
	query, err := opts.ToValues()
	if err != nil {
		return nil, err
	}

	resp, err := l.client.httpClient.Get(ctx, logsPath+"/stats", query)
	if err != nil {
		return nil, err
	}

	var stats []*basewire.LogStat

	err = decodeJSON(resp.Body, &stats, "log stats")
	if err != nil {
		return nil, err
	}

	return stats, nil
}
