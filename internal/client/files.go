package client

import (
	"context"
	"net/url"
	"strconv"

	"github.com/basewire/basewire-go/pkg/basewire"
)

// FilesClient issues file tokens and builds file URLs.
type FilesClient struct {
	client *Client
}

// GetToken requests a short-lived token for protected file access.
func (f *FilesClient) GetToken(ctx context.Context) (string, error) {
	resp, err := f.client.httpClient.Post(ctx, "/api/files/token", nil)
	if err != nil {
		return "", err
	}

	var result struct {
		Token string `json:"token"`
	}

	err = decodeJSON(resp.Body, &result, "file token")
	if err != nil {
		return "", err
	}

	return result.Token, nil
}

// GetURL builds the URL of a record file. Returns "" when the record or
// filename is missing.
func (f *FilesClient) GetURL(record *basewire.Record, filename string, opts *basewire.FileOptions) string {
	if record == nil || record.ID == "" || filename == "" {
		return ""
	}

	collection := record.CollectionName
	if collection == "" {
		collection = record.CollectionID
	}

	fileURL := f.client.BaseURL() + "/api/files/" +
		url.PathEscape(collection) + "/" +
		url.PathEscape(record.ID) + "/" +
		url.PathEscape(filename)

	if opts == nil {
		return fileURL
	}

	query := url.Values{}

	if opts.Thumb != "" {
		query.Set("thumb", opts.Thumb)
	}

	if opts.Download {
		query.Set("download", strconv.FormatBool(true))
	}

	if opts.Token != "" {
		query.Set("token", opts.Token)
	}

	if encoded := query.Encode(); encoded != "" {
		fileURL += "?" + encoded
	}

	return fileURL
}
