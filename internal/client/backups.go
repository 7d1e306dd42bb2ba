package client

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/url"

	bwhttp "github.com/basewire/basewire-go/internal/http"
	"github.com/basewire/basewire-go/pkg/basewire"
)

// BackupsClient manages application backups.
type BackupsClient struct {
	client *Client
}

const backupsPath = "/api/backups"

// GetFullList lists all backup archives.
func (b *BackupsClient) GetFullList(ctx context.Context) ([]*basewire.BackupFileInfo, error) {
	resp, err := b.client.httpClient.Get(ctx, backupsPath, nil)
	if err != nil {
		return nil, err
	}

	var backups []*basewire.BackupFileInfo

	err = decodeJSON(resp.Body, &backups, "backup list")
	if err != nil {
		return nil, err
	}

	return backups, nil
}

// Create starts a new backup. An empty basename lets the server pick one.
func (b *BackupsClient) Create(ctx context.Context, basename string) error {
	body := map[string]any{}
	if basename != "" {
		body["name"] = basename
	}

	_, err := b.client.httpClient.Post(ctx, backupsPath, body)

	return err
}

// Upload stores an existing backup archive under the given key. The
// archive must be a zip produced by a compatible instance.
func (b *BackupsClient) Upload(ctx context.Context, key string, archive []byte) error {
	if key == "" {
		return fmt.Errorf("%w: backup key is required", basewire.ErrValidation)
	}

	var buf bytes.Buffer

	form := multipart.NewWriter(&buf)

	part, err := form.CreateFormFile("file", key)
	if err != nil {
		return fmt.Errorf("encoding backup archive: %w", err)
	}

	if _, err = part.Write(archive); err != nil {
		return fmt.Errorf("encoding backup archive: %w", err)
	}

	if err = form.Close(); err != nil {
		return fmt.Errorf("encoding backup archive: %w", err)
	}

	_, err = b.client.httpClient.Do(ctx, &bwhttp.Request{
		Method:  "POST",
		Path:    backupsPath + "/upload",
		Body:    buf.Bytes(),
		Headers: map[string]string{"Content-Type": form.FormDataContentType()},
	})

	return err
}

// Delete removes a backup archive.
func (b *BackupsClient) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("%w: backup key is required", basewire.ErrValidation)
	}

	_, err := b.client.httpClient.Delete(ctx, backupsPath+"/"+url.PathEscape(key))

	return err
}

// Restore restores the application from a backup archive. The server
// restarts during the restore.
func (b *BackupsClient) Restore(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("%w: backup key is required", basewire.ErrValidation)
	}

	_, err := b.client.httpClient.Post(ctx, backupsPath+"/"+url.PathEscape(key)+"/restore", nil)

	return err
}

// GetDownloadURL builds the download URL for a backup archive using a file
// token from FilesClient.GetToken.
func (b *BackupsClient) GetDownloadURL(fileToken, key string) string {
	query := url.Values{}
	if fileToken != "" {
		query.Set("token", fileToken)
	}

	downloadURL := b.client.BaseURL() + backupsPath + "/" + url.PathEscape(key)
	if encoded := query.Encode(); encoded != "" {
		downloadURL += "?" + encoded
	}

	return downloadURL
}
