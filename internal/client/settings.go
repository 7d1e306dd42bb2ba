package client

import (
	"context"
	"fmt"

	"github.com/basewire/basewire-go/pkg/basewire"
)

// SettingsClient manages application settings.
type SettingsClient struct {
	client *Client
}

const settingsPath = "/api/settings"

// GetAll fetches the full settings document.
func (s *SettingsClient) GetAll(ctx context.Context) (basewire.Settings, error) {
	resp, err := s.client.httpClient.Get(ctx, settingsPath, nil)
	if err != nil {
		return nil, err
	}

	var settings basewire.Settings

	err = decodeJSON(resp.Body, &settings, "settings")
	if err != nil {
		return nil, err
	}

	return settings, nil
}

// Update patches the settings document and returns the updated version.
func (s *SettingsClient) Update(ctx context.Context, body basewire.Settings) (basewire.Settings, error) {
	resp, err := s.client.httpClient.Patch(ctx, settingsPath, body)
	if err != nil {
		return nil, err
	}

	var settings basewire.Settings

	err = decodeJSON(resp.Body, &settings, "updated settings")
	if err != nil {
		return nil, err
	}

	return settings, nil
}

// TestEmail sends a test email of the given template to the address.
func (s *SettingsClient) TestEmail(ctx context.Context, collection, toEmail, template string) error {
	if toEmail == "" || template == "" {
		return fmt.Errorf("%w: email and template are required", basewire.ErrValidation)
	}

	body := map[string]any{
		"email":    toEmail,
		"template": template,
	}

	if collection != "" {
		body["collection"] = collection
	}

	_, err := s.client.httpClient.Post(ctx, settingsPath+"/test/email", body)

	return err
}

// GenerateAppleClientSecret generates a signed Apple OAuth2 client secret.
func (s *SettingsClient) GenerateAppleClientSecret(ctx context.Context, req *basewire.AppleClientSecretRequest) (string, error) {
	if req == nil {
		return "", fmt.Errorf("%w: request is required", basewire.ErrValidation)
	}

	resp, err := s.client.httpClient.Post(ctx, settingsPath+"/apple/generate-client-secret", req)
	if err != nil {
		return "", err
	}

	var result struct {
		Secret string `json:"secret"`
	}

	err = decodeJSON(resp.Body, &result, "apple client secret")
	if err != nil {
		return "", err
	}

	return result.Secret, nil
}
