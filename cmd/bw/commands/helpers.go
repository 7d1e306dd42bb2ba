// Package commands implements the bw CLI commands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/basewire/basewire-go/pkg/basewire"
	"github.com/basewire/basewire-go/pkg/bwclient"
)

// ErrNoAPIEndpoint is returned when no endpoint is configured.
var ErrNoAPIEndpoint = errors.New("no API endpoint configured (use --api or run 'bw login')")

// configDir returns ~/.bw, creating it if needed.
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}

	dir := filepath.Join(home, ".bw")

	err = os.MkdirAll(dir, 0750)
	if err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	return dir, nil
}

// credentialPath returns the auth credential file used by every command.
func credentialPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, "credential.json"), nil
}

// createClient builds a client from the effective CLI configuration.
func createClient(ctx context.Context) (basewire.Client, error) {
	endpoint := viper.GetString("api")
	if endpoint == "" {
		return nil, ErrNoAPIEndpoint
	}

	credPath, err := credentialPath()
	if err != nil {
		return nil, err
	}

	return bwclient.New(ctx, &basewire.Config{
		Endpoint:      endpoint,
		Token:         viper.GetString("token"),
		AuthStorePath: credPath,
		Debug:         viper.GetBool("verbose"),
	})
}

// saveEndpoint persists the API endpoint to the config file.
func saveEndpoint(endpoint string) error {
	dir, err := configDir()
	if err != nil {
		return err
	}

	viper.Set("api", endpoint)

	err = viper.WriteConfigAs(filepath.Join(dir, "config.yml"))
	if err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
