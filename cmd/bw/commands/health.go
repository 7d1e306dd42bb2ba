package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// NewHealthCommand creates the health command.
func NewHealthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check API health",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			health, err := client.Health().Check(ctx)
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}

			output := viper.GetString("output")
			switch output {
			case "json":
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")

				return encoder.Encode(health)
			case "yaml":
				encoder := yaml.NewEncoder(os.Stdout)

				return encoder.Encode(health)
			default:
				fmt.Printf("%s (%d)\n", health.Message, health.Code)
			}

			return nil
		},
	}
}
