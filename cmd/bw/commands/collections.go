package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// NewCollectionsCommand creates the collections command group.
func NewCollectionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "collections",
		Aliases: []string{"collection"},
		Short:   "Inspect collection schemas (superuser)",
	}

	cmd.AddCommand(newCollectionsListCommand())
	cmd.AddCommand(newCollectionsGetCommand())
	cmd.AddCommand(newCollectionsTruncateCommand())

	return cmd
}

func newCollectionsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all collections",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			collections, err := client.Collections().GetFullList(ctx, nil)
			if err != nil {
				return fmt.Errorf("failed to list collections: %w", err)
			}

			output := viper.GetString("output")
			switch output {
			case "json":
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")

				return encoder.Encode(collections)
			case "yaml":
				encoder := yaml.NewEncoder(os.Stdout)

				return encoder.Encode(collections)
			default:
				if len(collections) == 0 {
					fmt.Println("No collections found")

					return nil
				}

				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Name", "ID", "Type", "Fields", "System")

				for _, collection := range collections {
					_ = table.Append(collection.Name, collection.ID, collection.Type,
						fmt.Sprintf("%d", len(collection.Fields)),
						fmt.Sprintf("%t", collection.System))
				}

				_ = table.Render()
			}

			return nil
		},
	}
}

func newCollectionsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get COLLECTION",
		Short: "Show a collection schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			collection, err := client.Collections().GetOne(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get collection: %w", err)
			}

			output := viper.GetString("output")
			switch output {
			case "yaml":
				encoder := yaml.NewEncoder(os.Stdout)

				return encoder.Encode(collection)
			case "json":
				fallthrough
			default:
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")

				return encoder.Encode(collection)
			}
		},
	}
}

func newCollectionsTruncateCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "truncate COLLECTION",
		Short: "Delete all records of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("truncate deletes every record of %q; re-run with --yes to confirm", args[0])
			}

			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			err = client.Collections().Truncate(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to truncate collection: %w", err)
			}

			fmt.Printf("Truncated collection %s\n", args[0])

			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "skip the confirmation")

	return cmd
}
