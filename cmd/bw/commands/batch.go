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

	"github.com/basewire/basewire-go/pkg/basewire"
)

// batchFileOperation is one entry of a batch input file.
type batchFileOperation struct {
	Action     string         `json:"action"     yaml:"action"`
	Collection string         `json:"collection" yaml:"collection"`
	ID         string         `json:"id,omitempty"   yaml:"id,omitempty"`
	Body       map[string]any `json:"body,omitempty" yaml:"body,omitempty"`
}

// NewBatchCommand creates the batch command.
func NewBatchCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Submit a batch of record writes",
		Long: `Submit a batch of create/update/delete/upsert operations from a JSON file.

The file holds an array of operations, executed in order as one
transaction:

  [
    {"action": "create", "collection": "posts", "body": {"title": "hello"}},
    {"action": "update", "collection": "posts", "id": "abc123", "body": {"title": "hi"}},
    {"action": "delete", "collection": "posts", "id": "def456"}
  ]`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading batch file: %w", err)
			}

			var ops []batchFileOperation

			err = json.Unmarshal(data, &ops)
			if err != nil {
				return fmt.Errorf("parsing batch file: %w", err)
			}

			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			batch := client.NewBatch()

			for i, op := range ops {
				sub := batch.Collection(op.Collection)

				switch op.Action {
				case "create":
					sub.Create(op.Body)
				case "update":
					sub.Update(op.ID, op.Body)
				case "delete":
					sub.Delete(op.ID)
				case "upsert":
					sub.Upsert(op.Body)
				default:
					return fmt.Errorf("operation %d: unknown action %q", i, op.Action)
				}
			}

			results, err := batch.Send(ctx)
			if err != nil {
				return fmt.Errorf("batch failed: %w", err)
			}

			return renderBatchResults(ops, results)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "batch operations file (JSON)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func renderBatchResults(ops []batchFileOperation, results []basewire.BatchResult) error {
	output := viper.GetString("output")
	switch output {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		return encoder.Encode(results)
	case "yaml":
		encoder := yaml.NewEncoder(os.Stdout)

		return encoder.Encode(results)
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("#", "Action", "Collection", "Status", "Result")

		failed := 0

		for i, result := range results {
			outcome := "ok"

			if result.Err != nil {
				outcome = result.Err.Message
				failed++
			} else if result.Record != nil {
				outcome = result.Record.ID
			}

			_ = table.Append(fmt.Sprintf("%d", i+1), ops[i].Action, ops[i].Collection,
				fmt.Sprintf("%d", result.Status), outcome)
		}

		_ = table.Render()

		if failed > 0 {
			return fmt.Errorf("%d of %d operations failed", failed, len(results))
		}
	}

	return nil
}
