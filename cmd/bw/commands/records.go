package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/basewire/basewire-go/pkg/basewire"
)

// NewRecordsCommand creates the records command group.
func NewRecordsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "records",
		Aliases: []string{"record", "r"},
		Short:   "Manage collection records",
	}

	cmd.AddCommand(newRecordsListCommand())
	cmd.AddCommand(newRecordsGetCommand())
	cmd.AddCommand(newRecordsCreateCommand())
	cmd.AddCommand(newRecordsUpdateCommand())
	cmd.AddCommand(newRecordsDeleteCommand())

	return cmd
}

func newRecordsListCommand() *cobra.Command {
	var (
		page    int
		perPage int
		filter  string
		sortBy  string
		expand  string
	)

	cmd := &cobra.Command{
		Use:   "list COLLECTION",
		Short: "List records of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			opts := basewire.NewListOptions().
				WithFilterString(filter).
				WithSort(sortBy).
				WithExpand(expand)

			result, err := client.Collection(args[0]).GetList(ctx, page, perPage, opts)
			if err != nil {
				return fmt.Errorf("failed to list records: %w", err)
			}

			output := viper.GetString("output")
			switch output {
			case "json":
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")

				return encoder.Encode(result)
			case "yaml":
				encoder := yaml.NewEncoder(os.Stdout)

				return encoder.Encode(result)
			default:
				if len(result.Items) == 0 {
					fmt.Println("No records found")

					return nil
				}

				renderRecordsTable(result.Items)
				fmt.Printf("Page %d of %d (%d records total)\n",
					result.Page, result.TotalPages, result.TotalItems)
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&perPage, "per-page", 30, "records per page")
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "filter expression")
	cmd.Flags().StringVarP(&sortBy, "sort", "s", "", "sort expression, e.g. -created")
	cmd.Flags().StringVarP(&expand, "expand", "e", "", "relations to expand")

	return cmd
}

// renderRecordsTable prints records with the union of their field names as
// columns.
func renderRecordsTable(records []*basewire.Record) {
	fieldSet := map[string]bool{}

	for _, record := range records {
		for name := range record.Data {
			fieldSet[name] = true
		}
	}

	fields := make([]string, 0, len(fieldSet))
	for name := range fieldSet {
		fields = append(fields, name)
	}

	sort.Strings(fields)

	header := append([]string{"ID"}, fields...)

	table := tablewriter.NewWriter(os.Stdout)
	table.Header(toAnySlice(header)...)

	for _, record := range records {
		row := []string{record.ID}
		for _, name := range fields {
			row = append(row, formatCell(record.Get(name)))
		}

		_ = table.Append(toAnySlice(row)...)
	}

	_ = table.Render()
}

func toAnySlice(values []string) []any {
	result := make([]any, len(values))
	for i, v := range values {
		result[i] = v
	}

	return result
}

func formatCell(value any) string {
	if value == nil {
		return ""
	}

	text := fmt.Sprintf("%v", value)
	if len(text) > 60 {
		text = text[:57] + "..."
	}

	return strings.ReplaceAll(text, "\n", " ")
}

func newRecordsGetCommand() *cobra.Command {
	var expand string

	cmd := &cobra.Command{
		Use:   "get COLLECTION RECORD_ID",
		Short: "Show a single record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			opts := basewire.NewListOptions().WithExpand(expand)

			record, err := client.Collection(args[0]).GetOne(ctx, args[1], opts)
			if err != nil {
				return fmt.Errorf("failed to get record: %w", err)
			}

			return renderRecord(record)
		},
	}

	cmd.Flags().StringVarP(&expand, "expand", "e", "", "relations to expand")

	return cmd
}

func renderRecord(record *basewire.Record) error {
	output := viper.GetString("output")
	switch output {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		return encoder.Encode(record)
	case "yaml":
		encoder := yaml.NewEncoder(os.Stdout)

		return encoder.Encode(record)
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Field", "Value")

		_ = table.Append("id", record.ID)
		_ = table.Append("collection", record.CollectionName)

		fields := make([]string, 0, len(record.Data))
		for name := range record.Data {
			fields = append(fields, name)
		}

		sort.Strings(fields)

		for _, name := range fields {
			_ = table.Append(name, formatCell(record.Get(name)))
		}

		_ = table.Render()
	}

	return nil
}

func parseBodyFlag(data string) (map[string]any, error) {
	var body map[string]any

	err := json.Unmarshal([]byte(data), &body)
	if err != nil {
		return nil, fmt.Errorf("parsing --data JSON: %w", err)
	}

	return body, nil
}

func newRecordsCreateCommand() *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "create COLLECTION",
		Short: "Create a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := parseBodyFlag(data)
			if err != nil {
				return err
			}

			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			record, err := client.Collection(args[0]).Create(ctx, body, nil)
			if err != nil {
				return fmt.Errorf("failed to create record: %w", err)
			}

			return renderRecord(record)
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "{}", "record fields as JSON")

	return cmd
}

func newRecordsUpdateCommand() *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "update COLLECTION RECORD_ID",
		Short: "Update a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := parseBodyFlag(data)
			if err != nil {
				return err
			}

			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			record, err := client.Collection(args[0]).Update(ctx, args[1], body, nil)
			if err != nil {
				return fmt.Errorf("failed to update record: %w", err)
			}

			return renderRecord(record)
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "{}", "changed fields as JSON")

	return cmd
}

func newRecordsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete COLLECTION RECORD_ID",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			err = client.Collection(args[0]).Delete(ctx, args[1])
			if err != nil {
				return fmt.Errorf("failed to delete record: %w", err)
			}

			fmt.Printf("Deleted record %s from %s\n", args[1], args[0])

			return nil
		},
	}
}
