package cmd

import (
	"context"

	"github.com/lukman83/sheetgen/internal/models"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored products with their sheets",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().Int("limit", 0, "Show only the most recent N products (0 = all)")
	listCmd.Flags().String("format", "table", "Output format: json, table")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	format, _ := cmd.Flags().GetString("format")

	ctx := context.Background()
	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.svc.List(ctx)
	if err != nil {
		return err
	}
	records = latest(records, limit)

	out := cmd.OutOrStdout()
	if format == "json" {
		return printJSON(out, records)
	}
	if len(records) == 0 {
		cmd.PrintErrln("No products stored yet.")
		return nil
	}
	printRecordsTable(out, records)
	return nil
}

// latest keeps the last n records in insertion order.
func latest(records []models.Record, n int) []models.Record {
	if n <= 0 || n >= len(records) {
		return records
	}
	return records[len(records)-n:]
}
