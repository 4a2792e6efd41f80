package cmd

import (
	"context"
	"fmt"

	"github.com/lukman83/sheetgen/internal/identifier"
	"github.com/lukman83/sheetgen/internal/models"
	"github.com/lukman83/sheetgen/internal/resolver"
	"github.com/lukman83/sheetgen/internal/ui"
	"github.com/spf13/cobra"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup [ean-or-sku]",
	Short: "Identify a product and generate its sheet",
	Long:  "Identify a product from a 13-digit EAN or a SKU and print the generated sheet. With --save the record is appended to the store.",
	Args:  cobra.ExactArgs(1),
	RunE:  runLookup,
}

func init() {
	lookupCmd.Flags().Bool("save", false, "Append the product and its sheet to the store")
	lookupCmd.Flags().String("format", "json", "Output format: json, table")
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	id, err := identifier.Detect(args[0])
	if err != nil {
		return err
	}
	save, _ := cmd.Flags().GetBool("save")
	format, _ := cmd.Flags().GetString("format")

	a, err := buildApp(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	spin := ui.NewSpinner()
	spin.Start(fmt.Sprintf("Identifying %s...", id.Value))
	ctx := resolver.WithProgress(context.Background(), spin.Update)

	var rec models.Record
	if save {
		ean, sku := "", ""
		if id.Kind == models.KindEAN {
			ean = id.Value
		} else {
			sku = id.Value
		}
		rec, err = a.svc.Search(ctx, ean, sku)
	} else {
		rec = a.svc.Preview(ctx, id)
	}
	spin.Stop()
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}

	out := cmd.OutOrStdout()
	switch format {
	case "table":
		printRecordsTable(out, []models.Record{rec})
		return nil
	default:
		return printJSON(out, rec)
	}
}
