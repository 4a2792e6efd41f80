package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/lukman83/sheetgen/internal/export"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [product-id]",
	Short: "Export products as a catalog import file",
	Long:  "Export one product, or every stored product when no id is given, as a semicolon-separated CSV or an XLSX workbook.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().String("format", "csv", "Export format: csv, xlsx")
	exportCmd.Flags().String("charset", "utf-8", "CSV charset: utf-8, latin1")
	exportCmd.Flags().StringP("out", "o", "", "Output file (default: stdout for csv, prestashop_import_<id>.xlsx for xlsx)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	fs, _ := cmd.Flags().GetString("format")
	format, err := export.ParseFormat(fs)
	if err != nil {
		return err
	}
	cs, _ := cmd.Flags().GetString("charset")
	charset, err := export.ParseCharset(cs)
	if err != nil {
		return err
	}
	outPath, _ := cmd.Flags().GetString("out")

	name := "all"
	if len(args) == 1 {
		name = args[0]
	}
	if outPath == "" && format == export.FormatXLSX {
		outPath = export.Filename(name, string(format))
	}

	ctx := context.Background()
	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var w io.Writer = cmd.OutOrStdout()
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	if len(args) == 1 {
		err = a.svc.Export(ctx, w, args[0], format, charset)
	} else {
		err = a.svc.ExportAll(ctx, w, format, charset)
	}
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	if outPath != "" {
		cmd.PrintErrf("Wrote %s\n", outPath)
	}
	return nil
}
