package cmd

import (
	"context"
	"fmt"
	"log"

	mcpserver "github.com/lukman83/sheetgen/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server",
	RunE:  runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	a, err := buildApp(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Fprintln(cmd.ErrOrStderr(), "Starting sheetgen MCP server on stdio...")

	if err := mcpserver.Serve(a.svc); err != nil {
		log.Printf("MCP server error: %v", err)
		return err
	}
	return nil
}
