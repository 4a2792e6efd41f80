package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lukman83/sheetgen/internal/catalog"
	"github.com/lukman83/sheetgen/internal/export"
	"github.com/lukman83/sheetgen/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type tools struct {
	svc *catalog.Service
}

func registerTools(s *server.MCPServer, svc *catalog.Service) {
	t := &tools{svc: svc}

	// lookup_product
	lookupTool := mcp.NewTool("lookup_product",
		mcp.WithDescription("Identify a product by EAN-13 or SKU, generate its catalog sheet and store it"),
		mcp.WithString("ean",
			mcp.Description("13-digit EAN barcode"),
		),
		mcp.WithString("sku",
			mcp.Description("Merchant SKU (used when no EAN is given)"),
		),
	)
	s.AddTool(lookupTool, t.handleLookupProduct)

	// list_products
	listTool := mcp.NewTool("list_products",
		mcp.WithDescription("List stored products with their sheets"),
		mcp.WithNumber("limit",
			mcp.Description("Return only the most recent N records (default: all)"),
		),
	)
	s.AddTool(listTool, t.handleListProducts)

	// export_product_csv
	exportTool := mcp.NewTool("export_product_csv",
		mcp.WithDescription("Export a stored product as a semicolon-separated catalog import CSV"),
		mcp.WithString("product_id",
			mcp.Required(),
			mcp.Description("Stored product id"),
		),
	)
	s.AddTool(exportTool, t.handleExportProductCSV)
}

func (t *tools) handleLookupProduct(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ean := request.GetString("ean", "")
	sku := request.GetString("sku", "")

	rec, err := t.svc.Search(ctx, ean, sku)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("lookup error: %v", err)), nil
	}

	data, _ := json.MarshalIndent(rec, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}

func (t *tools) handleListProducts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", 0)

	records, err := t.svc.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list error: %v", err)), nil
	}
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}

	data, _ := json.MarshalIndent(records, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}

func (t *tools) handleExportProductCSV(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("product_id", "")
	if id == "" {
		return mcp.NewToolResultError("product_id is required"), nil
	}

	var buf bytes.Buffer
	err := t.svc.Export(ctx, &buf, id, export.FormatCSV, export.UTF8)
	if errors.Is(err, store.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("product %s not found", id)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("export error: %v", err)), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}
