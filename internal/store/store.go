// Package store persists generated products together with their sheets.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/lukman83/sheetgen/internal/models"
)

var ErrNotFound = errors.New("not found")

// Store keeps records in insertion order. Records are never updated in place
// and identical searches are stored twice.
type Store interface {
	Append(ctx context.Context, rec models.Record) error
	List(ctx context.Context) ([]models.Record, error)
	FindByProductID(ctx context.Context, id string) (models.Record, error)
	// DeleteProduct drops the product and its sheet.
	DeleteProduct(ctx context.Context, id string) error
	// DeleteSheet drops only the sheet with the given sheet id.
	DeleteSheet(ctx context.Context, id string) error
	Close() error
}

// Drivers.
const (
	DriverJSONLog  = "jsonlog"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Options struct {
	Driver string
	Path   string // jsonlog file or sqlite database
	DSN    string // postgres connection string
}

func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "", DriverJSONLog:
		return OpenJSONLog(opts.Path)
	case DriverSQLite:
		return OpenSQL(ctx, DriverSQLite, opts.Path)
	case DriverPostgres:
		return OpenSQL(ctx, DriverPostgres, opts.DSN)
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}

// Sheets lists the sheets of every record that still has one.
func Sheets(records []models.Record) []models.Sheet {
	var out []models.Sheet
	for _, r := range records {
		if r.Sheet != nil {
			out = append(out, *r.Sheet)
		}
	}
	return out
}

// Products lists the products of records.
func Products(records []models.Record) []models.Product {
	out := make([]models.Product, 0, len(records))
	for _, r := range records {
		out = append(out, r.Product)
	}
	return out
}
