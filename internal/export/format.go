package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/lukman83/sheetgen/internal/models"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// Write dispatches to the CSV or XLSX writer. The charset only applies to CSV.
func Write(w io.Writer, records []models.Record, f Format, cs Charset) error {
	if f == FormatXLSX {
		return WriteXLSX(w, records)
	}
	return WriteCSV(w, records, cs)
}

func ContentType(f Format, cs Charset) string {
	switch {
	case f == FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case cs == Latin1:
		return "text/csv; charset=windows-1252"
	default:
		return "text/csv; charset=utf-8"
	}
}
