// Package export flattens stored records into the catalog import formats:
// semicolon-separated CSV (UTF-8 or Windows-1252) and XLSX.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/lukman83/sheetgen/internal/models"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Header is the fixed column order expected by the catalog importer.
var Header = []string{
	"ID", "Actif", "Nom", "Categories", "Prix HT", "Prix TTC", "Référence",
	"EAN-13", "Description courte", "Description", "Balise titre",
	"Méta-description", "URL simplifiée", "Image", "Poids", "Quantité",
	"Visibilité", "Marque",
	"Caractéristique 1", "Caractéristique 2", "Caractéristique 3",
	"Caractéristique 4", "Caractéristique 5",
}

const (
	maxCharacteristics = 5
	defaultQuantity    = 100
	shortDescLength    = 160
)

var taxRate = decimal.RequireFromString("1.2")

type Charset string

const (
	UTF8   Charset = "utf-8"
	Latin1 Charset = "latin1"
)

// ParseCharset accepts utf-8 (default) and latin1 / windows-1252.
func ParseCharset(s string) (Charset, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "utf-8", "utf8":
		return UTF8, nil
	case "latin1", "latin-1", "iso-8859-1", "windows-1252", "cp1252":
		return Latin1, nil
	}
	return "", fmt.Errorf("unsupported charset %q", s)
}

// Row flattens one record in Header order.
func Row(rec models.Record) []string {
	p := rec.Product
	row := []string{
		p.ID,
		"1",
		p.Name,
		p.Type,
		p.Price.StringFixed(2),
		p.Price.Mul(taxRate).StringFixed(2),
		p.Reference(),
		p.EAN,
		shorten(p.Description, shortDescLength),
		p.Description,
		"", "", "",
		p.ImageURL,
		"",
		strconv.Itoa(defaultQuantity),
		"both",
		p.Brand,
	}
	if s := rec.Sheet; s != nil {
		row[1] = flag(s.Active)
		row[3] = s.Category
		row[10] = s.SEOTitle
		row[11] = s.SEODescription
		row[12] = s.URLSlug
		row[14] = strconv.FormatFloat(s.Weight, 'f', -1, 64)
		row[16] = s.Visibility
		row = append(row, Characteristics(s.Characteristics)...)
	}
	for len(row) < len(Header) {
		row = append(row, "")
	}
	return row
}

// Characteristics renders up to five "Label:Value" cells in label order.
func Characteristics(m map[string]string) []string {
	labels := make([]string, 0, len(m))
	for k := range m {
		labels = append(labels, k)
	}
	slices.Sort(labels)
	if len(labels) > maxCharacteristics {
		labels = labels[:maxCharacteristics]
	}
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		out = append(out, l+":"+m[l])
	}
	return out
}

// WriteCSV writes the header and one row per record.
func WriteCSV(w io.Writer, records []models.Record, cs Charset) error {
	var tw *transform.Writer
	if cs == Latin1 {
		tw = transform.NewWriter(w, encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder()))
		w = tw
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		if err := cw.Write(Row(rec)); err != nil {
			return fmt.Errorf("write row %s: %w", rec.Product.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	if tw != nil {
		return tw.Close()
	}
	return nil
}

// Filename is the attachment name of a single-record export.
func Filename(productID, ext string) string {
	return "prestashop_import_" + productID + "." + ext
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func shorten(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
