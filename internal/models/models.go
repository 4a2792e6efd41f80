package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers (90.99), not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type IdentifierKind string

const (
	KindEAN IdentifierKind = "EAN"
	KindSKU IdentifierKind = "SKU"
)

// Identifier is a validated product reference.
type Identifier struct {
	Kind  IdentifierKind `json:"kind"`
	Value string         `json:"value"`
}

func (id Identifier) String() string {
	return string(id.Kind) + "=" + id.Value
}

// ProductDetail is what a resolver strategy produces for an identifier.
type ProductDetail struct {
	Name          string            `json:"name"`
	Brand         string            `json:"brand"`
	Type          string            `json:"type"`
	Price         decimal.Decimal   `json:"price"`
	OriginalPrice *decimal.Decimal  `json:"original_price,omitempty"`
	Description   string            `json:"description"`
	ImageURL      string            `json:"image_url,omitempty"`
	Confidence    int               `json:"confidence"`
	Source        string            `json:"source"`
	Specs         map[string]string `json:"specs,omitempty"`
	Colors        []string          `json:"colors,omitempty"`
	Sizes         []string          `json:"sizes,omitempty"`
}

// Product is an immutable stored product. Corrections are appended as new products.
type Product struct {
	ID            string            `json:"id"`
	EAN           string            `json:"ean,omitempty"`
	SKU           string            `json:"sku,omitempty"`
	Name          string            `json:"name"`
	Brand         string            `json:"brand"`
	Type          string            `json:"type"`
	Price         decimal.Decimal   `json:"price"`
	OriginalPrice *decimal.Decimal  `json:"original_price,omitempty"`
	Description   string            `json:"description"`
	ImageURL      string            `json:"image_url,omitempty"`
	Confidence    int               `json:"confidence"`
	Source        string            `json:"source"`
	Specs         map[string]string `json:"specs,omitempty"`
	Colors        []string          `json:"colors,omitempty"`
	Sizes         []string          `json:"sizes,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

// Reference is the merchant reference used in exports: the SKU, else the EAN.
func (p Product) Reference() string {
	if p.SKU != "" {
		return p.SKU
	}
	return p.EAN
}

type VariationKind string

const (
	VariationSized  VariationKind = "sized"
	VariationOption VariationKind = "option"
)

type Variation struct {
	Kind   VariationKind `json:"kind"`
	Size   string        `json:"size,omitempty"`
	Color  string        `json:"color,omitempty"`
	Chest  string        `json:"chest,omitempty"`
	Option string        `json:"option,omitempty"`
	Stock  int           `json:"stock"`
	EAN    string        `json:"ean,omitempty"`
}

// Label returns the size or the option name.
func (v Variation) Label() string {
	if v.Kind == VariationOption {
		return v.Option
	}
	return v.Size
}

// Sheet is the catalog-ready bundle generated once for a product.
type Sheet struct {
	ID                string            `json:"id"`
	ProductID         string            `json:"product_id"`
	SEOTitle          string            `json:"seo_title"`
	SEODescription    string            `json:"seo_description"`
	URLSlug           string            `json:"url_slug"`
	Keywords          string            `json:"keywords"`
	Category          string            `json:"category"`
	Weight            float64           `json:"weight"`
	Characteristics   map[string]string `json:"characteristics"`
	Variations        []Variation       `json:"variations"`
	MetaRobots        string            `json:"meta_robots"`
	CanonicalURL      string            `json:"canonical_url"`
	Active            bool              `json:"active"`
	Visibility        string            `json:"visibility"`
	AvailableForOrder bool              `json:"available_for_order"`
	Condition         string            `json:"condition"`
	StructuredData    StructuredData    `json:"structured_data"`
	CreatedAt         time.Time         `json:"created_at"`
}

// TotalStock sums the stock of every variation.
func (s Sheet) TotalStock() int {
	n := 0
	for _, v := range s.Variations {
		n += v.Stock
	}
	return n
}

// StructuredData is a schema.org Product block (JSON-LD).
type StructuredData struct {
	Context     string          `json:"@context"`
	Type        string          `json:"@type"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	SKU         string          `json:"sku,omitempty"`
	GTIN13      string          `json:"gtin13,omitempty"`
	Image       string          `json:"image,omitempty"`
	Brand       StructuredRef   `json:"brand"`
	Offers      StructuredOffer `json:"offers"`
}

type StructuredRef struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

type StructuredOffer struct {
	Type          string `json:"@type"`
	Price         string `json:"price"`
	PriceCurrency string `json:"priceCurrency"`
	Availability  string `json:"availability"`
	URL           string `json:"url,omitempty"`
}

// Record is a stored product with the sheet generated for it.
// Sheet is nil once the sheet was deleted on its own.
type Record struct {
	Product Product `json:"product"`
	Sheet   *Sheet  `json:"sheet,omitempty"`
}
