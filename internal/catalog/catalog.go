// Package catalog ties the identifier validator, the resolver, the sheet
// generator and the store into the operations exposed by the API, the CLI
// and the MCP tools.
package catalog

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lukman83/sheetgen/internal/export"
	"github.com/lukman83/sheetgen/internal/identifier"
	"github.com/lukman83/sheetgen/internal/metrics"
	"github.com/lukman83/sheetgen/internal/models"
	"github.com/lukman83/sheetgen/internal/resolver"
	"github.com/lukman83/sheetgen/internal/sheet"
	"github.com/lukman83/sheetgen/internal/store"
	"github.com/shopspring/decimal"
)

// SourceManual marks products entered by hand.
const SourceManual = "manual"

type Service struct {
	resolver  *resolver.Resolver
	generator *sheet.Generator
	store     store.Store
	now       func() time.Time
}

func NewService(res *resolver.Resolver, gen *sheet.Generator, st store.Store) *Service {
	return &Service{resolver: res, generator: gen, store: st, now: time.Now}
}

// Search validates the identifiers, resolves the product, generates its
// sheet and appends both to the store. Identical searches append new records.
func (s *Service) Search(ctx context.Context, ean, sku string) (models.Record, error) {
	id, err := identifier.Validate(ean, sku)
	if err != nil {
		return models.Record{}, err
	}
	rec := s.Preview(ctx, id)
	if err := s.save(ctx, rec); err != nil {
		return models.Record{}, err
	}
	return rec, nil
}

// Preview resolves and generates without storing anything.
func (s *Service) Preview(ctx context.Context, id models.Identifier) models.Record {
	d := s.resolver.Resolve(ctx, id)
	log.Printf("catalog: %s resolved by %s (confidence %d)", id, d.Source, d.Confidence)

	p := s.newProduct(id)
	p.Name = d.Name
	p.Brand = d.Brand
	p.Type = d.Type
	p.Price = d.Price
	p.OriginalPrice = d.OriginalPrice
	p.Description = d.Description
	p.ImageURL = d.ImageURL
	p.Confidence = d.Confidence
	p.Source = d.Source
	p.Specs = d.Specs
	p.Colors = d.Colors
	p.Sizes = d.Sizes

	return s.withSheet(p)
}

// ManualEntry is a product typed in by an operator, used to add or correct
// a product. Corrections are stored as new records.
type ManualEntry struct {
	EAN           string           `json:"ean"`
	SKU           string           `json:"sku"`
	Name          string           `json:"name"`
	Brand         string           `json:"brand"`
	Type          string           `json:"type"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price"`
	Description   string           `json:"description"`
	ImageURL      string           `json:"image_url"`
}

func (s *Service) Generate(ctx context.Context, e ManualEntry) (models.Record, error) {
	id, err := identifier.Validate(e.EAN, e.SKU)
	if err != nil {
		return models.Record{}, err
	}
	if strings.TrimSpace(e.Name) == "" {
		return models.Record{}, &identifier.ValidationError{Field: "name", Message: "Le nom du produit est requis"}
	}
	if e.Price.IsNegative() {
		return models.Record{}, &identifier.ValidationError{Field: "price", Message: "Le prix doit être positif"}
	}

	p := s.newProduct(id)
	// A correction may carry both references.
	if sku := strings.TrimSpace(e.SKU); sku != "" {
		p.SKU = sku
	}
	p.Name = strings.TrimSpace(e.Name)
	p.Brand = strings.TrimSpace(e.Brand)
	p.Type = strings.TrimSpace(e.Type)
	p.Price = e.Price.Round(2)
	p.OriginalPrice = e.OriginalPrice
	p.Description = strings.TrimSpace(e.Description)
	p.ImageURL = strings.TrimSpace(e.ImageURL)
	p.Confidence = 100
	p.Source = SourceManual

	rec := s.withSheet(p)
	if err := s.save(ctx, rec); err != nil {
		return models.Record{}, err
	}
	return rec, nil
}

func (s *Service) newProduct(id models.Identifier) models.Product {
	p := models.Product{ID: uuid.NewString(), CreatedAt: s.now().UTC()}
	if id.Kind == models.KindEAN {
		p.EAN = id.Value
	} else {
		p.SKU = id.Value
	}
	return p
}

func (s *Service) withSheet(p models.Product) models.Record {
	sh := s.generator.Generate(p)
	return models.Record{Product: p, Sheet: &sh}
}

func (s *Service) save(ctx context.Context, rec models.Record) error {
	if err := s.store.Append(ctx, rec); err != nil {
		return fmt.Errorf("store record: %w", err)
	}
	metrics.RecordStored()
	return nil
}

func (s *Service) List(ctx context.Context) ([]models.Record, error) {
	return s.store.List(ctx)
}

func (s *Service) Find(ctx context.Context, productID string) (models.Record, error) {
	return s.store.FindByProductID(ctx, productID)
}

func (s *Service) DeleteProduct(ctx context.Context, productID string) error {
	return s.store.DeleteProduct(ctx, productID)
}

func (s *Service) DeleteSheet(ctx context.Context, sheetID string) error {
	return s.store.DeleteSheet(ctx, sheetID)
}

// Export writes one stored record. It fails with store.ErrNotFound for unknown ids.
func (s *Service) Export(ctx context.Context, w io.Writer, productID string, f export.Format, cs export.Charset) error {
	rec, err := s.store.FindByProductID(ctx, productID)
	if err != nil {
		return err
	}
	return export.Write(w, []models.Record{rec}, f, cs)
}

// ExportAll writes every stored record, one row each.
func (s *Service) ExportAll(ctx context.Context, w io.Writer, f export.Format, cs export.Charset) error {
	records, err := s.store.List(ctx)
	if err != nil {
		return err
	}
	return export.Write(w, records, f, cs)
}
