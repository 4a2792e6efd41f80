package resolver

import (
	"strings"

	"github.com/lukman83/sheetgen/internal/models"
	"github.com/lukman83/sheetgen/internal/rules"
)

// Fallback synthesizes a minimal record for identifiers nothing else recognized.
type Fallback struct {
	cfg rules.Fallback
}

func NewFallback(r *rules.Rules) *Fallback {
	return &Fallback{cfg: r.Fallback}
}

func (f *Fallback) Name() string { return "fallback" }

func (f *Fallback) Detail(id models.Identifier) models.ProductDetail {
	short := id.Value
	if r := []rune(short); len(r) > f.cfg.NameChars {
		short = string(r[:f.cfg.NameChars])
	}
	return models.ProductDetail{
		Name:        strings.TrimSpace(f.cfg.NamePrefix + " " + short),
		Brand:       f.cfg.Brand,
		Type:        f.cfg.Type,
		Price:       f.cfg.Price,
		Description: f.cfg.Description,
		Confidence:  f.cfg.Confidence,
		Source:      f.Name(),
	}
}
