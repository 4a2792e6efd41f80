// Package sheet derives the catalog sheet of a product: SEO fields,
// category, characteristics, variations and the JSON-LD block.
package sheet

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lukman83/sheetgen/internal/models"
	"github.com/lukman83/sheetgen/internal/rules"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	MaxTitleLength       = 60
	MaxDescriptionLength = 160

	DefaultShopBaseURL = "https://monsite.com/produit"
)

type Generator struct {
	rules   *rules.Rules
	shopURL string
	now     func() time.Time
}

func NewGenerator(r *rules.Rules, shopBaseURL string) *Generator {
	if shopBaseURL == "" {
		shopBaseURL = DefaultShopBaseURL
	}
	return &Generator{
		rules:   r,
		shopURL: strings.TrimRight(shopBaseURL, "/"),
		now:     time.Now,
	}
}

// Generate builds the sheet of p. It never fails.
func (g *Generator) Generate(p models.Product) models.Sheet {
	preset := g.rules.Preset(g.family(p))
	price := p.Price.StringFixed(2)
	slug := g.slug(p)
	canonical := g.shopURL + "/" + slug

	placeholders := strings.NewReplacer("{brand}", p.Brand, "{type}", cases.Title(language.French).String(p.Type))

	s := models.Sheet{
		ID:                uuid.NewString(),
		ProductID:         p.ID,
		SEOTitle:          truncate(fmt.Sprintf("%s %s - %s€", p.Brand, truncate(p.Name, 30), price), MaxTitleLength),
		SEODescription:    truncate(seoDescription(p, price), MaxDescriptionLength),
		URLSlug:           slug,
		Keywords:          keywords(p),
		Category:          placeholders.Replace(preset.Category),
		Weight:            preset.Weight,
		Characteristics:   characteristics(preset, p, placeholders),
		Variations:        variations(preset, p),
		MetaRobots:        "index, follow",
		CanonicalURL:      canonical,
		Active:            true,
		Visibility:        "both",
		AvailableForOrder: true,
		Condition:         "new",
		CreatedAt:         g.now().UTC(),
	}
	s.StructuredData = models.StructuredData{
		Context:     "https://schema.org",
		Type:        "Product",
		Name:        p.Name,
		Description: p.Description,
		SKU:         p.Reference(),
		GTIN13:      p.EAN,
		Image:       p.ImageURL,
		Brand:       models.StructuredRef{Type: "Brand", Name: p.Brand},
		Offers: models.StructuredOffer{
			Type:          "Offer",
			Price:         price,
			PriceCurrency: "EUR",
			Availability:  "https://schema.org/InStock",
			URL:           canonical,
		},
	}
	return s
}

// family picks the preset: only known brands get the footwear and apparel
// presets, everything else is generic.
func (g *Generator) family(p models.Product) string {
	if !g.rules.IsKnownBrand(p.Brand) {
		return rules.FamilyGeneric
	}
	return g.rules.Family(p.Type)
}

func (g *Generator) slug(p models.Product) string {
	s := Slugify(p.Brand + " " + truncate(p.Name, 30) + " " + p.Reference())
	if s == "" {
		return "produit"
	}
	return s
}

func seoDescription(p models.Product, price string) string {
	desc := strings.TrimRight(strings.TrimSpace(truncate(p.Description, 80)), ".")
	if desc == "" {
		return fmt.Sprintf("Achetez %s %s à %s€. Livraison gratuite.", p.Name, p.Brand, price)
	}
	return fmt.Sprintf("Achetez %s %s à %s€. %s. Livraison gratuite.", p.Name, p.Brand, price, desc)
}

func keywords(p models.Product) string {
	var out []string
	seen := make(map[string]bool)
	for _, k := range []string{p.Brand, p.Type, p.Brand + " " + p.Type, p.Name, p.Reference()} {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return strings.Join(out, ", ")
}

func characteristics(preset rules.Preset, p models.Product, r *strings.Replacer) map[string]string {
	out := make(map[string]string, len(preset.Characteristics)+len(p.Specs))
	for k, v := range preset.Characteristics {
		out[k] = r.Replace(v)
	}
	maps.Copy(out, p.Specs)
	return out
}

func variations(preset rules.Preset, p models.Product) []models.Variation {
	if len(preset.Sizes) == 0 {
		out := make([]models.Variation, 0, len(preset.Options))
		for i, o := range preset.Options {
			out = append(out, models.Variation{
				Kind:   models.VariationOption,
				Option: o.Option,
				Stock:  o.Stock,
				EAN:    deriveEAN(p.EAN, indexSuffix(i)),
			})
		}
		return out
	}

	colors := preset.Colors
	if len(p.Colors) > 0 {
		colors = p.Colors
	}
	sizes := preset.Sizes
	if len(p.Sizes) > 0 {
		filtered := slices.DeleteFunc(slices.Clone(sizes), func(s rules.SizeSpec) bool {
			return !slices.Contains(p.Sizes, s.Size)
		})
		if len(filtered) > 0 {
			sizes = filtered
		}
	}

	out := make([]models.Variation, 0, len(colors)*len(sizes))
	for _, color := range colors {
		for _, size := range sizes {
			suffix := indexSuffix(len(out))
			if preset.EANSuffix == "size" {
				suffix = sizeSuffix(size.Size, len(out))
			}
			out = append(out, models.Variation{
				Kind:  models.VariationSized,
				Size:  size.Size,
				Color: color,
				Chest: size.Chest,
				Stock: size.StockFor(color),
				EAN:   deriveEAN(p.EAN, suffix),
			})
		}
	}
	return out
}

// deriveEAN replaces the last two digits of ean with suffix. The result is
// cosmetic and carries no valid checksum.
func deriveEAN(ean, suffix string) string {
	if len(ean) < 2 {
		return ""
	}
	return ean[:len(ean)-2] + suffix
}

func indexSuffix(i int) string {
	return fmt.Sprintf("%02d", (i+1)%100)
}

func sizeSuffix(size string, i int) string {
	n, err := strconv.Atoi(size)
	if err != nil || n < 0 || n > 99 {
		return indexSuffix(i)
	}
	return fmt.Sprintf("%02d", n)
}
