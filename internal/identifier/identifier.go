// Package identifier validates the EAN / SKU pair submitted with a lookup.
package identifier

import (
	"errors"
	"strings"

	"github.com/lukman83/sheetgen/internal/models"
)

// EANLength is the only accepted EAN length (EAN-13).
const EANLength = 13

// ErrMissingIdentifier is returned when neither an EAN nor a SKU was supplied.
var ErrMissingIdentifier = errors.New("EAN ou SKU requis")

// ValidationError reports a malformed identifier.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validate checks the caller-supplied pair and returns the identifier to resolve.
// The EAN wins when both are present. The SKU is trimmed; the EAN is not.
func Validate(ean, sku string) (models.Identifier, error) {
	if ean != "" {
		if !IsEAN13(ean) {
			return models.Identifier{}, &ValidationError{
				Field:   "ean",
				Message: "EAN doit contenir exactement 13 chiffres",
			}
		}
		return models.Identifier{Kind: models.KindEAN, Value: ean}, nil
	}
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return models.Identifier{}, ErrMissingIdentifier
	}
	return models.Identifier{Kind: models.KindSKU, Value: sku}, nil
}

// IsEAN13 reports whether s is exactly 13 ASCII digits. The check digit is not verified.
func IsEAN13(s string) bool {
	if len(s) != EANLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Detect classifies a free-form CLI argument: 13 digits is an EAN, anything else a SKU.
func Detect(raw string) (models.Identifier, error) {
	raw = strings.TrimSpace(raw)
	if IsEAN13(raw) {
		return Validate(raw, "")
	}
	return Validate("", raw)
}
