// Package resolver turns a validated identifier into product details by
// walking an ordered chain of lookup strategies, ending at a fallback that
// cannot fail.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lukman83/sheetgen/internal/metrics"
	"github.com/lukman83/sheetgen/internal/models"
)

// ErrNoMatch is returned by a strategy that has nothing for the identifier.
var ErrNoMatch = errors.New("no match")

// Strategy is one way of identifying a product.
type Strategy interface {
	Name() string
	Resolve(ctx context.Context, id models.Identifier) (*models.ProductDetail, error)
}

// DefaultTimeout bounds a single strategy attempt.
const DefaultTimeout = 8 * time.Second

// Resolver walks its chain in order; the first strategy returning details wins.
type Resolver struct {
	chain    []Strategy
	fallback *Fallback
	timeout  time.Duration
}

func New(chain []Strategy, fallback *Fallback, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Resolver{chain: chain, fallback: fallback, timeout: timeout}
}

// Strategies returns the names of the chain, fallback included.
func (r *Resolver) Strategies() []string {
	names := make([]string, 0, len(r.chain)+1)
	for _, s := range r.chain {
		names = append(names, s.Name())
	}
	return append(names, r.fallback.Name())
}

// Resolve never fails: strategy errors fall through to the next strategy and
// the chain terminates at the fallback.
func (r *Resolver) Resolve(ctx context.Context, id models.Identifier) models.ProductDetail {
	for _, s := range r.chain {
		if ctx.Err() != nil {
			break
		}
		ReportProgress(ctx, fmt.Sprintf("Trying %s for %s...", s.Name(), id.Value))
		detail, err := r.attempt(ctx, s, id)
		if err == nil && detail != nil {
			metrics.RecordAttempt(s.Name(), "hit")
			return r.finish(ctx, s.Name(), detail)
		}
		if err == nil || errors.Is(err, ErrNoMatch) {
			metrics.RecordAttempt(s.Name(), "miss")
			continue
		}
		metrics.RecordAttempt(s.Name(), "error")
		log.Printf("resolver: %s failed for %s: %v", s.Name(), id, err)
		ReportProgress(ctx, fmt.Sprintf("Strategy %s failed, trying next...", s.Name()))
	}

	detail := r.fallback.Detail(id)
	metrics.RecordAttempt(r.fallback.Name(), "hit")
	return r.finish(ctx, r.fallback.Name(), &detail)
}

func (r *Resolver) attempt(ctx context.Context, s Strategy, id models.Identifier) (detail *models.ProductDetail, err error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	defer func() {
		if p := recover(); p != nil {
			detail, err = nil, fmt.Errorf("panic: %v", p)
		}
	}()
	return s.Resolve(ctx, id)
}

func (r *Resolver) finish(ctx context.Context, strategy string, d *models.ProductDetail) models.ProductDetail {
	if d.Source == "" {
		d.Source = strategy
	}
	d.Confidence = ClampConfidence(d.Confidence)
	metrics.RecordResolved(strategy, d.Confidence)
	ReportProgress(ctx, fmt.Sprintf("Identified %s %s via %s (%d%%)", d.Brand, d.Name, strategy, d.Confidence))
	return *d
}

// ClampConfidence bounds a score to [0, 100].
func ClampConfidence(c int) int {
	switch {
	case c < 0:
		return 0
	case c > 100:
		return 100
	}
	return c
}
