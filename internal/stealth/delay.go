package stealth

import (
	"context"
	"math/rand/v2"
	"time"
)

// DelayProfile names a jitter configuration.
type DelayProfile string

const (
	ProfileNone     DelayProfile = "none"
	ProfileCautious DelayProfile = "cautious"
	ProfileNormal   DelayProfile = "normal"
)

// HumanDelay adds randomized jitter before outbound requests.
type HumanDelay struct {
	MinDelay time.Duration
	MaxDelay time.Duration
}

// NewHumanDelay returns the delay for a profile, or nil for "none"
// (the interactive default: a lookup already has an 8s budget).
func NewHumanDelay(profile DelayProfile) *HumanDelay {
	switch profile {
	case ProfileCautious:
		return &HumanDelay{MinDelay: time.Second, MaxDelay: 3 * time.Second}
	case ProfileNormal:
		return &HumanDelay{MinDelay: 200 * time.Millisecond, MaxDelay: 800 * time.Millisecond}
	default:
		return nil
	}
}

// Wait sleeps for a random duration within the configured range.
func (h *HumanDelay) Wait(ctx context.Context) error {
	t := time.NewTimer(h.next())
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *HumanDelay) next() time.Duration {
	if h.MinDelay >= h.MaxDelay {
		return h.MinDelay
	}
	return h.MinDelay + time.Duration(rand.Int64N(int64(h.MaxDelay-h.MinDelay)))
}
