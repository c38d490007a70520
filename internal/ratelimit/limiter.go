// Package ratelimit throttles expensive user actions with a Redis sliding window.
package ratelimit

import (
	"context"
	"time"
)

// Result describes the outcome of a rate-limit check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter checks whether key may perform another action within window.
type Limiter interface {
	Check(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}
