package llm

import (
	"context"
	"time"
)

// Defaults are applied to requests that leave the fields unset.
type Defaults struct {
	Temperature float64
	Seed        int
	// Timeout bounds each Generate call, retries included. Zero means no
	// bound beyond the caller's context.
	Timeout time.Duration
}

// DefaultsProvider fills in sampling parameters and enforces the timeout.
type DefaultsProvider struct {
	inner    Provider
	defaults Defaults
}

// WithDefaults wraps p with default request parameters.
func WithDefaults(p Provider, d Defaults) Provider {
	return &DefaultsProvider{inner: p, defaults: d}
}

func (d *DefaultsProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if req.Temperature == 0 {
		req.Temperature = d.defaults.Temperature
	}
	if req.Seed == nil {
		seed := d.defaults.Seed
		req.Seed = &seed
	}
	if d.defaults.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.defaults.Timeout)
		defer cancel()
	}
	return d.inner.Generate(ctx, req)
}

func (d *DefaultsProvider) ModelID() string {
	return d.inner.ModelID()
}
