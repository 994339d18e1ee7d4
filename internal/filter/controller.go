package filter

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"tradewatch/internal/domain"
)

// Patch is a partial change to a FilterState. Nil fields are left untouched.
// The Clear* flags reset a single optional bound to unrestricted.
type Patch struct {
	Symbols *[]string      `json:"symbols,omitempty"`
	Sides   *[]domain.Side `json:"sides,omitempty"`
	Minutes *int           `json:"minutes,omitempty"`

	PriceMin    *float64 `json:"priceMin,omitempty"`
	PriceMax    *float64 `json:"priceMax,omitempty"`
	QuantityMin *float64 `json:"quantityMin,omitempty"`
	QuantityMax *float64 `json:"quantityMax,omitempty"`

	ClearTimeRange   bool `json:"clearTimeRange,omitempty"`
	ClearPriceMin    bool `json:"clearPriceMin,omitempty"`
	ClearPriceMax    bool `json:"clearPriceMax,omitempty"`
	ClearQuantityMin bool `json:"clearQuantityMin,omitempty"`
	ClearQuantityMax bool `json:"clearQuantityMax,omitempty"`
}

// ErrInvalidPatch is returned by Patch.Validate.
var ErrInvalidPatch = errors.New("invalid filter patch")

// Validate checks that minutes are positive, bounds are finite and sides are canonical.
func (p Patch) Validate() error {
	if p.Minutes != nil && *p.Minutes <= 0 {
		return fmt.Errorf("%w: minutes must be positive", ErrInvalidPatch)
	}
	for _, b := range []*float64{p.PriceMin, p.PriceMax, p.QuantityMin, p.QuantityMax} {
		if b != nil && (math.IsNaN(*b) || math.IsInf(*b, 0)) {
			return fmt.Errorf("%w: bounds must be finite", ErrInvalidPatch)
		}
	}
	if p.Sides != nil {
		for _, s := range *p.Sides {
			if !s.IsValid() {
				return fmt.Errorf("%w: unknown side %q", ErrInvalidPatch, s)
			}
		}
	}
	return nil
}

// applyTo merges p into f (which must be a private copy).
func (p Patch) applyTo(f *domain.FilterState) {
	if p.Symbols != nil {
		f.Symbols = append([]string{}, (*p.Symbols)...)
	}
	if p.Sides != nil {
		f.Sides = append([]domain.Side{}, (*p.Sides)...)
	}

	setBound(&f.TimeRange.Minutes, p.Minutes, p.ClearTimeRange)
	setBound(&f.PriceRange.Min, p.PriceMin, p.ClearPriceMin)
	setBound(&f.PriceRange.Max, p.PriceMax, p.ClearPriceMax)
	setBound(&f.QuantityRange.Min, p.QuantityMin, p.ClearQuantityMin)
	setBound(&f.QuantityRange.Max, p.QuantityMax, p.ClearQuantityMax)
}

func setBound[T any](dst **T, v *T, reset bool) {
	switch {
	case reset:
		*dst = nil
	case v != nil:
		c := *v
		*dst = &c
	}
}

// Controller owns the pending (edited) and active (applied) filter configurations.
// Only Apply and ClearAll change the active configuration.
type Controller struct {
	mu      sync.RWMutex
	pending domain.FilterState
	active  domain.FilterState
}

// NewController creates a controller with both configurations unrestricted.
func NewController() *Controller {
	return &Controller{
		pending: domain.NewFilterState(),
		active:  domain.NewFilterState(),
	}
}

// Pending returns a copy of the pending configuration.
func (c *Controller) Pending() domain.FilterState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pending.Clone()
}

// Active returns a copy of the active configuration.
func (c *Controller) Active() domain.FilterState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active.Clone()
}

// UpdatePending merges p into the pending configuration and returns the result.
// An invalid patch leaves pending unchanged and returns an ErrInvalidPatch error.
func (c *Controller) UpdatePending(p Patch) (domain.FilterState, error) {
	if err := p.Validate(); err != nil {
		return domain.FilterState{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.pending.Clone()
	p.applyTo(&next)
	c.pending = next
	return next.Clone(), nil
}

// Apply copies pending into active in one step.
func (c *Controller) Apply() domain.FilterState {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.active = c.pending.Clone()
	return c.active.Clone()
}

// ClearAll resets both configurations to unrestricted.
func (c *Controller) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending = domain.NewFilterState()
	c.active = domain.NewFilterState()
}

// HasPendingChanges reports whether pending differs from active.
func (c *Controller) HasPendingChanges() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.pending.Equal(c.active)
}

// ActiveCount returns CountActive of the active configuration.
func (c *Controller) ActiveCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CountActive(c.active)
}
