package domain

import "sort"

// FilterState is a filter configuration over trades.
// Every dimension defaults to unrestricted when empty or nil; dimensions combine with AND.
type FilterState struct {
	Symbols       []string   `json:"symbols"`
	Sides         []Side     `json:"sides"`
	TimeRange     TimeRange  `json:"timeRange"`
	PriceRange    ValueRange `json:"priceRange"`
	QuantityRange ValueRange `json:"quantityRange"`
}

// TimeRange restricts trades to the last Minutes minutes. Nil means unrestricted.
type TimeRange struct {
	Minutes *int `json:"minutes"`
}

// ValueRange is an inclusive [Min, Max] bound; either side may be nil.
type ValueRange struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// IsSet reports whether at least one bound is present.
func (r ValueRange) IsSet() bool {
	return r.Min != nil || r.Max != nil
}

// Contains reports whether v lies within the bounds. An unset range contains everything.
func (r ValueRange) Contains(v float64) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// NewFilterState returns the fully unrestricted configuration.
func NewFilterState() FilterState {
	return FilterState{
		Symbols: []string{},
		Sides:   []Side{},
	}
}

// Clone returns a deep copy that shares no memory with f.
func (f FilterState) Clone() FilterState {
	out := FilterState{
		Symbols: append([]string{}, f.Symbols...),
		Sides:   append([]Side{}, f.Sides...),
	}
	out.TimeRange.Minutes = clonePtr(f.TimeRange.Minutes)
	out.PriceRange = f.PriceRange.clone()
	out.QuantityRange = f.QuantityRange.clone()
	return out
}

// Equal reports structural equality. Symbol and side sets compare as sets.
func (f FilterState) Equal(o FilterState) bool {
	if !equalSet(f.Symbols, o.Symbols) {
		return false
	}
	sides := func(in []Side) []string {
		out := make([]string, len(in))
		for i, s := range in {
			out[i] = string(s)
		}
		return out
	}
	if !equalSet(sides(f.Sides), sides(o.Sides)) {
		return false
	}
	return equalPtr(f.TimeRange.Minutes, o.TimeRange.Minutes) &&
		f.PriceRange.equal(o.PriceRange) &&
		f.QuantityRange.equal(o.QuantityRange)
}

func (r ValueRange) clone() ValueRange {
	return ValueRange{Min: clonePtr(r.Min), Max: clonePtr(r.Max)}
}

func (r ValueRange) equal(o ValueRange) bool {
	return equalPtr(r.Min, o.Min) && equalPtr(r.Max, o.Max)
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// equalSet compares two string slices ignoring order and duplicates.
func equalSet(a, b []string) bool {
	norm := func(in []string) []string {
		seen := make(map[string]struct{}, len(in))
		out := make([]string, 0, len(in))
		for _, s := range in {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
		sort.Strings(out)
		return out
	}
	na, nb := norm(a), norm(b)
	if len(na) != len(nb) {
		return false
	}
	for i := range na {
		if na[i] != nb[i] {
			return false
		}
	}
	return true
}
