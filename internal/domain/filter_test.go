package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T {
	return &v
}

func TestFilterState_CloneIsIndependent(t *testing.T) {
	f := NewFilterState()
	f.Symbols = []string{"BTC/USD"}
	f.PriceRange.Min = ptr(10.0)
	f.TimeRange.Minutes = ptr(5)

	c := f.Clone()
	c.Symbols[0] = "ETH/USD"
	*c.PriceRange.Min = 20
	*c.TimeRange.Minutes = 1

	assert.Equal(t, "BTC/USD", f.Symbols[0])
	assert.Equal(t, 10.0, *f.PriceRange.Min)
	assert.Equal(t, 5, *f.TimeRange.Minutes)
}

func TestFilterState_Equal(t *testing.T) {
	tests := []struct {
		name string
		a, b FilterState
		want bool
	}{
		{"both default", NewFilterState(), NewFilterState(), true},
		{"nil vs empty sets", FilterState{}, NewFilterState(), true},
		{
			"symbol order ignored",
			FilterState{Symbols: []string{"A", "B"}},
			FilterState{Symbols: []string{"B", "A"}},
			true,
		},
		{
			"different sides",
			FilterState{Sides: []Side{SideBuy}},
			FilterState{Sides: []Side{SideSell}},
			false,
		},
		{
			"min set vs nil",
			FilterState{PriceRange: ValueRange{Min: ptr(1.0)}},
			FilterState{},
			false,
		},
		{
			"same pointer values",
			FilterState{QuantityRange: ValueRange{Max: ptr(2.0)}, TimeRange: TimeRange{Minutes: ptr(5)}},
			FilterState{QuantityRange: ValueRange{Max: ptr(2.0)}, TimeRange: TimeRange{Minutes: ptr(5)}},
			true,
		},
		{
			"different minutes",
			FilterState{TimeRange: TimeRange{Minutes: ptr(5)}},
			FilterState{TimeRange: TimeRange{Minutes: ptr(10)}},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
			assert.Equal(t, tt.want, tt.b.Equal(tt.a))
		})
	}
}

func TestValueRange_Contains(t *testing.T) {
	r := ValueRange{Min: ptr(10.0), Max: ptr(20.0)}

	assert.True(t, r.Contains(10))
	assert.True(t, r.Contains(20))
	assert.True(t, r.Contains(15))
	assert.False(t, r.Contains(9.99))
	assert.False(t, r.Contains(20.01))
	assert.True(t, ValueRange{}.Contains(-1))
	assert.False(t, ValueRange{}.IsSet())
}

func TestSide_IsValid(t *testing.T) {
	assert.True(t, SideBuy.IsValid())
	assert.True(t, SideSell.IsValid())
	assert.False(t, Side("BUY").IsValid())
	assert.False(t, Side("").IsValid())
}
