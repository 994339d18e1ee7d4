// Package filter evaluates filter configurations over trades and owns the
// pending/active filter pair.
package filter

import (
	"math"
	"slices"
	"time"

	"tradewatch/internal/domain"
)

const msPerMinute = 60 * 1000

// Matches reports whether trade satisfies every restrictive dimension of f.
// Time windows are evaluated against now, so repeated calls with a later now
// can only shrink the result.
func Matches(trade domain.Trade, f domain.FilterState, now time.Time) bool {
	if len(f.Symbols) > 0 && !slices.Contains(f.Symbols, trade.Symbol) {
		return false
	}
	if len(f.Sides) > 0 && !slices.Contains(f.Sides, trade.Side) {
		return false
	}
	if !f.PriceRange.Contains(trade.Price) {
		return false
	}
	if !f.QuantityRange.Contains(trade.Size) {
		return false
	}
	if f.TimeRange.Minutes != nil {
		if cutoff, ok := windowStart(now, *f.TimeRange.Minutes); ok && trade.Timestamp < cutoff {
			return false
		}
	}
	return true
}

// windowStart returns the earliest timestamp inside a window of the given minutes
// ending at now. ok is false when the window reaches past the int64 range, in which
// case every timestamp is inside it.
func windowStart(now time.Time, minutes int) (cutoff int64, ok bool) {
	m := int64(minutes)
	if m > math.MaxInt64/msPerMinute {
		return 0, false
	}
	span := m * msPerMinute
	nowMs := now.UnixMilli()
	if span > 0 && nowMs < math.MinInt64+span {
		return 0, false
	}
	if span < 0 && nowMs > math.MaxInt64+span {
		return math.MaxInt64, true
	}
	return nowMs - span, true
}

// CountActive returns the number of dimensions of f that are not unrestricted.
// It agrees with the dimensions Matches treats as restrictive.
func CountActive(f domain.FilterState) int {
	count := 0
	if len(f.Symbols) > 0 {
		count++
	}
	if len(f.Sides) > 0 {
		count++
	}
	if f.TimeRange.Minutes != nil {
		count++
	}
	if f.PriceRange.IsSet() {
		count++
	}
	if f.QuantityRange.IsSet() {
		count++
	}
	return count
}

// Apply returns the trades matching f, preserving input order. The input is not modified.
func Apply(trades []domain.Trade, f domain.FilterState, now time.Time) []domain.Trade {
	result := make([]domain.Trade, 0, len(trades))
	for _, t := range trades {
		if Matches(t, f, now) {
			result = append(result, t)
		}
	}
	return result
}
