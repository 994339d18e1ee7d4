// Package format renders trade fields for display.
package format

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"tradewatch/internal/domain"
)

// TimeLayout is the wall-clock layout used for trade timestamps.
const TimeLayout = "15:04:05"

// Time formats a millisecond timestamp in loc. A nil loc means local time.
func Time(ms int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(ms).In(loc).Format(TimeLayout)
}

// Price formats v as dollars with two decimals and thousands separators.
func Price(v float64) string {
	return "$" + Grouped(decimal.NewFromFloat(v), 2)
}

// Quantity formats v with four decimals.
func Quantity(v float64) string {
	return Grouped(decimal.NewFromFloat(v), 4)
}

// Total formats price × size as dollars.
func Total(t domain.Trade) string {
	total := decimal.NewFromFloat(t.Price).Mul(decimal.NewFromFloat(t.Size))
	return "$" + Grouped(total, 2)
}

// Grouped rounds d to places and formats it with en-US thousands separators.
func Grouped(d decimal.Decimal, places int32) string {
	p := message.NewPrinter(language.AmericanEnglish)
	return p.Sprintf(fmt.Sprintf("%%.%df", places), d.Round(places).InexactFloat64())
}
