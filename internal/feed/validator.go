// Package feed turns inbound feed frames into domain trades.
package feed

import (
	"encoding/json"
	"math"

	"tradewatch/internal/domain"
)

// Validator decides whether a decoded payload is a well-formed trade event.
type Validator struct {
	// DefaultExchange is substituted when the payload carries no exchange.
	DefaultExchange string
}

// NewValidator creates a validator. An empty default falls back to domain.DefaultExchange.
func NewValidator(defaultExchange string) *Validator {
	if defaultExchange == "" {
		defaultExchange = domain.DefaultExchange
	}
	return &Validator{DefaultExchange: defaultExchange}
}

// Validate projects raw into a Trade. It returns false for any payload that is not
// a JSON object with every required field present and well-typed. It never panics
// and never returns a partially populated Trade.
func (v *Validator) Validate(raw any) (domain.Trade, bool) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return domain.Trade{}, false
	}

	id, ok := nonEmptyString(obj["id"])
	if !ok {
		return domain.Trade{}, false
	}
	ts, ok := finiteNumber(obj["timestamp"])
	if !ok || ts < 0 || ts >= math.MaxInt64 {
		return domain.Trade{}, false
	}
	symbol, ok := nonEmptyString(obj["symbol"])
	if !ok {
		return domain.Trade{}, false
	}
	price, ok := finiteNumber(obj["price"])
	if !ok || price < 0 {
		return domain.Trade{}, false
	}
	size, ok := finiteNumber(obj["size"])
	if !ok || size < 0 {
		return domain.Trade{}, false
	}
	sideToken, ok := obj["side"].(string)
	if !ok {
		return domain.Trade{}, false
	}
	side := domain.Side(sideToken)
	if !side.IsValid() {
		return domain.Trade{}, false
	}

	exchange := v.DefaultExchange
	if rawExchange, present := obj["exchange"]; present && rawExchange != nil {
		s, ok := rawExchange.(string)
		if !ok {
			return domain.Trade{}, false
		}
		exchange = s
	}

	return domain.Trade{
		ID:        id,
		Timestamp: int64(ts),
		Symbol:    symbol,
		Price:     price,
		Size:      size,
		Side:      side,
		Exchange:  exchange,
	}, true
}

func nonEmptyString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// finiteNumber accepts float64 (encoding/json default) and json.Number.
func finiteNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
