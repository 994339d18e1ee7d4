package feed

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradewatch/internal/domain"
)

func validPayload() map[string]any {
	return map[string]any{
		"id":        "x",
		"timestamp": float64(1),
		"symbol":    "BTC/USD",
		"price":     float64(100),
		"size":      float64(1),
		"side":      "buy",
		"exchange":  "Kraken",
	}
}

func TestValidate_Accepts(t *testing.T) {
	v := NewValidator("unknown")

	trade, ok := v.Validate(validPayload())
	require.True(t, ok)
	assert.Equal(t, domain.Trade{
		ID:        "x",
		Timestamp: 1,
		Symbol:    "BTC/USD",
		Price:     100,
		Size:      1,
		Side:      domain.SideBuy,
		Exchange:  "Kraken",
	}, trade)
}

func TestValidate_MissingExchangeUsesDefault(t *testing.T) {
	v := NewValidator("n/a")
	p := validPayload()
	delete(p, "exchange")

	trade, ok := v.Validate(p)
	require.True(t, ok)
	assert.Equal(t, "n/a", trade.Exchange)

	p["exchange"] = nil
	trade, ok = v.Validate(p)
	require.True(t, ok)
	assert.Equal(t, "n/a", trade.Exchange)
}

func TestNewValidator_EmptyDefault(t *testing.T) {
	v := NewValidator("")
	assert.Equal(t, domain.DefaultExchange, v.DefaultExchange)
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"missing id", func(p map[string]any) { delete(p, "id") }},
		{"empty id", func(p map[string]any) { p["id"] = "" }},
		{"numeric id", func(p map[string]any) { p["id"] = float64(7) }},
		{"missing timestamp", func(p map[string]any) { delete(p, "timestamp") }},
		{"string timestamp", func(p map[string]any) { p["timestamp"] = "1" }},
		{"negative timestamp", func(p map[string]any) { p["timestamp"] = float64(-1) }},
		{"NaN timestamp", func(p map[string]any) { p["timestamp"] = math.NaN() }},
		{"missing symbol", func(p map[string]any) { delete(p, "symbol") }},
		{"empty symbol", func(p map[string]any) { p["symbol"] = "" }},
		{"string price", func(p map[string]any) { p["price"] = "100" }},
		{"infinite price", func(p map[string]any) { p["price"] = math.Inf(1) }},
		{"negative price", func(p map[string]any) { p["price"] = float64(-0.5) }},
		{"missing size", func(p map[string]any) { delete(p, "size") }},
		{"bool size", func(p map[string]any) { p["size"] = true }},
		{"uppercase side", func(p map[string]any) { p["side"] = "BUY" }},
		{"unknown side", func(p map[string]any) { p["side"] = "hold" }},
		{"numeric exchange", func(p map[string]any) { p["exchange"] = float64(3) }},
	}

	v := NewValidator("unknown")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPayload()
			tt.mutate(p)

			trade, ok := v.Validate(p)
			assert.False(t, ok)
			assert.Equal(t, domain.Trade{}, trade)
		})
	}
}

func TestValidate_PartialPayload(t *testing.T) {
	v := NewValidator("unknown")

	trade, ok := v.Validate(map[string]any{"id": "x", "price": float64(100)})
	assert.False(t, ok)
	assert.Equal(t, domain.Trade{}, trade)
}

func TestValidate_NonObjectInputs(t *testing.T) {
	v := NewValidator("unknown")
	inputs := []any{nil, "trade", float64(1), true, []any{validPayload()}, map[string]string{"id": "x"}}

	for _, in := range inputs {
		trade, ok := v.Validate(in)
		assert.False(t, ok, "input %#v", in)
		assert.Equal(t, domain.Trade{}, trade)
	}
}

func TestValidate_JSONNumber(t *testing.T) {
	v := NewValidator("unknown")
	p := validPayload()
	p["price"] = json.Number("101.25")

	trade, ok := v.Validate(p)
	require.True(t, ok)
	assert.Equal(t, 101.25, trade.Price)
}
