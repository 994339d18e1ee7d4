package view

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradewatch/internal/connection"
	"tradewatch/internal/domain"
)

func TestRender_Empty(t *testing.T) {
	var b strings.Builder
	err := Render(&b, Model{
		Status:    connection.Status{State: domain.StateDisconnected},
		MaxTrades: 10,
	})
	require.NoError(t, err)

	out := b.String()
	assert.Contains(t, out, "Status: DISCONNECTED")
	assert.Contains(t, out, "Filters (0)")
	assert.Contains(t, out, "Showing 0 recent trades (max 10)")
	assert.Contains(t, out, "No trades received yet")
	assert.NotContains(t, out, "Error:")
}

func TestRender_Trades(t *testing.T) {
	ts := time.Date(2024, 1, 2, 9, 30, 15, 0, time.UTC).UnixMilli()

	var b strings.Builder
	err := Render(&b, Model{
		Status: connection.Status{
			State:  domain.StateDisconnected,
			Err:    "Connection closed: maintenance",
			Target: "ws://localhost:8080",
		},
		Trades: []domain.Trade{
			{ID: "2", Timestamp: ts, Symbol: "BTC/USD", Price: 45123.5, Size: 0.25, Side: domain.SideSell, Exchange: "Kraken"},
			{ID: "1", Timestamp: ts, Symbol: "ETH/USD", Price: 2500, Size: 2, Side: domain.SideBuy, Exchange: "Binance"},
		},
		MaxTrades:     10,
		ActiveFilters: 2,
		PendingEdits:  true,
		Location:      time.UTC,
	})
	require.NoError(t, err)

	out := b.String()
	assert.Contains(t, out, "ws://localhost:8080")
	assert.Contains(t, out, "Error: Connection closed: maintenance")
	assert.Contains(t, out, "Filters (2)  [unapplied changes]")
	assert.Contains(t, out, "Showing 2 recent trades (max 10)")
	assert.NotContains(t, out, "No trades received yet")

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	last := lines[len(lines)-1]
	prev := lines[len(lines)-2]
	assert.Contains(t, prev, "09:30:15")
	assert.Contains(t, prev, "SELL")
	assert.Contains(t, prev, "$45,123.50")
	assert.Contains(t, prev, "0.2500")
	assert.Contains(t, prev, "$11,280.88")
	assert.Contains(t, last, "BUY")
	assert.Contains(t, last, "$5,000.00")
}
