package feedgen

import (
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradewatch/internal/domain"
	"tradewatch/internal/feed"
)

func TestGenerator_TradesWithinBands(t *testing.T) {
	g := NewGenerator(42)
	fixed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return fixed }

	for i := 0; i < 500; i++ {
		tr := g.Generate()

		_, err := uuid.Parse(tr.ID)
		require.NoError(t, err)
		assert.Equal(t, fixed.UnixMilli(), tr.Timestamp)
		assert.Contains(t, symbols, tr.Symbol)
		assert.Contains(t, exchanges, tr.Exchange)
		assert.True(t, tr.Side.IsValid())

		band := bands[tr.Symbol]
		assert.GreaterOrEqual(t, tr.Price, round(band.low*0.99, 2), tr.Symbol)
		assert.LessOrEqual(t, tr.Price, round((band.low+band.width)*1.01, 2), tr.Symbol)

		assert.GreaterOrEqual(t, tr.Size, 0.1)
		assert.LessOrEqual(t, tr.Size, 10.1)
		assert.Equal(t, round(tr.Size, 4), tr.Size)
		assert.Equal(t, round(tr.Price, 2), tr.Price)
	}
}

func TestGenerator_Deterministic(t *testing.T) {
	a, b := NewGenerator(7), NewGenerator(7)
	a.newID = func() string { return "x" }
	b.newID = func() string { return "x" }
	fixed := time.Unix(0, 0)
	a.now = func() time.Time { return fixed }
	b.now = func() time.Time { return fixed }

	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Generate(), b.Generate())
	}
}

func TestGenerator_BothSides(t *testing.T) {
	g := NewGenerator(1)
	var sides []domain.Side
	for i := 0; i < 100; i++ {
		sides = append(sides, g.Generate().Side)
	}
	assert.True(t, slices.Contains(sides, domain.SideBuy))
	assert.True(t, slices.Contains(sides, domain.SideSell))
}

func TestGenerator_OutputPassesValidator(t *testing.T) {
	g := NewGenerator(3)
	p := feed.NewCanonicalParser(domain.DefaultExchange)

	for i := 0; i < 50; i++ {
		tr := g.Generate()
		frame, err := encodeTrade(tr)
		require.NoError(t, err)

		got, err := p.Parse(frame)
		require.NoError(t, err)
		assert.Equal(t, tr, got)
	}
}
