// Package feedgen serves a synthetic trade feed over WebSocket for local testing.
package feedgen

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"tradewatch/internal/domain"
)

// priceBand is the uniform range a symbol's base price is drawn from.
type priceBand struct {
	low, width float64
}

var symbols = []string{"BTC/USD", "ETH/USD", "ADA/USD", "DOT/USD", "LINK/USD"}

var bands = map[string]priceBand{
	"BTC/USD":  {45000, 10000},
	"ETH/USD":  {3000, 1000},
	"ADA/USD":  {0.4, 0.2},
	"DOT/USD":  {6, 2},
	"LINK/USD": {15, 5},
}

var exchanges = []string{"Binance", "Coinbase", "Kraken", "Bitfinex"}

// defaultBand covers symbols added without an explicit band.
var defaultBand = priceBand{100, 100}

// Generator produces random trades. It is safe for concurrent use.
type Generator struct {
	mu    sync.Mutex
	rng   *rand.Rand
	now   func() time.Time
	newID func() string
}

// NewGenerator creates a generator seeded from seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Generate returns one trade stamped with the current time.
func (g *Generator) Generate() domain.Trade {
	g.mu.Lock()
	defer g.mu.Unlock()

	symbol := symbols[g.rng.IntN(len(symbols))]
	exchange := exchanges[g.rng.IntN(len(exchanges))]

	side := domain.SideSell
	if g.rng.Float64() > 0.5 {
		side = domain.SideBuy
	}

	band, ok := bands[symbol]
	if !ok {
		band = defaultBand
	}
	base := band.low + g.rng.Float64()*band.width

	// ±1% volatility
	change := (g.rng.Float64() - 0.5) * 0.02
	price := round(base*(1+change), 2)

	size := round(g.rng.Float64()*10+0.1, 4)

	return domain.Trade{
		ID:        g.newID(),
		Timestamp: g.now().UnixMilli(),
		Symbol:    symbol,
		Price:     price,
		Size:      size,
		Side:      side,
		Exchange:  exchange,
	}
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
