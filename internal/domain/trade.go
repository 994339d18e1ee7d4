package domain

// Trade represents a single executed transaction received from the feed.
// A Trade is only constructed by the feed validator; it is never partially populated.
type Trade struct {
	ID        string  `json:"id"`        // opaque, unique per feed
	Timestamp int64   `json:"timestamp"` // execution time (ms since epoch)
	Symbol    string  `json:"symbol"`    // e.g. "BTC/USD"
	Price     float64 `json:"price"`
	Size      float64 `json:"size"` // quantity
	Side      Side    `json:"side"`
	Exchange  string  `json:"exchange"` // venue, DefaultExchange when the feed omits it
}

// Notional returns price * size.
func (t Trade) Notional() float64 {
	return t.Price * t.Size
}

// Feed defaults.
const (
	DefaultMaxTrades = 10
	DefaultExchange  = "unknown"
)
