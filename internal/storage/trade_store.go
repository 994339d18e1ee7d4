package storage

import "tradewatch/internal/domain"

// TradeStore is a bounded, newest-first sequence of trades.
type TradeStore interface {
	// Insert prepends t and evicts the oldest trades so Len() never exceeds MaxTrades().
	// Insertion and eviction are observed as a single step.
	Insert(t domain.Trade)

	// Clear removes all trades.
	Clear()

	// Snapshot returns a copy of the current contents, newest first.
	Snapshot() []domain.Trade

	// Len returns the number of retained trades.
	Len() int

	// MaxTrades returns the fixed bound.
	MaxTrades() int
}
