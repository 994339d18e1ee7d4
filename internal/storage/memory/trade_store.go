package memory

import (
	"sync"

	"tradewatch/internal/domain"
	"tradewatch/internal/storage"
)

// TradeStore is an in-memory implementation of storage.TradeStore backed by a ring buffer.
type TradeStore struct {
	mu    sync.RWMutex
	buf   []domain.Trade
	next  int // slot the next insert writes to
	count int
}

// NewTradeStore creates a store retaining at most maxTrades trades.
// A non-positive bound falls back to domain.DefaultMaxTrades.
func NewTradeStore(maxTrades int) *TradeStore {
	if maxTrades <= 0 {
		maxTrades = domain.DefaultMaxTrades
	}
	return &TradeStore{
		buf: make([]domain.Trade, maxTrades),
	}
}

// Insert adds t as the newest trade, overwriting the oldest one when full.
func (s *TradeStore) Insert(t domain.Trade) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buf[s.next] = t
	s.next = (s.next + 1) % len(s.buf)
	if s.count < len(s.buf) {
		s.count++
	}
}

// Clear resets the store to empty.
func (s *TradeStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.buf)
	s.next = 0
	s.count = 0
}

// Snapshot returns the retained trades, newest first.
func (s *TradeStore) Snapshot() []domain.Trade {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.buf)
	result := make([]domain.Trade, s.count)
	for i := 0; i < s.count; i++ {
		result[i] = s.buf[(s.next-1-i+n)%n]
	}
	return result
}

// Len returns the number of retained trades.
func (s *TradeStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

// MaxTrades returns the bound fixed at construction.
func (s *TradeStore) MaxTrades() int {
	return len(s.buf)
}

var _ storage.TradeStore = (*TradeStore)(nil)
