package feed

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"tradewatch/internal/domain"
	"tradewatch/internal/idhash"
)

// binanceTrade is the exchange's raw trade stream payload.
type binanceTrade struct {
	EventType    string `json:"e"` // "trade"
	EventTime    int64  `json:"E"`
	Symbol       string `json:"s"`
	TradeID      *int64 `json:"t"`
	Price        string `json:"p"`
	Qty          string `json:"q"`
	TradeTime    int64  `json:"T"`
	IsBuyerMaker bool   `json:"m"`
	Ignore       bool   `json:"M"` // keeps "M" from matching "m" case-insensitively
}

// BinanceParser parses raw Binance trade stream frames.
// The buyer-is-maker flag maps to a sell; the trade id is derived from symbol and
// venue trade id because venue ids are only unique per symbol.
type BinanceParser struct {
	defaultExchange string
}

// NewBinanceParser creates a parser for Binance trade stream frames.
func NewBinanceParser(defaultExchange string) *BinanceParser {
	if defaultExchange == "" {
		defaultExchange = domain.DefaultExchange
	}
	return &BinanceParser{defaultExchange: defaultExchange}
}

// Parse decodes a trade stream frame.
func (p *BinanceParser) Parse(frame []byte) (domain.Trade, error) {
	var msg binanceTrade
	if err := json.Unmarshal(frame, &msg); err != nil {
		return domain.Trade{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if msg.EventType != "" && msg.EventType != "trade" {
		return domain.Trade{}, ErrRejected
	}
	if msg.Symbol == "" || msg.Price == "" || msg.Qty == "" || msg.TradeID == nil {
		return domain.Trade{}, ErrRejected
	}

	price, err := decimal.NewFromString(msg.Price)
	if err != nil || price.IsNegative() {
		return domain.Trade{}, ErrRejected
	}
	qty, err := decimal.NewFromString(msg.Qty)
	if err != nil || qty.IsNegative() {
		return domain.Trade{}, ErrRejected
	}

	priceF, qtyF := price.InexactFloat64(), qty.InexactFloat64()
	if !finite(priceF) || !finite(qtyF) {
		return domain.Trade{}, ErrRejected
	}

	ts := msg.TradeTime
	if ts == 0 {
		ts = msg.EventTime
	}
	if ts <= 0 {
		return domain.Trade{}, ErrRejected
	}

	side := domain.SideBuy
	if msg.IsBuyerMaker {
		side = domain.SideSell
	}

	return domain.Trade{
		ID:        idhash.ComputeTradeID(msg.Symbol, *msg.TradeID),
		Timestamp: ts,
		Symbol:    msg.Symbol,
		Price:     priceF,
		Size:      qtyF,
		Side:      side,
		Exchange:  p.defaultExchange,
	}, nil
}

func finite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

var _ Parser = (*BinanceParser)(nil)
