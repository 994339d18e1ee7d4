package feed

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"tradewatch/internal/domain"
)

// Rejection reasons. These are expected outcomes, not faults: callers drop the
// frame and keep reading.
var (
	// ErrDecode is returned when a frame is not valid JSON.
	ErrDecode = errors.New("decode frame")

	// ErrRejected is returned when a frame decodes but is not a trade event.
	ErrRejected = errors.New("not a trade event")
)

// Protocol names accepted by NewParser.
const (
	ProtocolCanonical = "canonical"
	ProtocolBinance   = "binance"
)

// Parser turns one inbound frame into a Trade.
type Parser interface {
	// Parse returns ErrDecode or ErrRejected (possibly wrapped) when the frame is dropped.
	Parse(frame []byte) (domain.Trade, error)
}

// NewParser returns the parser for a protocol name.
func NewParser(protocol, defaultExchange string) (Parser, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "", ProtocolCanonical:
		return NewCanonicalParser(defaultExchange), nil
	case ProtocolBinance:
		return NewBinanceParser(defaultExchange), nil
	default:
		return nil, fmt.Errorf("unknown feed protocol %q", protocol)
	}
}

// DecodeFrame decodes one frame as structured JSON data.
func DecodeFrame(frame []byte) (any, error) {
	var v any
	if err := json.Unmarshal(frame, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return v, nil
}

// CanonicalParser parses frames shaped as
// {id, timestamp, symbol, price, size, side, exchange?}.
type CanonicalParser struct {
	validator *Validator
}

// NewCanonicalParser creates a parser for the canonical trade frame.
func NewCanonicalParser(defaultExchange string) *CanonicalParser {
	return &CanonicalParser{validator: NewValidator(defaultExchange)}
}

// Parse decodes and validates a frame.
func (p *CanonicalParser) Parse(frame []byte) (domain.Trade, error) {
	raw, err := DecodeFrame(frame)
	if err != nil {
		return domain.Trade{}, err
	}
	trade, ok := p.validator.Validate(raw)
	if !ok {
		return domain.Trade{}, ErrRejected
	}
	return trade, nil
}

var _ Parser = (*CanonicalParser)(nil)
