package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeTradeID computes a deterministic trade id for feeds that do not carry
// a globally unique one.
// Formula: SHA256(symbol|venue_trade_id)
// Returns hex-encoded hash (64 characters).
func ComputeTradeID(symbol string, venueTradeID int64) string {
	data := fmt.Sprintf("%s|%d", symbol, venueTradeID)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
