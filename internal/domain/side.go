package domain

// Side represents the direction of a trade.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// String returns the string representation of Side.
func (s Side) String() string {
	return string(s)
}

// IsValid checks if the side is one of the two canonical tokens.
// Matching is case-sensitive.
func (s Side) IsValid() bool {
	return s == SideBuy || s == SideSell
}
