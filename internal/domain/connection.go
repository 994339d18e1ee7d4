package domain

// ConnectionState is the lifecycle state of the live feed connection.
type ConnectionState string

const (
	StateDisconnected ConnectionState = "disconnected"
	StateConnecting   ConnectionState = "connecting"
	StateConnected    ConnectionState = "connected"
	StateError        ConnectionState = "error"
)

// String returns the string representation of ConnectionState.
func (s ConnectionState) String() string {
	return string(s)
}

// IsValid checks if the state is a known value.
func (s ConnectionState) IsValid() bool {
	switch s {
	case StateDisconnected, StateConnecting, StateConnected, StateError:
		return true
	}
	return false
}

// WebSocket close handshake values used for locally initiated closes.
const (
	WSCloseNormal         = 1000
	WSCloseUserDisconnect = "User disconnected"
)
