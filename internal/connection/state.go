package connection

import "tradewatch/internal/domain"

// Event drives the connection state machine.
type Event int

const (
	// EventConnect is a connect request with a well-formed target.
	EventConnect Event = iota
	// EventOpened is the transport handshake completing.
	EventOpened
	// EventTransportError is a dial failure or a non-close read failure.
	EventTransportError
	// EventClosedNormal is a peer close with code 1000.
	EventClosedNormal
	// EventClosedAbnormal is a peer close with any other code.
	EventClosedAbnormal
	// EventDisconnect is a user-initiated disconnect.
	EventDisconnect
)

// String returns the event name.
func (e Event) String() string {
	switch e {
	case EventConnect:
		return "connect"
	case EventOpened:
		return "opened"
	case EventTransportError:
		return "transport_error"
	case EventClosedNormal:
		return "closed_normal"
	case EventClosedAbnormal:
		return "closed_abnormal"
	case EventDisconnect:
		return "disconnect"
	default:
		return "unknown"
	}
}

// Transition returns the state reached from `from` on ev.
// ok is false when ev does not apply in `from`; the state is then unchanged.
func Transition(from domain.ConnectionState, ev Event) (to domain.ConnectionState, ok bool) {
	switch ev {
	case EventConnect:
		// Re-entry from any state; the caller releases the previous transport first.
		return domain.StateConnecting, true
	case EventOpened:
		if from == domain.StateConnecting {
			return domain.StateConnected, true
		}
	case EventTransportError:
		if from == domain.StateConnecting || from == domain.StateConnected {
			return domain.StateError, true
		}
	case EventClosedNormal, EventClosedAbnormal:
		if from != domain.StateDisconnected {
			return domain.StateDisconnected, true
		}
	case EventDisconnect:
		return domain.StateDisconnected, true
	}
	return from, false
}
