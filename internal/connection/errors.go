package connection

import "errors"

// Connection errors returned by Manager.Connect.
var (
	// ErrEmptyTarget is returned when the target is blank.
	ErrEmptyTarget = errors.New("empty connection target")

	// ErrInvalidTarget is returned when the target is not a ws:// or wss:// URL.
	ErrInvalidTarget = errors.New("invalid connection target")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("connection manager closed")
)

// User-visible messages surfaced through Status.Err.
const (
	MsgEmptyTarget    = "Please enter a WebSocket URL"
	MsgInvalidTarget  = "Invalid WebSocket URL"
	MsgTransportError = "WebSocket connection error"
	MsgClosedPrefix   = "Connection closed: "
	MsgUnknownReason  = "Unknown reason"
)
