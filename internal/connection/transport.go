package connection

//go:generate mockgen -destination=mock_transport_test.go -package=connection . Dialer,Conn

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

// Config configures transport behavior.
type Config struct {
	// HandshakeTimeout bounds the opening handshake.
	HandshakeTimeout time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is how long a connection may stay silent; pongs extend it.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing control frames.
	WriteTimeout time.Duration
}

// DefaultConfig returns default transport configuration.
func DefaultConfig() Config {
	return Config{
		HandshakeTimeout: 10 * time.Second,
		PingInterval:     30 * time.Second,
		ReadTimeout:      60 * time.Second,
		WriteTimeout:     10 * time.Second,
	}
}

// Conn is the subset of *websocket.Conn the manager uses.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetReadDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Dialer opens transports.
type Dialer interface {
	Dial(ctx context.Context, target string) (Conn, error)
}

// WSDialer implements Dialer using gorilla/websocket.
type WSDialer struct {
	dialer websocket.Dialer
}

// NewWSDialer creates a dialer with the handshake timeout from cfg.
func NewWSDialer(cfg Config) *WSDialer {
	return &WSDialer{
		dialer: websocket.Dialer{
			HandshakeTimeout: cfg.HandshakeTimeout,
		},
	}
}

// Dial establishes a WebSocket connection.
func (d *WSDialer) Dial(ctx context.Context, target string) (Conn, error) {
	conn, _, err := d.dialer.DialContext(ctx, target, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial: %w", err)
	}
	return conn, nil
}

var _ Conn = (*websocket.Conn)(nil)

// validateTarget checks that target is an absolute ws:// or wss:// URL.
func validateTarget(target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return err
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}
