// Package connection owns the live feed transport and its lifecycle state.
package connection

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"tradewatch/internal/domain"
	"tradewatch/internal/feed"
	"tradewatch/internal/observability"
	"tradewatch/internal/storage"
	"tradewatch/internal/storage/memory"
)

// Status is a snapshot of the connection as seen by the presentation layer.
type Status struct {
	State  domain.ConnectionState `json:"state"`
	Err    string                 `json:"error,omitempty"`
	Target string                 `json:"target,omitempty"`
}

// Manager owns exactly one transport at a time and feeds accepted trades into a store.
//
// Every connect or disconnect starts a new generation. Callbacks from a dial or read
// loop belonging to an older generation are discarded, so a slow superseded attempt
// can never overwrite a newer state.
type Manager struct {
	store    storage.TradeStore
	parser   feed.Parser
	dialer   Dialer
	config   Config
	logger   *zap.Logger
	onChange func(Status)

	mu         sync.Mutex
	state      domain.ConnectionState
	errMsg     string
	target     string
	gen        uint64
	conn       Conn
	cancelDial context.CancelFunc
	closed     bool

	wg sync.WaitGroup
}

// Options contains configuration for creating a Manager.
type Options struct {
	Store  storage.TradeStore // Default: memory store with domain.DefaultMaxTrades
	Parser feed.Parser
	Dialer Dialer // Default: WSDialer built from Config
	Config *Config
	Logger *zap.Logger

	// OnChange receives a snapshot after every state or error change. Snapshots from
	// different goroutines may arrive out of order; Status() is authoritative.
	OnChange func(Status)
}

// NewManager creates a disconnected manager.
func NewManager(opts Options) *Manager {
	cfg := DefaultConfig()
	if opts.Config != nil {
		cfg = *opts.Config
	}

	dialer := opts.Dialer
	if dialer == nil {
		dialer = NewWSDialer(cfg)
	}

	parser := opts.Parser
	if parser == nil {
		parser = feed.NewCanonicalParser(domain.DefaultExchange)
	}

	store := opts.Store
	if store == nil {
		store = memory.NewTradeStore(domain.DefaultMaxTrades)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Manager{
		store:    store,
		parser:   parser,
		dialer:   dialer,
		config:   cfg,
		logger:   logger,
		onChange: opts.OnChange,
		state:    domain.StateDisconnected,
	}
}

// Status returns the current connection status.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusLocked()
}

// Connect starts connecting to target. Any previous transport is released first.
// A blank or malformed target surfaces an input error and returns without a transition.
// Connect does not wait for the handshake; observe Status or OnChange for the outcome.
func (m *Manager) Connect(target string) error {
	target = strings.TrimSpace(target)
	if target == "" {
		m.surfaceInputError(MsgEmptyTarget)
		return ErrEmptyTarget
	}
	if err := validateTarget(target); err != nil {
		m.surfaceInputError(MsgInvalidTarget)
		return fmt.Errorf("%w: %v", ErrInvalidTarget, err)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}

	stale := m.releaseLocked()
	gen := m.gen
	m.target = target
	m.errMsg = ""
	m.transitionLocked(EventConnect)

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelDial = cancel
	m.wg.Add(1)
	go m.dial(ctx, gen, target)

	status := m.statusLocked()
	m.mu.Unlock()

	if stale != nil {
		m.logger.Info("closing stale transport before reconnect")
		m.closeConn(stale, websocket.CloseNormalClosure, "")
	}
	m.notify(status)
	return nil
}

// Disconnect closes the current transport with a normal close code and ends in
// disconnected with no error. It is safe in every state.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	conn := m.releaseLocked()
	m.errMsg = ""
	m.transitionLocked(EventDisconnect)
	status := m.statusLocked()
	m.mu.Unlock()

	if conn != nil {
		m.closeConn(conn, domain.WSCloseNormal, domain.WSCloseUserDisconnect)
	}
	m.notify(status)
}

// Close disconnects and waits for background goroutines. Connect fails afterwards.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	m.Disconnect()
	m.wg.Wait()
	return nil
}

// releaseLocked starts a new generation, cancels any pending dial and detaches the
// current transport. The returned conn must be closed after unlocking.
func (m *Manager) releaseLocked() Conn {
	m.gen++
	if m.cancelDial != nil {
		m.cancelDial()
		m.cancelDial = nil
	}
	conn := m.conn
	m.conn = nil
	return conn
}

func (m *Manager) surfaceInputError(msg string) {
	m.mu.Lock()
	m.errMsg = msg
	status := m.statusLocked()
	m.mu.Unlock()

	m.logger.Info("rejected connection target", zap.String("error", msg))
	m.notify(status)
}

// dial opens the transport for generation gen and then runs its read loop.
func (m *Manager) dial(ctx context.Context, gen uint64, target string) {
	defer m.wg.Done()

	observability.RecordConnectAttempt()
	conn, err := m.dialer.Dial(ctx, target)

	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
		m.logger.Debug("discarding superseded dial", zap.String("target", target))
		return
	}
	if m.cancelDial != nil {
		m.cancelDial()
		m.cancelDial = nil
	}

	if err != nil {
		m.errMsg = MsgTransportError
		m.transitionLocked(EventTransportError)
		status := m.statusLocked()
		m.mu.Unlock()

		m.logger.Warn("connection failed", zap.String("target", target), zap.Error(err))
		m.notify(status)
		return
	}

	m.conn = conn
	m.errMsg = ""
	m.transitionLocked(EventOpened)
	status := m.statusLocked()
	m.mu.Unlock()

	m.logger.Info("connected", zap.String("target", target))
	m.notify(status)

	m.readLoop(gen, conn)
}

// readLoop processes frames in delivery order until the transport fails or is released.
func (m *Manager) readLoop(gen uint64, conn Conn) {
	stop := make(chan struct{})
	defer close(stop)

	if m.config.PingInterval > 0 {
		m.wg.Add(1)
		go m.pingLoop(conn, stop)
	}

	conn.SetPongHandler(func(string) error {
		return m.extendReadDeadline(conn)
	})

	for {
		if err := m.extendReadDeadline(conn); err != nil {
			m.handleReadError(gen, conn, err)
			return
		}

		_, frame, err := conn.ReadMessage()
		if err != nil {
			m.handleReadError(gen, conn, err)
			return
		}

		m.handleFrame(gen, frame)
	}
}

func (m *Manager) extendReadDeadline(conn Conn) error {
	if m.config.ReadTimeout <= 0 {
		return nil
	}
	return conn.SetReadDeadline(time.Now().Add(m.config.ReadTimeout))
}

// handleFrame decodes, validates and stores one frame. Rejected frames are dropped.
func (m *Manager) handleFrame(gen uint64, frame []byte) {
	start := time.Now()
	observability.RecordFrameReceived()

	trade, err := m.parser.Parse(frame)
	if err != nil {
		reason := "rejected"
		if errors.Is(err, feed.ErrDecode) {
			reason = "decode"
		}
		observability.RecordFrameRejected(reason)
		m.logger.Debug("dropping frame", zap.String("reason", reason), zap.Error(err))
		return
	}

	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		return
	}
	m.store.Insert(trade)
	size := m.store.Len()
	m.mu.Unlock()

	observability.UpdateStoreSize(size)
	observability.RecordTradeAccepted(time.Since(start).Seconds())
}

// handleReadError maps a read failure to a close or transport-error event.
func (m *Manager) handleReadError(gen uint64, conn Conn, err error) {
	m.mu.Lock()
	if gen != m.gen {
		// Released by Connect or Disconnect, which already closed conn.
		m.mu.Unlock()
		return
	}
	m.conn = nil

	var closeErr *websocket.CloseError
	switch {
	case errors.As(err, &closeErr) && closeErr.Code == domain.WSCloseNormal:
		m.errMsg = ""
		m.transitionLocked(EventClosedNormal)
	case errors.As(err, &closeErr):
		reason := closeErr.Text
		if reason == "" {
			reason = MsgUnknownReason
		}
		m.errMsg = MsgClosedPrefix + reason
		m.transitionLocked(EventClosedAbnormal)
	default:
		m.errMsg = MsgTransportError
		m.transitionLocked(EventTransportError)
	}
	status := m.statusLocked()
	m.mu.Unlock()

	conn.Close()
	if status.Err != "" {
		m.logger.Warn("connection lost", zap.String("target", status.Target), zap.Error(err))
	} else {
		m.logger.Info("connection closed by peer", zap.String("target", status.Target))
	}
	m.notify(status)
}

// pingLoop sends periodic ping frames to keep the connection alive.
func (m *Manager) pingLoop(conn Conn, stop <-chan struct{}) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			deadline := time.Now().Add(m.config.WriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				// Connection might be dead, read loop will report it
				return
			}
		}
	}
}

func (m *Manager) closeConn(conn Conn, code int, reason string) {
	deadline := time.Now().Add(m.config.WriteTimeout)
	msg := websocket.FormatCloseMessage(code, reason)
	if err := conn.WriteControl(websocket.CloseMessage, msg, deadline); err != nil {
		m.logger.Debug("write close frame", zap.Error(err))
	}
	conn.Close()
}

// transitionLocked applies ev; inapplicable events leave the state unchanged.
func (m *Manager) transitionLocked(ev Event) {
	next, ok := Transition(m.state, ev)
	if !ok || next == m.state {
		return
	}
	m.logger.Debug("connection state",
		zap.Stringer("from", m.state),
		zap.Stringer("to", next),
		zap.Stringer("event", ev),
	)
	m.state = next
	observability.RecordConnectionState(next.String())
}

func (m *Manager) statusLocked() Status {
	return Status{State: m.state, Err: m.errMsg, Target: m.target}
}

func (m *Manager) notify(s Status) {
	if m.onChange != nil {
		m.onChange(s)
	}
}
