package feedgen

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"tradewatch/internal/domain"
	"tradewatch/internal/observability"
)

const writeWait = 10 * time.Second

// greeting is sent once when a client connects. It is not a trade.
type greeting struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// echo wraps a client message that parsed as JSON.
type echo struct {
	Type      string          `json:"type"`
	Original  json.RawMessage `json:"original"`
	Timestamp int64           `json:"timestamp"`
}

// Server pushes one generated trade per interval to every connected client.
type Server struct {
	gen      *Generator
	interval time.Duration
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	closed  bool
	wg      sync.WaitGroup
}

// ServerOptions contains configuration for creating a Server.
type ServerOptions struct {
	Generator *Generator
	Interval  time.Duration // Default: 1s
	Logger    *zap.Logger
}

// NewServer creates a feed server.
func NewServer(opts ServerOptions) *Server {
	gen := opts.Generator
	if gen == nil {
		gen = NewGenerator(uint64(time.Now().UnixNano()))
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Server{
		gen:      gen,
		interval: interval,
		logger:   logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// ServeHTTP upgrades the request and streams trades until the client leaves.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", zap.Error(err))
		return
	}

	if !s.register(conn) {
		conn.Close()
		return
	}
	defer s.unregister(conn)

	s.logger.Info("client connected", zap.String("remote", r.RemoteAddr))

	echoes := make(chan []byte, 8)
	done := make(chan struct{})
	go s.readLoop(conn, echoes, done)

	s.writeLoop(conn, echoes, done)
	s.logger.Info("client disconnected", zap.String("remote", r.RemoteAddr))
}

// Close disconnects every client with a going-away close frame and waits for their handlers.
func (s *Server) Close() {
	s.mu.Lock()
	s.closed = true
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for c := range s.clients {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for _, c := range conns {
		_ = c.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		c.Close()
	}
	s.wg.Wait()
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) register(conn *websocket.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.clients[conn] = struct{}{}
	s.wg.Add(1)
	observability.UpdateGeneratorClients(len(s.clients))
	return true
}

func (s *Server) unregister(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.clients, conn)
	n := len(s.clients)
	s.mu.Unlock()

	conn.Close()
	observability.UpdateGeneratorClients(n)
	s.wg.Done()
}

// readLoop answers JSON client messages with an echo and ends when the client goes away.
func (s *Server) readLoop(conn *websocket.Conn, echoes chan<- []byte, done chan<- struct{}) {
	defer close(done)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if !json.Valid(msg) {
			continue
		}

		out, err := json.Marshal(echo{Type: "echo", Original: msg, Timestamp: time.Now().UnixMilli()})
		if err != nil {
			continue
		}
		select {
		case echoes <- out:
		default:
			s.logger.Debug("echo dropped, writer busy")
		}
	}
}

// writeLoop owns all writes to conn.
func (s *Server) writeLoop(conn *websocket.Conn, echoes <-chan []byte, done <-chan struct{}) {
	hello, err := json.Marshal(greeting{
		Type:      "connection",
		Message:   "Connected to mock trading server",
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil || s.write(conn, hello) != nil {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case msg := <-echoes:
			if err := s.write(conn, msg); err != nil {
				return
			}
		case <-ticker.C:
			frame, err := encodeTrade(s.gen.Generate())
			if err != nil {
				s.logger.Error("encode trade", zap.Error(err))
				continue
			}
			if err := s.write(conn, frame); err != nil {
				return
			}
			observability.RecordGeneratorTradeSent()
		}
	}
}

func (s *Server) write(conn *websocket.Conn, msg []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, msg)
}

func encodeTrade(t domain.Trade) ([]byte, error) {
	return json.Marshal(t)
}
