// Package api exposes the dashboard over a small local HTTP surface.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tradewatch/internal/connection"
	"tradewatch/internal/domain"
	"tradewatch/internal/filter"
	"tradewatch/internal/observability"
	"tradewatch/internal/storage"
)

// Connector is the part of connection.Manager the API drives.
type Connector interface {
	Connect(target string) error
	Disconnect()
	Status() connection.Status
}

// Server holds the router and the components it reads and drives.
// It keeps no state of its own.
type Server struct {
	R       *gin.Engine
	conn    Connector
	store   storage.TradeStore
	filters *filter.Controller
	logger  *zap.Logger
	now     func() time.Time
	started time.Time
}

// Options contains configuration for creating a Server.
type Options struct {
	Connector Connector
	Store     storage.TradeStore
	Filters   *filter.Controller
	Logger    *zap.Logger
	Now       func() time.Time // Default: time.Now
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatusResponse is the JSON body of GET /status.
type StatusResponse struct {
	Connection        connection.Status `json:"connection"`
	Trades            int               `json:"trades"`
	MaxTrades         int               `json:"maxTrades"`
	ActiveFilters     int               `json:"activeFilters"`
	HasPendingChanges bool              `json:"hasPendingChanges"`
	Uptime            string            `json:"uptime"`
}

// TradesResponse is the JSON body of GET /trades.
type TradesResponse struct {
	Rows          []domain.Trade `json:"rows"`
	Count         int            `json:"count"`
	Retained      int            `json:"retained"`
	MaxTrades     int            `json:"maxTrades"`
	ActiveFilters int            `json:"activeFilters"`
}

// FiltersResponse is the JSON body of every /filters endpoint.
type FiltersResponse struct {
	Pending           domain.FilterState `json:"pending"`
	Active            domain.FilterState `json:"active"`
	ActiveCount       int                `json:"activeCount"`
	HasPendingChanges bool               `json:"hasPendingChanges"`
}

type connectRequest struct {
	URL string `json:"url"`
}

// NewServer wires the router and middleware.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	g := gin.New()

	// Request logging
	g.Use(func(cn *gin.Context) {
		start := time.Now()
		cn.Next()
		logger.Debug("http_request",
			zap.String("method", cn.Request.Method),
			zap.String("path", cn.Request.URL.Path),
			zap.Int("status", cn.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	})
	g.Use(gin.Recovery())

	s := &Server{
		R:       g,
		conn:    opts.Connector,
		store:   opts.Store,
		filters: opts.Filters,
		logger:  logger,
		now:     now,
		started: now(),
	}

	g.GET("/health", func(cn *gin.Context) { cn.String(http.StatusOK, "ok") })
	g.GET("/metrics", gin.WrapH(observability.Handler()))
	g.GET("/status", s.getStatus)

	g.GET("/trades", s.getTrades)
	g.DELETE("/trades", s.clearTrades)

	g.POST("/connect", s.connect)
	g.POST("/disconnect", s.disconnect)

	g.GET("/filters", s.getFilters)
	g.PATCH("/filters/pending", s.patchPending)
	g.POST("/filters/apply", s.applyFilters)
	g.POST("/filters/clear", s.clearFilters)

	return s
}

// --- Helpers ---

func (s *Server) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, apiError{Code: "bad_request", Message: msg})
}

func (s *Server) filtersResponse() FiltersResponse {
	return FiltersResponse{
		Pending:           s.filters.Pending(),
		Active:            s.filters.Active(),
		ActiveCount:       s.filters.ActiveCount(),
		HasPendingChanges: s.filters.HasPendingChanges(),
	}
}

// --- Handlers ---

func (s *Server) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{
		Connection:        s.conn.Status(),
		Trades:            s.store.Len(),
		MaxTrades:         s.store.MaxTrades(),
		ActiveFilters:     s.filters.ActiveCount(),
		HasPendingChanges: s.filters.HasPendingChanges(),
		Uptime:            s.now().Sub(s.started).Truncate(time.Second).String(),
	})
}

// getTrades returns the retained trades with the active filter applied at read time.
func (s *Server) getTrades(c *gin.Context) {
	snapshot := s.store.Snapshot()
	active := s.filters.Active()
	rows := filter.Apply(snapshot, active, s.now())

	c.JSON(http.StatusOK, TradesResponse{
		Rows:          rows,
		Count:         len(rows),
		Retained:      len(snapshot),
		MaxTrades:     s.store.MaxTrades(),
		ActiveFilters: filter.CountActive(active),
	})
}

func (s *Server) clearTrades(c *gin.Context) {
	s.store.Clear()
	observability.RecordStoreClear()
	s.logger.Info("trades cleared")
	c.Status(http.StatusNoContent)
}

func (s *Server) connect(c *gin.Context) {
	var req connectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "body must be {\"url\": \"ws://...\"}")
		return
	}

	err := s.conn.Connect(req.URL)
	switch {
	case err == nil:
		c.JSON(http.StatusAccepted, s.conn.Status())
	case errors.Is(err, connection.ErrEmptyTarget), errors.Is(err, connection.ErrInvalidTarget):
		s.badRequest(c, s.conn.Status().Err)
	case errors.Is(err, connection.ErrClosed):
		c.JSON(http.StatusServiceUnavailable, apiError{Code: "unavailable", Message: err.Error()})
	default:
		s.logger.Error("connect", zap.Error(err))
		c.JSON(http.StatusInternalServerError, apiError{Code: "internal_server_error", Message: "internal server error"})
	}
}

func (s *Server) disconnect(c *gin.Context) {
	s.conn.Disconnect()
	c.JSON(http.StatusOK, s.conn.Status())
}

func (s *Server) getFilters(c *gin.Context) {
	c.JSON(http.StatusOK, s.filtersResponse())
}

func (s *Server) patchPending(c *gin.Context) {
	var p filter.Patch
	if err := c.ShouldBindJSON(&p); err != nil {
		s.badRequest(c, "malformed filter patch")
		return
	}
	if _, err := s.filters.UpdatePending(p); err != nil {
		s.badRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, s.filtersResponse())
}

func (s *Server) applyFilters(c *gin.Context) {
	s.filters.Apply()
	observability.RecordFilterApply()
	c.JSON(http.StatusOK, s.filtersResponse())
}

func (s *Server) clearFilters(c *gin.Context) {
	s.filters.ClearAll()
	c.JSON(http.StatusOK, s.filtersResponse())
}
