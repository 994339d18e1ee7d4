// Package main runs the live trade dashboard: one feed connection, a bounded trade
// buffer, pending/active filters, a terminal table and a local control API.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"tradewatch/internal/api"
	"tradewatch/internal/config"
	"tradewatch/internal/connection"
	"tradewatch/internal/feed"
	"tradewatch/internal/filter"
	"tradewatch/internal/storage/memory"
	"tradewatch/internal/view"
)

func main() {
	// Load .env file if exists
	if err := config.LoadEnvFile(".env"); err != nil {
		log.Fatalf("env file: %v", err)
	}

	cfg, err := config.LoadDashboard()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// Parse flags (env vars as defaults)
	flag.StringVar(&cfg.FeedURL, "feed-url", cfg.FeedURL, "WebSocket feed to connect to on startup (ws:// or wss://)")
	flag.StringVar(&cfg.Protocol, "protocol", cfg.Protocol, "Feed frame format: canonical or binance")
	flag.IntVar(&cfg.MaxTrades, "max-trades", cfg.MaxTrades, "Number of most recent trades to retain")
	flag.StringVar(&cfg.DefaultExchange, "default-exchange", cfg.DefaultExchange, "Exchange recorded when a frame omits it")
	flag.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "Control API and metrics HTTP address (empty disables)")
	flag.DurationVar(&cfg.RenderInterval, "render-interval", cfg.RenderInterval, "Terminal table refresh interval (0 disables)")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	flag.BoolVar(&cfg.LogDevelopment, "log-dev", cfg.LogDevelopment, "Human-readable console logs")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := config.NewLogger(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	parser, err := feed.NewParser(cfg.Protocol, cfg.DefaultExchange)
	if err != nil {
		logger.Fatal("parser", zap.Error(err))
	}

	store := memory.NewTradeStore(cfg.MaxTrades)
	filters := filter.NewController()
	transport := cfg.Transport()

	manager := connection.NewManager(connection.Options{
		Store:  store,
		Parser: parser,
		Config: &transport,
		Logger: logger.Named("connection"),
		OnChange: func(s connection.Status) {
			logger.Info("connection status",
				zap.Stringer("state", s.State),
				zap.String("error", s.Err),
				zap.String("target", s.Target),
			)
		},
	})

	var server *http.Server
	if cfg.HTTPAddr != "" {
		s := api.NewServer(api.Options{
			Connector: manager,
			Store:     store,
			Filters:   filters,
			Logger:    logger.Named("api"),
		})
		server = &http.Server{Addr: cfg.HTTPAddr, Handler: s.R}
		go func() {
			logger.Info("http listening", zap.String("addr", cfg.HTTPAddr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal("http", zap.Error(err))
			}
		}()
	}

	if cfg.FeedURL != "" {
		if err := manager.Connect(cfg.FeedURL); err != nil {
			logger.Warn("initial connect", zap.Error(err))
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	renderDone := make(chan struct{})
	go func() {
		defer close(renderDone)
		renderLoop(ctx, cfg.RenderInterval, manager, store, filters, logger)
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	logger.Info("shutting down", zap.Stringer("signal", s))

	cancel()
	<-renderDone

	if server != nil {
		ctxShut, cancelShut := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShut()
		_ = server.Shutdown(ctxShut)
	}
	_ = manager.Close()
	logger.Info("shutdown complete")
}

// renderLoop redraws the trade table on every tick until ctx is done.
func renderLoop(ctx context.Context, interval time.Duration, m *connection.Manager, store *memory.TradeStore, filters *filter.Controller, logger *zap.Logger) {
	if interval <= 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			active := filters.Active()
			model := view.Model{
				Status:        m.Status(),
				Trades:        filter.Apply(store.Snapshot(), active, now),
				MaxTrades:     store.MaxTrades(),
				ActiveFilters: filter.CountActive(active),
				PendingEdits:  filters.HasPendingChanges(),
			}

			// Clear screen and home the cursor.
			os.Stdout.WriteString("\033[H\033[2J")
			if err := view.Render(os.Stdout, model); err != nil {
				logger.Warn("render", zap.Error(err))
			}
		}
	}
}
