// Package main runs a mock trade feed: a WebSocket server that pushes one synthetic
// trade per interval to every connected client.
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

	"tradewatch/internal/config"
	"tradewatch/internal/feedgen"
	"tradewatch/internal/observability"
)

func main() {
	// Load .env file if exists
	if err := config.LoadEnvFile(".env"); err != nil {
		log.Fatalf("env file: %v", err)
	}

	cfg, err := config.LoadFeedgen()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// Parse flags (env vars as defaults)
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address")
	flag.DurationVar(&cfg.Interval, "interval", cfg.Interval, "Delay between trades per client")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	flag.BoolVar(&cfg.LogDevelopment, "log-dev", cfg.LogDevelopment, "Human-readable console logs")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "Random seed")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := config.NewLogger(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	feed := feedgen.NewServer(feedgen.ServerOptions{
		Generator: feedgen.NewGenerator(*seed),
		Interval:  cfg.Interval,
		Logger:    logger,
	})

	mux := http.NewServeMux()
	mux.Handle("/", feed)
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.Addr, Handler: mux}
	go func() {
		logger.Info("mock feed listening",
			zap.String("addr", cfg.Addr),
			zap.Duration("interval", cfg.Interval),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http", zap.Error(err))
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	logger.Info("shutting down", zap.Stringer("signal", s))

	feed.Close()
	ctxShut, cancelShut := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShut()
	_ = server.Shutdown(ctxShut)
	logger.Info("shutdown complete")
}
