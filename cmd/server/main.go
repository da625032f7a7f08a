package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/saviobatista/rpas-logbook/internal/config"
	"github.com/saviobatista/rpas-logbook/internal/geo"
	"github.com/saviobatista/rpas-logbook/internal/server"
	"github.com/saviobatista/rpas-logbook/internal/store"
)

func main() {
	if err := runServer(); err != nil {
		log.Printf("Server failed: %v", err)
		os.Exit(1)
	}
}

// runServer contains the main application logic
func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	st := store.Open(cfg.DBPath, logger)
	defer func() { _ = st.Close() }()

	locator := geo.NewLocator(cfg.GeoURL, cfg.GeoTimeout)
	api := server.New(st, locator, logger, cfg.ExportPrefix)

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- httpServer.ListenAndServe()
	}()

	logger.Info("logbook listening",
		zap.String("addr", cfg.ListenAddr),
		zap.String("db", cfg.DBPath))

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server stopped: %w", err)
	case sig := <-sigChan:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down cleanly: %w", err)
	}
	return nil
}
