package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/hyperengineering/cadence/internal/api"
	"github.com/hyperengineering/cadence/internal/config"
	"github.com/hyperengineering/cadence/internal/worker"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the posting worker and status API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	initLogger(cfg)
	slog.Info("configuration loaded")

	a, db, err := buildApp(cfg)
	if err != nil {
		return err
	}
	slog.Info("engine initialized", "db", cfg.Database.Path)

	handler := api.NewHandler(db, a, Version)
	router := api.NewRouter(handler)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout),
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout),
	}

	var wg sync.WaitGroup
	poster := worker.NewPostWorker(a, time.Duration(cfg.Schedule.CheckInterval))
	wg.Add(1)
	go func() {
		defer wg.Done()
		poster.Run(ctx)
	}()

	go func() {
		slog.Info("server starting", "address", addr)
		// ErrServerClosed is the expected error on graceful Shutdown; anything
		// else is a real failure that should take the process down.
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown initiated")

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout))
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	wg.Wait()

	if err := db.Close(); err != nil {
		slog.Error("store close error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
