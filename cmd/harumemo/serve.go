package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/harumemo/pkg/adapters/httpapi"
	noteevents "github.com/aretw0/harumemo/pkg/adapters/lifecycle"
	"github.com/aretw0/harumemo/pkg/core"
)

var (
	serveAddr string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the notes over HTTP",
	Long: `Start the JSON HTTP API. When the store supports it (fs, redis), changes
written by other processes are picked up while serving.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg := loadConfig()
		addr := cfg.HTTP.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		svc := openService(ctx)
		defer svc.Close()

		if err := svc.Watch(ctx); err != nil {
			if !errors.Is(err, core.ErrNotWatchable) {
				fatal("Failed to watch the store", err)
			}
			slog.Info("external changes will not be picked up", "adapter", cfg.Storage.Adapter)
		}

		changes := noteevents.NewSource(svc.Subscribe(ctx))
		if err := changes.Start(ctx); err != nil {
			fatal("Failed to subscribe to changes", err)
		}
		go func() {
			for e := range changes.Events() {
				slog.Debug("notes changed", "event", e.String())
			}
		}()

		server := httpapi.New(svc, httpapi.Config{
			Logger:    slog.Default(),
			AccessLog: cfg.HTTP.AccessLog,
		})

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Listen(addr)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				fatal("Server failed", err)
			}
		case <-ctx.Done():
			slog.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				slog.Error("shutdown failed", "error", err)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :8080)")
}
