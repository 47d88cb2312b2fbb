package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/harumemo"
	"github.com/aretw0/harumemo/pkg/core"
)

var (
	verbose    bool
	configPath string
	adapter    string
	uri        string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "harumemo",
	Short: "A memo calendar: one note per day",
	Long: `Harumemo keeps one note per calendar day, with an emoji, attached images
and checklist lines. Notes are stored as a single JSON document in a
directory, a SQLite file or Redis, and can be exported to and imported
from JSON, YAML or plain text backups.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (HARUMEMO_* variables always apply)")
	rootCmd.PersistentFlags().StringVarP(&adapter, "adapter", "a", "", "Storage adapter: fs, sqlite, redis, memory")
	rootCmd.PersistentFlags().StringVar(&uri, "uri", "", "Data directory, database file or redis address")
}

// loadConfig merges the config file, environment and command line flags.
func loadConfig() *harumemo.Config {
	cfg, err := harumemo.LoadConfig(configPath)
	if err != nil {
		fatal("Failed to load configuration", err)
	}
	if adapter != "" {
		cfg.Storage.Adapter = adapter
	}
	if uri != "" {
		cfg.Storage.URI = uri
	}
	return cfg
}

// openService opens the configured store; failures are fatal.
func openService(ctx context.Context) *core.Service {
	cfg := loadConfig()
	opts := append(cfg.Options(), harumemo.WithLogger(slog.Default()))

	svc, err := harumemo.New(ctx, cfg.Storage.URI, opts...)
	if err != nil {
		fatal("Failed to open notes", err)
	}
	return svc
}

// reportSave prints the outcome of a mutating command.
func reportSave(date string, res core.SaveResult, err error) {
	if err != nil {
		fatal(fmt.Sprintf("Failed to update %s", date), err)
	}
	fmt.Printf("%s: %s\n", date, res.Change)
}
