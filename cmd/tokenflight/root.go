// Package tokenflight implements the tokenflight command line interface.
package tokenflight

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/The-Last-Byte-Bar/Token-Flight/internal/collector"
	"github.com/The-Last-Byte-Bar/Token-Flight/internal/config"
	"github.com/The-Last-Byte-Bar/Token-Flight/internal/explorer"
	"github.com/The-Last-Byte-Bar/Token-Flight/internal/notify"
	"github.com/The-Last-Byte-Bar/Token-Flight/internal/output"
	"github.com/The-Last-Byte-Bar/Token-Flight/internal/service"
	"github.com/The-Last-Byte-Bar/Token-Flight/internal/sigscore"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "tokenflight",
	Short: "Mining pool reward distribution engine for Ergo",
	Long: `Token Flight computes proportional reward distributions for mining pool
participants based on observed blockchain activity and produces an exact,
auditable payout list for hand-off to a transaction builder.`,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (TOKENFLIGHT_* environment variables override)")
}

func setupLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}

// buildService wires the explorer client, resolver, participation fetcher,
// outputs and notifier into a Service. The returned cleanup closes every
// output handler.
func buildService(ctx context.Context, cfg config.Config, log *slog.Logger) (*service.Service, func(), error) {
	explorerClient := explorer.NewClient(cfg, log)
	blockCollector := collector.New(cfg, explorerClient, log)
	participation := sigscore.NewClient(cfg, log)
	notifier := notify.NewTelegram(cfg, log)

	var handlers []output.Handler

	fileWriter, err := output.NewFileWriter(cfg.OutputDir, log)
	if err != nil {
		return nil, nil, err
	}
	handlers = append(handlers, fileWriter)

	if cfg.DatabaseURL != "" {
		store, err := output.NewPostgresHandler(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect audit store: %w", err)
		}
		handlers = append(handlers, store)
	}

	cleanup := func() {
		for _, h := range handlers {
			if err := h.Close(); err != nil {
				log.Warn("Failed to close output handler", "error", err)
			}
		}
	}

	svc := service.New(cfg, blockCollector, participation, explorerClient, handlers, notifier, log)
	return svc, cleanup, nil
}
