// Package cmd provides the command-line interface commands for deltaglider.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"deltaglider/pkg/config"
	"deltaglider/pkg/helper/log"
)

var (
	cfg     *config.Config
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "deltaglider",
		Short: "Delta-compressed object storage over S3-compatible backends",
		Long: `DeltaGlider transparently reduces storage footprint for near-duplicate
objects (releases, builds, backups) by storing a single reference per
deltaspace and binary diffs against it, while presenting ordinary S3
get/put/list semantics to callers.`,
	}
)

// Execute runs the root command; it is the sole entry point called by main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func init() {
	cfg = config.NewDefaultConfig()
	cfg.AddFlagsToCommand(rootCmd)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to a YAML configuration file")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newHealthCheckCmd())
	rootCmd.AddCommand(newPutCmd())
	rootCmd.AddCommand(newGetCmd())
	rootCmd.AddCommand(newVerifyCmd())
	rootCmd.AddCommand(newServeCmd())
}

// resolveConfig layers the YAML file (if --config was given) and
// environment variables documented in spec.md §6.3 on top of the
// flag-parsed defaults in cfg.
func resolveConfig() (*config.Config, error) {
	if cfgFile == "" {
		return cfg, cfg.Validate()
	}
	return config.LoadFromFile(cfgFile)
}

// setupCommand builds a logger from the resolved log level and wires a
// cancelable context torn down on SIGINT/SIGTERM.
func setupCommand(ctx context.Context, resolved *config.Config) (log.Logger, context.Context, context.CancelFunc) {
	logger := createLogger(resolved.LogLevel)
	ctx, cancel := context.WithCancel(ctx)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sigCh:
			logger.Info("received termination signal, shutting down")
			cancel()
		case <-ctx.Done():
			return
		}
	}()

	return logger, ctx, cancel
}

func createLogger(level string) log.Logger {
	var logLevel log.Level
	switch level {
	case "debug":
		logLevel = log.DebugLevel
	case "warn":
		logLevel = log.WarnLevel
	case "error":
		logLevel = log.ErrorLevel
	default:
		logLevel = log.InfoLevel
	}
	return log.NewLoggerWithLevel(logLevel)
}
