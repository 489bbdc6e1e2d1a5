package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"libralend/internal/config"
)

var (
	cfgPath   string
	traceFlag bool
	cfg       config.Config
	logger    *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "libralend",
	Short: "In-memory library lending service",
	Long:  `libralend tracks books, readers and loans in memory and demonstrates the lending workflow end to end.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if traceFlag {
			cfg.Tracing = true
		}
		logger = newLogger(cfg.LogLevel)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "directory containing libralend.yaml")
	rootCmd.PersistentFlags().BoolVar(&traceFlag, "trace", false, "print spans to stdout")
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
