// Package cmd implements the burnline CLI commands.
package cmd

import (
	"context"
	"os"

	"github.com/theirongolddev/burnline/internal/config"
	"github.com/theirongolddev/burnline/internal/layout"
	"github.com/theirongolddev/burnline/internal/logger"
	"github.com/theirongolddev/burnline/internal/metrics"
	"github.com/theirongolddev/burnline/internal/statusline"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagStats    bool
	flagWidth    int
	flagConfig   string
	flagCacheDir string
	flagNoLog    bool
)

var rootCmd = &cobra.Command{
	Use:   "burnline",
	Short: "Two-line Claude Code statusline",
	Long: "Render a two-line statusline from the JSON snapshot Claude Code pipes on stdin:\n" +
		"context usage, session cost, rate limits and recent spend.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runStatusline,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		rootCmd.PrintErrln("burnline:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default $BURNLINE_CONFIG or ~/.claude/statusline.toml)")
	rootCmd.PersistentFlags().StringVar(&flagCacheDir, "cache-dir", "", "Cache directory (overrides config and $BURNLINE_CACHE_DIR)")

	rootCmd.Flags().BoolVar(&flagStats, "stats", false, "Print the session log summary instead of the statusline")
	rootCmd.Flags().IntVar(&flagWidth, "width", 0, "Terminal width (default: $STATUSLINE_COLS, $COLUMNS, tty, 80)")
	rootCmd.Flags().BoolVar(&flagNoLog, "no-log", false, "Do not append to the session log")
}

// loadConfig resolves configuration from file, environment and flags. The
// returned Config is always usable; err reports rejected keys.
func loadConfig() (config.Config, error) {
	path := flagConfig
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.Load(path)
	config.ApplyEnv(&cfg, os.Getenv)
	if flagCacheDir != "" {
		cfg.Cache.Dir = flagCacheDir
	}
	return cfg, err
}

// newLogger builds the diagnostics logger, falling back to a no-op logger.
func newLogger(cfg config.Config) *zap.Logger {
	log, err := logger.New(cfg.Log.Level, cfg.LogFile())
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// logConfigErrors reports each rejected config key at warn level.
func logConfigErrors(log *zap.Logger, err error) {
	if err == nil {
		return
	}
	for _, e := range configErrors(err) {
		log.Warn("config", zap.Error(e))
	}
}

// configErrors flattens a joined error from config.Load.
func configErrors(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

func runStatusline(cmd *cobra.Command, _ []string) error {
	if flagStats {
		return runStats(cmd, nil)
	}

	cfg, cfgErr := loadConfig()
	log := newLogger(cfg).With(zap.String("run", uuid.NewString()))
	defer func() { _ = log.Sync() }()
	logConfigErrors(log, cfgErr)

	var m *metrics.Metrics
	if cfg.Metrics.Textfile != "" {
		m = metrics.New()
	}

	r := statusline.New(statusline.Options{
		Config:  cfg,
		Width:   layout.DetectWidth(flagWidth, os.Getenv, layout.TTYWidth),
		NoLog:   flagNoLog,
		Logger:  log,
		Metrics: m,
	})

	if err := r.Run(context.Background(), cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
		log.Debug("writing statusline", zap.Error(err))
	}
	return nil
}
