package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/qudurat/qudurat/internal/config"
	"github.com/qudurat/qudurat/internal/logging"
	"github.com/qudurat/qudurat/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "qudurat",
	Short: "Aptitude test trainer",
	Long:  "Qudurat: a Telegram bot and terminal app for practicing the verbal and quantitative aptitude test.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPractice(cmd, practiceFlags{})
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides QUDURAT_DB env var)")
	rootCmd.PersistentFlags().String("settings", "", "Path to the YAML settings file (overrides QUDURAT_SETTINGS env var)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(rewardsCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

// loadConfig reads the configuration, applying the persistent flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	settings, _ := cmd.Flags().GetString("settings")
	cfg, err := config.Load(settings)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// resolveDBPath returns the database path from the configuration (--db
// flag, then QUDURAT_DB), falling back to the default XDG path.
func resolveDBPath(cfg config.Config) (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// openStore loads the configuration and opens the database.
func openStore(cmd *cobra.Command) (*store.Store, config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, config.Config{}, err
	}
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("open database: %w", err)
	}
	return st, cfg, nil
}

// newLogger builds the process logger and installs it as the slog default.
func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	logger := logging.New(cfg.Env, cfg.LogLevel, w)
	slog.SetDefault(logger)
	return logger
}
