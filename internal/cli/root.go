package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/me/jobbind/internal/config"
	"github.com/me/jobbind/internal/logging"
	"github.com/me/jobbind/internal/store"
)

var (
	flagConfig    string
	flagDB        string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string
	flagOutput    string

	cfg    config.Config
	logger *slog.Logger
)

// NewRootCmd creates the root cobra command for the jobbind CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "jobbind",
		Short: "jobbind stages job files and builds deterministic command lines",
		Long: "jobbind reads resolved job documents, stages their file requirements\n" +
			"into a working directory and flattens their command-line parts into argv.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(flagConfig)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("db") {
				loaded.DBPath = flagDB
			}
			if flags.Changed("log-level") {
				loaded.LogLevel = flagLogLevel
			}
			if flags.Changed("log-format") {
				loaded.LogFormat = flagLogFormat
			}
			cfg = loaded
			logger = logging.NewLogger(logging.Resolve(cfg.LogLevel, flagDebug), cfg.LogFormat)
			return nil
		},
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Path to a YAML config file")
	pf.StringVar(&flagDB, "db", "", "SQLite database recording passes (empty disables)")
	pf.BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	pf.StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")
	pf.StringVarP(&flagOutput, "output", "o", "text", "Output format (text, json)")

	root.AddCommand(
		newBindCmd(),
		newArgvCmd(),
		newInferCmd(),
		newFilesCmd(),
		newPassesCmd(),
		newServeCmd(),
	)
	return root
}

// openStore opens and migrates the configured database. It returns nil when
// no database is configured.
func openStore(ctx context.Context, path string) (*store.SQLiteStore, error) {
	if path == "" {
		return nil, nil
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	st, err := store.NewSQLiteStore(path, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return st, nil
}
