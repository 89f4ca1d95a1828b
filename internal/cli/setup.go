package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/carbonfabric/cbam/internal/config"
	"github.com/carbonfabric/cbam/internal/logging"
	"github.com/carbonfabric/cbam/internal/store"
)

type configKey struct{}

// loadConfig resolves the configuration for this invocation and stashes it on
// the command context for subcommands.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if storePath, _ := cmd.Flags().GetString("store"); storePath != "" {
		cfg.Store.Path = storePath
	}
	cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
	return cfg, nil
}

// configFromCmd returns the configuration loaded by the root command.
func configFromCmd(cmd *cobra.Command) *config.Config {
	if cfg, ok := cmd.Context().Value(configKey{}).(*config.Config); ok {
		return cfg
	}
	return config.Default()
}

// setupLogging builds the root logger from config plus the --debug flag and
// attaches it, with a trace ID, to the command context.
func setupLogging(cmd *cobra.Command, cfg *config.Config) logging.Result {
	logCfg := logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	}

	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		logCfg.Level = "debug"
		logCfg.Format = "console"
		logCfg.File = ""
	}
	if !isTerminal(os.Stderr) && logCfg.Format == "console" {
		logCfg.Format = "json"
	}

	result := logging.New(logCfg)
	logger = logging.ComponentLogger(result.Logger, "cli")

	ctx := cmd.Context()
	traceID := logging.GetOrGenerateTraceID(ctx)
	ctx = logging.ContextWithTraceID(ctx, traceID)
	ctx = logger.WithContext(ctx)
	cmd.SetContext(ctx)

	logger.Debug().Str("command", cmd.Name()).Str("trace_id", traceID).Msg("command started")

	return result
}

// openStore opens the configured sqlite store, creating its directory on
// first use.
func openStore(cmd *cobra.Command) (*store.SQLite, error) {
	cfg := configFromCmd(cmd)
	if err := cfg.EnsureStoreDir(); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return store.Open(cfg.Store.Path)
}
