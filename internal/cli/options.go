package cli

import (
	"context"
	"log/slog"

	"github.com/jakoblorz/go-mvnaudit/internal/config"
	"github.com/jakoblorz/go-mvnaudit/internal/tracing"
	"github.com/spf13/cobra"
)

const configFlag = "config"

// flagKeys maps command-line flags to the configuration keys they override.
var flagKeys = map[string]string{
	"org-prefix":     "organization.prefixes",
	"repository-url": "oracle.base_url",
	"concurrency":    "oracle.concurrency",
	"timeout":        "oracle.timeout",
	"org":            "github.org",
	"protocol":       "github.protocol",
	"log-level":      "log.level",
	"log-format":     "log.format",
	"metrics-file":   "metrics.file",
	"otlp-endpoint":  "tracing.endpoint",
}

func addGlobalFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String(configFlag, "", "Config file (default: ./mvnaudit.yaml when present)")
	flags.StringSlice("org-prefix", nil, "Organization group id prefix (repeatable)")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("log-format", "", "Log format: text or json")
	flags.String("otlp-endpoint", "", "Export traces to this OTLP gRPC collector (host:port)")
}

func addOracleFlags(cmd *cobra.Command) {
	cmd.Flags().String("repository-url", "", "Maven repository queried for latest versions")
	cmd.Flags().Int("concurrency", 0, "Latest-version lookups in flight")
	cmd.Flags().Duration("timeout", 0, "Timeout of one latest-version lookup")
}

// loadConfig layers the config file, MVNAUDIT_* variables and the flags
// set on cmd, and builds the logger the run uses.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	loader := config.NewLoader()

	for flagName, key := range flagKeys {
		flag := cmd.Flag(flagName)
		if flag == nil {
			continue
		}
		if err := loader.BindFlag(key, flag); err != nil {
			return nil, nil, err
		}
	}

	path, _ := cmd.Flags().GetString(configFlag)
	cfg, err := loader.Load(path)
	if err != nil {
		return nil, nil, err
	}

	logger := cfg.Log.NewLogger(cmd.ErrOrStderr())
	if used := loader.ConfigFileUsed(); used != "" {
		logger.Debug("loaded config", "file", used)
	}

	return cfg, logger, nil
}

// workspaceRoot returns the workspace argument at index i, or the configured one.
func workspaceRoot(cfg *config.Config, args []string, i int) string {
	if len(args) > i && args[i] != "" {
		return args[i]
	}
	return cfg.Workspace
}

// startTracing installs the run's tracer provider. The returned func flushes
// pending spans.
func startTracing(ctx context.Context, cfg *config.Config, logger *slog.Logger) (func(), error) {
	provider, err := tracing.Init(ctx, tracing.Config{
		Endpoint:       cfg.Tracing.Endpoint,
		SampleRate:     cfg.Tracing.SampleRate,
		ServiceVersion: Version,
	})
	if err != nil {
		return nil, err
	}

	return func() {
		if err := provider.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("traces not flushed", "error", err)
		}
	}, nil
}
