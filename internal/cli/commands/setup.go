package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapbi/internal/config"
	"github.com/leapstack-labs/leapbi/internal/project"
)

type configKey struct{}
type loggerKey struct{}

// WithConfig stores the loaded configuration in the context.
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// WithLogger stores the CLI logger in the context.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, log)
}

// ConfigFromContext retrieves the configuration, or nil.
func ConfigFromContext(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	return nil
}

// LoggerFromContext retrieves the logger, falling back to a stderr
// text handler.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
	Loader *project.Loader
}

// NewCommandContext builds the dependencies a command needs from its
// cobra context.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := ConfigFromContext(cmd.Context())
	if cfg == nil {
		cfg = &config.Config{}
		config.ApplyDefaults(cfg)
	}
	logger := LoggerFromContext(cmd.Context())

	return &CommandContext{
		Cfg:    cfg,
		Logger: logger,
		Loader: project.NewLoader(logger),
	}
}
