package confval

import (
	"context"
	"log/slog"
)

// Operation names reported to a Logger.
const (
	OpSet   = "set"
	OpApply = "apply"
	OpErase = "erase"
	OpMerge = "merge"
)

// OperationLogEvent describes a write against a config.
type OperationLogEvent struct {
	Op    string
	Key   string
	Value string
	// Skipped is set when Apply ignored a key the destination cannot hold.
	Skipped bool
	Err     error
}

// Logger records config write events.
type Logger interface {
	LogOperation(OperationLogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(OperationLogEvent)

// LogOperation implements Logger.
func (f LoggerFunc) LogOperation(event OperationLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogOperation(OperationLogEvent) {}

// NewSlogLogger reports events through logger: failures at warn level,
// everything else at debug level.
func NewSlogLogger(logger *slog.Logger) Logger {
	if logger == nil {
		return noopLogger{}
	}
	return LoggerFunc(func(event OperationLogEvent) {
		attrs := []slog.Attr{
			slog.String("op", event.Op),
			slog.String("key", event.Key),
		}
		if event.Value != "" {
			attrs = append(attrs, slog.String("value", event.Value))
		}
		switch {
		case event.Skipped:
			logger.LogAttrs(context.Background(), slog.LevelDebug, "config key skipped", attrs...)
		case event.Err != nil:
			attrs = append(attrs, slog.Any("error", event.Err))
			logger.LogAttrs(context.Background(), slog.LevelWarn, "config operation failed", attrs...)
		default:
			logger.LogAttrs(context.Background(), slog.LevelDebug, "config operation", attrs...)
		}
	})
}

// ConfigOption configures a DynamicConfig or StaticConfig.
type ConfigOption func(*configOptions)

type configOptions struct {
	logger Logger
}

func applyConfigOptions(opts []ConfigOption) configOptions {
	cfg := configOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func (c configOptions) loggerOrNoop() Logger {
	if c.logger != nil {
		return c.logger
	}
	return noopLogger{}
}

// WithLogger attaches a Logger that receives every write made through the
// config's methods.
func WithLogger(logger Logger) ConfigOption {
	return func(cfg *configOptions) {
		if logger == nil {
			cfg.logger = noopLogger{}
			return
		}
		cfg.logger = logger
	}
}
