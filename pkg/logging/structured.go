package logging

import (
	"log/slog"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps both slog and zap loggers
type Logger struct {
	slog *slog.Logger
	zap  *zap.Logger
}

// Config holds logging configuration
type Config struct {
	Level     string
	Format    string // "json" or "console"
	Output    string // "stdout" or "stderr"
	AddCaller bool
	AddStack  bool
}

// NewLogger creates a new structured logger
func NewLogger(config Config) (*Logger, error) {
	slogLevel := parseSlogLevel(config.Level)
	slogOut := os.Stderr
	if config.Output == "stdout" {
		slogOut = os.Stdout
	}
	slogHandler := slog.NewJSONHandler(slogOut, &slog.HandlerOptions{
		Level: slogLevel,
	})
	slogLogger := slog.New(slogHandler)

	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = parseZapLevel(config.Level)
	if config.Format != "" {
		zapConfig.Encoding = config.Format
	}
	if config.Output != "" {
		zapConfig.OutputPaths = []string{config.Output}
		zapConfig.ErrorOutputPaths = []string{config.Output}
	}
	zapConfig.DisableCaller = !config.AddCaller
	zapConfig.DisableStacktrace = !config.AddStack

	zapLogger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{
		slog: slogLogger,
		zap:  zapLogger,
	}, nil
}

// parseSlogLevel parses slog level from string
func parseSlogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// parseZapLevel parses zap level from string
func parseZapLevel(level string) zap.AtomicLevel {
	switch level {
	case "debug":
		return zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case "info":
		return zap.NewAtomicLevelAt(zapcore.InfoLevel)
	case "warn":
		return zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case "error":
		return zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	default:
		return zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
}

// WithScenario adds the scenario name to logger context
func (l *Logger) WithScenario(name string) *Logger {
	return &Logger{
		slog: l.slog.With("scenario", name),
		zap:  l.zap.With(zap.String("scenario", name)),
	}
}

// WithModule adds the module path to logger context
func (l *Logger) WithModule(path string) *Logger {
	return &Logger{
		slog: l.slog.With("module", path),
		zap:  l.zap.With(zap.String("module", path)),
	}
}

// WithFields adds fields to logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	slogAttrs := make([]any, 0, len(fields)*2)
	zapFields := make([]zap.Field, 0, len(fields))

	for key, value := range fields {
		slogAttrs = append(slogAttrs, key, value)
		zapFields = append(zapFields, zap.Any(key, value))
	}

	return &Logger{
		slog: l.slog.With(slogAttrs...),
		zap:  l.zap.With(zapFields...),
	}
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.slog.Debug(msg, args...)
	l.zap.Debug(msg, convertToZapFields(args)...)
}

// Info logs an info message
func (l *Logger) Info(msg string, args ...interface{}) {
	l.slog.Info(msg, args...)
	l.zap.Info(msg, convertToZapFields(args)...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.slog.Warn(msg, args...)
	l.zap.Warn(msg, convertToZapFields(args)...)
}

// Error logs an error message
func (l *Logger) Error(msg string, args ...interface{}) {
	l.slog.Error(msg, args...)
	l.zap.Error(msg, convertToZapFields(args)...)
}

// convertToZapFields converts interface{} args to zap.Field
func convertToZapFields(args []interface{}) []zap.Field {
	if len(args) == 0 {
		return nil
	}

	fields := make([]zap.Field, 0, len(args)/2)
	for i := 0; i < len(args)-1; i += 2 {
		if key, ok := args[i].(string); ok {
			fields = append(fields, zap.Any(key, args[i+1]))
		}
	}
	return fields
}

// LogScenario logs a completed scenario run
func (l *Logger) LogScenario(scenario, module, status string, duration time.Duration) {
	fields := map[string]interface{}{
		"scenario":    scenario,
		"module":      module,
		"status":      status,
		"duration_ms": float64(duration.Nanoseconds()) / 1e6,
	}

	logger := l.WithFields(fields)
	if status == "pass" {
		logger.Info("scenario completed")
	} else {
		logger.Warn("scenario failed")
	}
}
