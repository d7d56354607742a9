// Package logging provides the four-sink structured logger contract
// used throughout cronsched — info/warn/error/debug, each accepting an
// optional structured context map — backed by zap.
package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the level-tagged sink contract every component logs
// through. No PII beyond a job name is ever passed in ctx.
type Logger interface {
	Info(msg string, ctx map[string]any)
	Warn(msg string, ctx map[string]any)
	Error(msg string, ctx map[string]any)
	Debug(msg string, ctx map[string]any)
}

// ValidLogLevels lists the zap levels accepted by Build.
var ValidLogLevels = []string{"debug", "info", "warn", "error", "dpanic", "panic", "fatal"}

// IsValidLogLevel reports whether level (case-insensitive) is one of
// ValidLogLevels.
func IsValidLogLevel(level string) bool {
	level = strings.ToLower(level)
	for _, valid := range ValidLogLevels {
		if level == valid {
			return true
		}
	}
	return false
}

type zapLogger struct {
	z *zap.Logger
}

func fields(ctx map[string]any) []zap.Field {
	if len(ctx) == 0 {
		return nil
	}
	fs := make([]zap.Field, 0, len(ctx))
	for k, v := range ctx {
		fs = append(fs, zap.Any(k, v))
	}
	return fs
}

func (l *zapLogger) Info(msg string, ctx map[string]any)  { l.z.Info(msg, fields(ctx)...) }
func (l *zapLogger) Warn(msg string, ctx map[string]any)  { l.z.Warn(msg, fields(ctx)...) }
func (l *zapLogger) Error(msg string, ctx map[string]any) { l.z.Error(msg, fields(ctx)...) }
func (l *zapLogger) Debug(msg string, ctx map[string]any) { l.z.Debug(msg, fields(ctx)...) }

// NewZap wraps an existing *zap.Logger as a Logger.
func NewZap(z *zap.Logger) Logger {
	if z == nil {
		z = zap.NewNop()
	}
	return &zapLogger{z: z}
}

// Bootstrap returns a development-friendly Logger for use before
// configuration has loaded.
func Bootstrap() Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)

	z, err := cfg.Build()
	if err != nil {
		return NewZap(zap.NewNop())
	}
	return NewZap(z)
}

// Build constructs the configured Logger: JSON encoding in "prod", the
// development console encoder otherwise. An invalid level warns to
// stderr and falls back to "info".
func Build(level, env string) (Logger, error) {
	var cfg zap.Config
	if env == "prod" {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "json"
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if err := cfg.Level.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		_, _ = os.Stderr.WriteString("WARNING: invalid log level \"" + level +
			"\"; valid levels are: debug, info, warn, error, dpanic, panic, fatal. Defaulting to \"info\".\n")
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return NewZap(z), nil
}

// MustBuild is a convenience for main() that wants to fatal on build
// failure.
func MustBuild(level, env string) Logger {
	l, err := Build(level, env)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to build logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	return l
}

// Nop returns a Logger that discards everything, the "stdout-console"
// default's quiet sibling used by tests.
func Nop() Logger { return NewZap(zap.NewNop()) }
