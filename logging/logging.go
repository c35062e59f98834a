// Package logging configures the zap.Logger used across treedb's ambient
// (non-core-library) packages — the CLI and the store package. The
// transaction interpreter itself only ever receives an already-built
// *zap.Logger (via Transaction.WithLogger); it never reaches for this
// package directly, keeping the core library free of a concrete logging
// dependency construction path (spec.md §6: "no environment variables, no
// files, no network" — file-backed rotation lives here, at the edge, not
// in the core).
package logging

import (
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls how New builds a logger.
type Config struct {
	// Level is the minimum enabled level ("debug", "info", "warn", "error").
	Level string
	// Development enables human-readable console output instead of JSON.
	Development bool
	// FilePath, if non-empty, sends output to a rotating lumberjack writer
	// instead of stderr.
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New builds a *zap.Logger from cfg. Never returns an error: an
// unparseable Level falls back to info, matching zap's own
// zapcore.Level.UnmarshalText leniency expectations for a CLI flag.
func New(cfg Config) *zap.Logger {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderCfg)
	if cfg.Development {
		encoderCfg = zap.NewDevelopmentEncoderConfig()
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	var sink zapcore.WriteSyncer
	if cfg.FilePath != "" {
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    nonZero(cfg.MaxSizeMB, 100),
			MaxBackups: nonZero(cfg.MaxBackups, 3),
			MaxAge:     nonZero(cfg.MaxAgeDays, 28),
		})
	} else {
		sink = zapcore.Lock(os.Stderr)
	}

	core := zapcore.NewCore(encoder, sink, level)
	return zap.New(core, zap.AddCaller())
}

func nonZero(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
