// Package logging builds the run logger for each output mode.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Mode selects the log format and destination.
type Mode int

const (
	// ModeInteractive keeps stdout free for the TUI; only warnings and
	// errors reach stderr.
	ModeInteractive Mode = iota
	// ModePlain writes human-readable key=value lines to stdout.
	ModePlain
	// ModeJSON writes one JSON object per event to stdout for scripts.
	ModeJSON
)

// New constructs the logger for the given output mode.
func New(mode Mode) *zap.Logger {
	switch mode {
	case ModeJSON:
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "timestamp"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		return zap.New(zapcore.NewCore(
			zapcore.NewJSONEncoder(cfg),
			zapcore.Lock(os.Stdout),
			zapcore.InfoLevel,
		))
	case ModePlain:
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		return zap.New(zapcore.NewCore(
			zapcore.NewConsoleEncoder(cfg),
			zapcore.Lock(os.Stdout),
			zapcore.InfoLevel,
		))
	default:
		cfg := zap.NewDevelopmentEncoderConfig()
		return zap.New(zapcore.NewCore(
			zapcore.NewConsoleEncoder(cfg),
			zapcore.Lock(os.Stderr),
			zapcore.WarnLevel,
		))
	}
}
