// SPDX-License-Identifier: Apache-2.0

// Package logger holds the process-wide zap logger.
//
// Output always goes to stderr: when sof-mcp runs as an MCP server, stdout
// carries the stdio protocol and must stay clean.
package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the global logger instance. It is a no-op until Initialize is called.
var Logger *zap.SugaredLogger

func init() {
	// Safe default so packages can log before main configures output.
	Logger = zap.NewNop().Sugar()
}

// Config holds logger configuration
type Config struct {
	Level string // debug, info, warn, error
	JSON  bool   // structured JSON instead of console output
}

// Initialize sets up the global logger.
func Initialize(cfg Config) error {
	l, err := New(cfg)
	if err != nil {
		return err
	}
	Logger = l
	return nil
}

// New builds a logger without touching the global instance.
func New(cfg Config) (*zap.SugaredLogger, error) {
	level := ParseLevel(cfg.Level)

	if cfg.JSON {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(level)
		config.OutputPaths = []string{"stderr"}
		config.ErrorOutputPaths = []string{"stderr"}
		zapLogger, err := config.Build()
		if err != nil {
			return nil, err
		}
		return zapLogger.Sugar(), nil
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stderr),
		level,
	)
	return zap.New(core).Sugar(), nil
}

// ParseLevel maps a level name to a zap level, defaulting to info.
func ParseLevel(name string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zap.DebugLevel
	case "warn", "warning":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

// Named returns a child of the global logger for a component.
func Named(component string) *zap.SugaredLogger {
	return Logger.Named(component)
}
