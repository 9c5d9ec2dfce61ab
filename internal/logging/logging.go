// ABOUTME: Logger construction with zap and lumberjack rotation
// ABOUTME: Writes JSON to a rotated log file and optionally to the console
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls log output
type Config struct {
	// File is the log file path; empty disables file output
	File  string
	Level string
	// Console also writes human-readable logs to stdout
	Console bool

	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New builds a sugared logger. The returned sync function flushes buffered entries.
func New(cfg Config) (*zap.SugaredLogger, func() error, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var cores []zapcore.Core
	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    orDefault(cfg.MaxSizeMB, 10),
			MaxBackups: orDefault(cfg.MaxBackups, 3),
			MaxAge:     orDefault(cfg.MaxAgeDays, 28),
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(rotator), level))
	}
	if cfg.Console {
		consoleCfg := encCfg
		consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stdout), level))
	}

	if len(cores) == 0 {
		return zap.NewNop().Sugar(), func() error { return nil }, nil
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	return logger.Sugar(), logger.Sync, nil
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
