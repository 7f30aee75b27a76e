// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package logger builds the process-wide [*slog.Logger].

Handlers and services log through the standard slog API (usually the
per-request logger from ctxutil). Records are encoded by a zap core so that
production gets sampled JSON and development gets a colored console.
*/
package logger

import (
	"fmt"
	"log/slog"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"

	"github.com/taibuivan/shopii/internal/platform/constants"
)

// Options selects the encoder and level of the root logger.
type Options struct {
	Environment string
	Format      string // "json" or "console"
	Debug       bool
}

// New builds the root slog logger and the zap logger that backs it.
// Callers should defer Sync on the returned zap logger to flush buffered entries.
func New(opts Options) (*slog.Logger, *zap.Logger, error) {
	var config zap.Config

	if opts.Environment == "production" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		config.DisableStacktrace = true
		config.Sampling = &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		}
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	level := zapcore.InfoLevel
	if opts.Debug {
		level = zapcore.DebugLevel
	}
	config.Level = zap.NewAtomicLevelAt(level)

	if opts.Format == "console" {
		config.Encoding = "console"
	} else {
		config.Encoding = "json"
		config.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	}

	// Always log to stdout for containers
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	zapLogger, err := config.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("logger: failed to build zap logger: %w", err)
	}

	return FromZap(zapLogger, opts.Environment), zapLogger, nil
}

// FromZap wraps an existing zap logger in an slog front-end tagged with the app identity.
func FromZap(zapLogger *zap.Logger, environment string) *slog.Logger {
	handler := zapslog.NewHandler(zapLogger.Core(), zapslog.WithCaller(true))
	return slog.New(handler).With(
		slog.String("app", constants.AppName),
		slog.String("env", environment),
	)
}
