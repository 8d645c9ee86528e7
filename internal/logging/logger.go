// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ LoggerInterface = (*Logger)(nil)

// Logger is the application logger, a sugared zap logger with a dedicated
// structured channel for security events.
type Logger struct {
	*zap.SugaredLogger

	security *SecurityLogger
}

func (l *Logger) Security() SecurityLoggerInterface {
	return l.security
}

// NewLogger creates a JSON production logger at the given level.
// Unknown levels fall back to error.
func NewLogger(l string) *Logger {
	var lvl zapcore.Level

	switch strings.ToLower(l) {
	case "debug":
		lvl = zap.DebugLevel
	case "info":
		lvl = zap.InfoLevel
	case "warn", "warning":
		lvl = zap.WarnLevel
	default:
		lvl = zap.ErrorLevel
	}

	c := zap.NewProductionConfig()
	c.Level.SetLevel(lvl)
	c.EncoderConfig.TimeKey = "@timestamp"
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := c.Build()
	if err != nil {
		panic(err)
	}

	// security events are always emitted, whatever the configured level
	securityConfig := zap.NewProductionConfig()
	securityConfig.Level.SetLevel(zap.InfoLevel)
	securityConfig.EncoderConfig.TimeKey = "@timestamp"
	securityConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	securityConfig.InitialFields = map[string]interface{}{"type": "security"}

	securityLogger, err := securityConfig.Build()
	if err != nil {
		panic(err)
	}

	return &Logger{
		SugaredLogger: logger.Sugar(),
		security:      &SecurityLogger{l: securityLogger},
	}
}

// NewLoggerFromCore builds a Logger whose application and security channels
// both write to core.
func NewLoggerFromCore(core zapcore.Core) *Logger {
	l := zap.New(core)

	return &Logger{
		SugaredLogger: l.Sugar(),
		security:      &SecurityLogger{l: l.With(zap.String("type", "security"))},
	}
}
