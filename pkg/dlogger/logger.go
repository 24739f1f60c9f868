// Package dlogger builds the zap loggers used by the engine and the daemon.
package dlogger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/trigitdb/trigit/pkg/errors"
)

// Log levels accepted by the --log-level flag. A closed set: commit and
// replication logs carry structured fields at debug and info only.
const (
	// LogLevelDebug also logs context opens, validation skips and CAS conflicts
	LogLevelDebug = "debug"

	// LogLevelInfo logs commits, transfers and server lifecycle
	LogLevelInfo = "info"

	// LogLevelNone disables logging
	LogLevelNone = "none"
)

// ErrInvalidLevel is returned for a level outside the accepted set.
var ErrInvalidLevel = errors.New("log level must be one of debug, info, none")

// GetLogger builds a production logger at the given level. Sampling is
// disabled so conflict and transfer lines are never dropped.
func GetLogger(logLevel string) (*zap.Logger, error) {
	var lvl zapcore.Level
	switch logLevel {
	case LogLevelNone:
		return zap.NewNop(), nil
	case LogLevelDebug:
		lvl = zapcore.DebugLevel
	case LogLevelInfo:
		lvl = zapcore.InfoLevel
	default:
		return nil, ErrInvalidLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Sampling = nil
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// MustGetLogger returns a zap logger with the specified level or panics
func MustGetLogger(logLevel string) *zap.Logger {
	l, err := GetLogger(logLevel)
	if err != nil {
		panic(err)
	}
	return l
}
