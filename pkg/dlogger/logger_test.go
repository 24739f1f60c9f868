package dlogger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestGetLoggerLevels(t *testing.T) {
	l, err := GetLogger(LogLevelDebug)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = GetLogger(LogLevelInfo)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))

	l, err = GetLogger(LogLevelNone)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
}

func TestGetLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := GetLogger("verbose")
	assert.ErrorIs(t, err, ErrInvalidLevel)
}

func TestMustGetLogger(t *testing.T) {
	assert.NotNil(t, MustGetLogger(LogLevelInfo))
	assert.Panics(t, func() {
		MustGetLogger("verbose")
	})
}
