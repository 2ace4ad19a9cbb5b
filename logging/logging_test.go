package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevelString(t *testing.T) {
	require.Equal(t, "DEBUG", DebugLevel.String())
	require.Equal(t, "INFO", InfoLevel.String())
	require.Equal(t, "WARN", WarnLevel.String())
	require.Equal(t, "ERROR", ErrorLevel.String())
	require.Equal(t, "UNKNOWN", Level(99).String())
}

func TestSetGlobalLoggerNilFallsBackToNoOp(t *testing.T) {
	orig := GetGlobalLogger()
	defer SetGlobalLogger(orig)

	SetGlobalLogger(nil)
	_, ok := GetGlobalLogger().(*NoOpLogger)
	require.True(t, ok)

	custom := &NoOpLogger{}
	SetGlobalLogger(custom)
	require.Same(t, GetGlobalLogger(), custom)
}

func TestFormatMessageMergesFields(t *testing.T) {
	logger := NewDefaultLoggerNoColor().WithFields(Fields{"a": 1}).(*DefaultLogger)

	msg := logger.formatMessage(InfoLevel, nil, "hello", Fields{"b": 2})
	require.Contains(t, msg, "[INFO] hello")
	require.Contains(t, msg, "a:1")
	require.Contains(t, msg, "b:2")
}

func TestFormatMessageIncludesError(t *testing.T) {
	logger := NewDefaultLoggerNoColor()

	msg := logger.formatMessage(ErrorLevel, errTest, "failed")
	require.Contains(t, msg, "[ERROR] failed: boom")
}

var errTest = &testError{}

type testError struct{}

func (*testError) Error() string { return "boom" }
