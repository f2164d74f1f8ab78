package app

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLogger_LevelFiltering(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	var buf bytes.Buffer
	logger := newLogger("warn", "text", &buf)

	// --- Act ---
	logger.Info("info message")
	logger.Warn("warn message")

	// --- Assert ---
	require.NotContains(t, buf.String(), "info message")
	require.Contains(t, buf.String(), "warn message")
}

func TestNewLogger_JSONFormat(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	var buf bytes.Buffer
	logger := newLogger("info", "json", &buf)

	// --- Act ---
	logger.Info("structured", "component", "cart")

	// --- Assert ---
	require.Contains(t, buf.String(), `"msg":"structured"`)
	require.Contains(t, buf.String(), `"component":"cart"`)
}

func TestNewLogger_UnknownLevelDefaultsToInfo(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	var buf bytes.Buffer
	logger := newLogger("chatty", "text", &buf)

	// --- Act ---
	logger.Debug("debug message")
	logger.Info("info message")

	// --- Assert ---
	require.NotContains(t, buf.String(), "debug message")
	require.Contains(t, buf.String(), "info message")
}
