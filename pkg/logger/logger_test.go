package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerFunctions_NoLoggerIsSafe(t *testing.T) {
	logger = nil

	assert.NotPanics(t, func() {
		Debug("test debug", "key", "value")
		Info("test info", "key", "value")
		Warn("test warn", "key", "value")
		Error("test error", "key", "value")
	})
}

func TestSetOutputWritesKeyValues(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, Options{Level: "info"})

	Info("Fetched notifications", "count", 3, "unread", 2)

	out := buf.String()
	assert.Contains(t, out, "Fetched notifications")
	assert.Contains(t, out, "count=3")
	assert.Contains(t, out, "unread=2")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, Options{Level: "warn"})

	Info("hidden")
	Debug("hidden too")
	Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestVerboseForcesDebug(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, Options{Level: "error", Verbose: true})

	Debug("poll tick", "state", "polling")

	assert.Contains(t, buf.String(), "poll tick")
	assert.Equal(t, log.DebugLevel, GetLogger().GetLevel())
}

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		in     string
		expect log.Level
	}{
		{"debug", log.DebugLevel},
		{"INFO", log.InfoLevel},
		{"warning", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"", log.InfoLevel},
		{"nonsense", log.InfoLevel},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.expect, parseLevel(tc.in, false))
		})
	}
}

func TestSetupWritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leaders-cli.log")
	Setup(Options{Level: "info", File: path})

	Info("written to file", "path", path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}
