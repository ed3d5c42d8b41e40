package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/histolib/pkg/config"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "log output: %s", buf.String())
	return entry
}

func TestNewWithWriter(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantLevel zerolog.Level
	}{
		{"debug level", "debug", zerolog.DebugLevel},
		{"info level", "info", zerolog.InfoLevel},
		{"warn level", "warn", zerolog.WarnLevel},
		{"error level", "error", zerolog.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewWithWriter(&config.Config{Env: "development", LogLevel: tt.level, LogFormat: "json"}, &buf)
			require.NotNil(t, log)
			assert.Equal(t, tt.wantLevel, zerolog.GlobalLevel())
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"invalid", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.input))
		})
	}
}

func TestServiceAndEnvFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&config.Config{Env: "staging", LogLevel: "debug", LogFormat: "json"}, &buf)

	log.Info("booted")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "histolib", entry["service"])
	assert.Equal(t, "staging", entry["env"])
	assert.Equal(t, "booted", entry["message"])
}

func TestWithTickerAndFields(t *testing.T) {
	var buf bytes.Buffer
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log := &Logger{zlog: zerolog.New(&buf)}

	log.WithTicker("AAPL").WithFields(map[string]interface{}{
		"endpoint": "stats",
		"status":   503,
	}).Warn("fetch failed")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "AAPL", entry["ticker"])
	assert.Equal(t, "stats", entry["endpoint"])
	assert.Equal(t, float64(503), entry["status"])
	assert.Equal(t, "warn", entry["level"])
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	log := &Logger{zlog: zerolog.New(&buf)}

	log.WithError(errors.New("connection refused")).Error("tickers unavailable")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "connection refused", entry["error"])
	assert.Equal(t, "tickers unavailable", entry["message"])
}

func TestFormattedMethods(t *testing.T) {
	var buf bytes.Buffer
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log := &Logger{zlog: zerolog.New(&buf)}

	log.Infof("loaded %d of %d cards", 3, 4)

	entry := decodeLine(t, &buf)
	assert.Equal(t, "loaded 3 of 4 cards", entry["message"])
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&config.Config{Env: "development", LogLevel: "info", LogFormat: "console"}, &buf)

	log.Info("console message")

	assert.True(t, strings.Contains(buf.String(), "console message"))
}

func TestNop(t *testing.T) {
	log := Nop()
	assert.NotPanics(t, func() {
		log.WithTicker("X").Error("dropped")
	})
}
