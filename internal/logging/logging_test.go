package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogFilePath(t *testing.T) {
	sessionStart := time.Date(2026, 2, 12, 21, 38, 36, 0, time.UTC)

	tests := []struct {
		name    string
		logsDir string
		appName string
		want    string
	}{
		{
			name:    "basic path",
			logsDir: "logs",
			appName: "apexsim",
			want:    filepath.Join("logs", "apexsim.20260212_213836.log"),
		},
		{
			name:    "relative path with dot",
			logsDir: "./logs",
			appName: "apexsim",
			want:    filepath.Join(".", "logs", "apexsim.20260212_213836.log"),
		},
		{
			name:    "absolute path",
			logsDir: filepath.Join("/var", "log", "apexsim"),
			appName: "apexsim",
			want:    filepath.Join("/var", "log", "apexsim", "apexsim.20260212_213836.log"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LogFilePath(tt.logsDir, tt.appName, sessionStart)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"Info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"ERROR", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), "level %q", tt.in)
	}
}

func TestSetup_CreatesSessionLogFile(t *testing.T) {
	dir := t.TempDir()
	logsDir := filepath.Join(dir, "logs")

	logger, closeFn, err := Setup(Options{
		Level:   "debug",
		LogsDir: logsDir,
		AppName: "apexsim",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeFn() })

	logger.Info().Str("component", "test").Msg("hello from setup")
	require.NoError(t, closeFn())

	entries, err := os.ReadDir(logsDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "apexsim."))
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".log"))

	content, err := os.ReadFile(filepath.Join(logsDir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(content), "hello from setup")
}

func TestSetup_GraylogFailureDegrades(t *testing.T) {
	dir := t.TempDir()

	// An unresolvable address must not fail Setup.
	_, closeFn, err := Setup(Options{
		Level:          "info",
		LogsDir:        dir,
		AppName:        "apexsim",
		GraylogEnabled: true,
		GraylogAddress: "invalid-host-name-for-test:0",
	})
	require.NoError(t, err)
	require.NoError(t, closeFn())
}

func TestSampledTrace_DerivedLoggerStillLogs(t *testing.T) {
	var sb strings.Builder
	base := zerolog.New(&sb)

	sampled := SampledTrace(base)
	sampled.Info().Msg("first entry inside burst")

	assert.Contains(t, sb.String(), "first entry inside burst")
	assert.Contains(t, sb.String(), `"sampled":true`)
}
