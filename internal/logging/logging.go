package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/rs/zerolog"
)

// LogFilePath builds a log file path using OS-appropriate path separators.
func LogFilePath(logsDir, appName string, sessionStart time.Time) string {
	return filepath.Join(
		logsDir,
		fmt.Sprintf("%s.%s.log", appName, sessionStart.Format("20060102_150405")),
	)
}

// ParseLevel converts a config log level name to a zerolog level.
// Unknown names fall back to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToUpper(level) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Options configure Setup. A zero SessionStart stamps the log file
// with the current time.
type Options struct {
	Level          string
	LogsDir        string
	AppName        string
	SessionStart   time.Time
	GraylogEnabled bool
	GraylogAddress string
}

// Setup configures the global log level and returns a logger fanned out to
// the console and a per-session log file, with colors on the console only.
// The returned close func releases the log file. When Graylog shipping is
// enabled the GELF writer joins the fan-out; a Graylog connection failure
// only degrades to local logging, it never fails Setup.
func Setup(opts Options) (zerolog.Logger, func() error, error) {
	zerolog.SetGlobalLevel(ParseLevel(opts.Level))
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}

	if err := os.MkdirAll(opts.LogsDir, 0o755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("creating logs dir: %w", err)
	}
	sessionStart := opts.SessionStart
	if sessionStart.IsZero() {
		sessionStart = time.Now().UTC()
	}
	file, err := os.OpenFile(
		LogFilePath(opts.LogsDir, opts.AppName, sessionStart),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND,
		0o644,
	)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("opening log file: %w", err)
	}

	writers := []io.Writer{
		zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		},
		zerolog.ConsoleWriter{
			Out:        file,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		},
	}

	var graylogErr error
	if opts.GraylogEnabled {
		gelfWriter, err := gelf.NewWriter(opts.GraylogAddress)
		if err != nil {
			graylogErr = err
		} else {
			writers = append(writers, gelfWriter)
		}
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().Timestamp().Logger()
	if graylogErr != nil {
		logger.Warn().Err(graylogErr).
			Str("address", opts.GraylogAddress).
			Msg("Graylog unreachable, continuing with local logging only")
	}

	return logger, file.Close, nil
}

// SampledTrace derives a trace logger that bursts up to 5 entries per 10
// seconds and then samples 1 in 100, for use inside per-point loops.
func SampledTrace(logger zerolog.Logger) zerolog.Logger {
	return logger.With().Bool("sampled", true).Logger().
		Sample(&zerolog.BurstSampler{
			Burst:       5,
			Period:      10 * time.Second,
			NextSampler: &zerolog.BasicSampler{N: 100},
		})
}
