package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type Config struct {
	DataDir string
	Verbose bool
}

// Init initializes the global slog logger.
// Logs go to dataDir/resume-tailor.log unless Verbose is set, in which case
// they go to stderr. LOG_FILE overrides the file path.
// The returned closer releases the log file, if any.
func Init(cfg Config) io.Closer {
	level := parseLevel(os.Getenv("LOG_LEVEL"))
	if cfg.Verbose && os.Getenv("LOG_LEVEL") == "" {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var w io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}

	logFile := os.Getenv("LOG_FILE")
	if logFile == "" && !cfg.Verbose && cfg.DataDir != "" {
		logFile = filepath.Join(cfg.DataDir, "resume-tailor.log")
	}

	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
			slog.Error("failed to create log directory, using stderr only", "file", logFile, "error", err)
		} else {
			f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				slog.Error("failed to open log file, using stderr only", "file", logFile, "error", err)
			} else {
				w = f
				closer = f
			}
		}
	}

	var handler slog.Handler
	if os.Getenv("LOG_FORMAT") == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
	return closer
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewSubmissionLogger creates a logger tagged with a unique submissionId.
func NewSubmissionLogger() *slog.Logger {
	return slog.With("submissionId", uuid.Must(uuid.NewV7()).String())
}

// NewRequestLogger creates a logger with a unique requestId for HTTP handlers.
func NewRequestLogger() *slog.Logger {
	return slog.With("requestId", uuid.Must(uuid.NewV7()).String())
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
