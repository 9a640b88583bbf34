package fluxgo

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with fluxgo-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithTrack adds a track field to the logger.
func (l *Logger) WithTrack(track int) *Logger {
	return &Logger{
		Logger: l.Logger.With("track", track),
	}
}

// WithRevolution adds a revolution field to the logger.
func (l *Logger) WithRevolution(rev int) *Logger {
	return &Logger{
		Logger: l.Logger.With("revolution", rev),
	}
}

// WithImage adds an image name field to the logger.
func (l *Logger) WithImage(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("image", name),
	}
}

// LogOpen logs an image open operation.
func (l *Logger) LogOpen(name string, tracks uint64, err error) {
	if err != nil {
		l.Error("open failed",
			"image", name,
			"error", err,
		)
	} else {
		l.Info("image opened",
			"image", name,
			"tracks_present", tracks,
		)
	}
}

// LogTrackDecoded logs a successfully decoded track.
func (l *Logger) LogTrackDecoded(track, revolution, halfbits int) {
	l.Debug("track decoded",
		"track", track,
		"revolution", revolution,
		"halfbits", halfbits,
	)
}

// LogTrackFilled logs a track substituted with filler.
func (l *Logger) LogTrackFilled(track int, reason error) {
	if reason != nil {
		l.Debug("track filled",
			"track", track,
			"reason", reason,
		)
	} else {
		l.Debug("track filled",
			"track", track,
		)
	}
}

// LogDecode logs a whole-image decode operation.
func (l *Logger) LogDecode(revolution, decoded, filled int, err error) {
	if err != nil {
		l.Error("decode failed",
			"revolution", revolution,
			"decoded", decoded,
			"filled", filled,
			"error", err,
		)
	} else {
		l.Info("decode completed",
			"revolution", revolution,
			"decoded", decoded,
			"filled", filled,
		)
	}
}
