// Package logging wires log/slog for the API and the seeder: a text console handler plus
// an optional JSON rotating file, and package-level helpers that work before init.
package logging

import (
	"log/slog"
	"os"

	"github.com/giygas/nlem-api/config"
)

// Options controls InitLogger
type Options struct {
	LogDir         string // empty disables file logging
	Env            config.Environment
	Level          string
	Verbose        bool
	RetentionWeeks int
	MaxFileSize    int64
}

type LoggingService struct {
	Logger   *slog.Logger
	Rotating *RotatingLogger
}

var DefaultLoggingService *LoggingService

// InitLogger initializes the global logger instance and makes it the slog default
func InitLogger(opts Options) *LoggingService {
	consoleHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: GetConsoleLogLevel(opts.Env, opts.Level, opts.Verbose),
	})

	service := &LoggingService{Logger: slog.New(consoleHandler)}

	if opts.LogDir != "" {
		if err := os.MkdirAll(opts.LogDir, 0755); err != nil {
			service.Logger.Error("Failed to create logs directory, logging to console only", "error", err)
		} else {
			retention := opts.RetentionWeeks
			if retention <= 0 {
				retention = 4
			}
			service.Rotating = NewRotatingLogger(opts.LogDir, retention, opts.MaxFileSize)
			fileHandler := slog.NewJSONHandler(service.Rotating, &slog.HandlerOptions{
				Level: GetFileLogLevel(),
			})
			service.Logger = slog.New(&multiHandler{
				handlers: []slog.Handler{consoleHandler, fileHandler},
			})
		}
	}

	DefaultLoggingService = service
	slog.SetDefault(service.Logger)
	return service
}

// Close flushes and closes the rotating file, if any
func (s *LoggingService) Close() error {
	if s == nil || s.Rotating == nil {
		return nil
	}
	return s.Rotating.Close()
}

func logger() *slog.Logger {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return DefaultLoggingService.Logger
}

// DefaultLogger returns the initialized logger, or a stderr logger before InitLogger runs
func DefaultLogger() *slog.Logger {
	return logger()
}

// Package-level functions for direct access

func Info(msg string, args ...any) {
	logger().Info(msg, args...)
}

func Error(msg string, args ...any) {
	logger().Error(msg, args...)
}

func Warn(msg string, args ...any) {
	logger().Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	logger().Debug(msg, args...)
}
