// Package logging builds the slog logger used by the gocalc binaries.
package logging

import (
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/njchilds90/gocalc/internal/config"
)

// New returns a logger writing to w and, when conf.File is set, to a
// rotating log file as well.
func New(conf config.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     LevelFromString(conf.Level),
		AddSource: conf.IncludeSrc,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.SourceKey {
				source, _ := a.Value.Any().(*slog.Source)
				if source != nil {
					source.File = filepath.Base(source.File)
					source.Function = strings.TrimPrefix(source.Function, "github.com/njchilds90/gocalc")
				}
			}
			return a
		},
	}

	if conf.File != "" {
		logTarget := &lumberjack.Logger{
			Filename:   conf.File,
			MaxSize:    conf.MaxSize, // megabytes
			MaxAge:     conf.MaxAge,  // days
			MaxBackups: conf.MaxBackups,
			Compress:   conf.Compress,
		}
		w = io.MultiWriter(w, logTarget)
	}

	var handler slog.Handler
	if conf.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Init builds the logger with New and installs it as the slog default.
func Init(conf config.LogConfig, w io.Writer) *slog.Logger {
	logger := New(conf, w)
	slog.SetDefault(logger)
	return logger
}

// LevelFromString maps a level name to a slog level. Unknown names are info.
func LevelFromString(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
