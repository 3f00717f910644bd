package log

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
)

const (
	levelFlag  = "loglevel"
	formatFlag = "logformat"

	// SessionKey is the attribute every session-scoped line carries.
	SessionKey = "session"
)

func RegisterLoggingFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String(levelFlag, "warn", "set the log level (debug, info, warn, error)")
	cmd.PersistentFlags().String(formatFlag, "text", "set the log format (text, json)")
}

// GetBaseLogger builds a logger from the persistent flags writing to w.
func GetBaseLogger(cmd *cobra.Command, w io.Writer) (*slog.Logger, error) {
	level, err := GetLoggerLevel(cmd)
	if err != nil {
		return nil, err
	}

	format := "text"
	if flag := cmd.Flag(formatFlag); flag != nil {
		format = flag.Value.String()
	}

	return NewLogger(w, level, format)
}

func NewLogger(w io.Writer, level slog.Level, format string) (*slog.Logger, error) {
	options := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(w, options)
	case "text":
		handler = slog.NewTextHandler(w, options)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	return slog.New(handler), nil
}

func GetLoggerLevel(cmd *cobra.Command) (slog.Level, error) {
	raw := "warn"
	if flag := cmd.Flag(levelFlag); flag != nil {
		raw = flag.Value.String()
	}

	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelWarn, fmt.Errorf("invalid log level: %s", raw)
	}
}
