package brainstate

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"brainstate/eeg"
)

// ParseLevel maps debug, info, warn or error to a slog level. An empty
// name is info.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if name == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.ToUpper(name))); err != nil {
		return 0, eeg.ConfigError("unknown log level %q", name)
	}
	return level, nil
}

// NewLogger builds a JSON logger writing to w with local, second
// resolution timestamps.
func NewLogger(w io.Writer, level slog.Level, source bool) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceTimeAttr,
		AddSource:   source,
	})
	return slog.New(handler)
}

// InitLogger installs a JSON logger on stderr as the slog default and
// returns it.
func InitLogger(level string, source bool) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logger := NewLogger(os.Stderr, lvl, source)
	slog.SetDefault(logger)
	logger.Debug("logger initialized", slog.String("level", lvl.String()))
	return logger, nil
}

func replaceTimeAttr(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey && len(groups) == 0 {
		return slog.String("time", a.Value.Time().Local().Format("2006-01-02 15:04:05"))
	}
	return a
}
