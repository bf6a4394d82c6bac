package lib

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
)

func ParseSLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(s))
	return level, err
}

func shortSource(groups []string, a slog.Attr) slog.Attr {
	// https://www.reddit.com/r/golang/comments/15nwnkl/achieve_lshortfile_with_slog/jy8emik/
	if a.Key == slog.SourceKey {
		source, _ := a.Value.Any().(*slog.Source)
		if source != nil {
			source.File = filepath.Base(source.File)
		}
	}
	return a
}

func NiceLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		AddSource:   true,
		Level:       &level,
		ReplaceAttr: shortSource,
	}))
}

// JSONLogger is NiceLogger for log collectors.
func JSONLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource:   true,
		Level:       &level,
		ReplaceAttr: shortSource,
	}))
}

// NewLogger parses level and picks the handler by format, "text" or "json".
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, err := ParseSLogLevel(level)
	if err != nil {
		return nil, err
	}
	switch format {
	case "", "text":
		return NiceLogger(w, lvl), nil
	case "json":
		return JSONLogger(w, lvl), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}
