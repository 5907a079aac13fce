package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/logutils"
)

// Levels are ordered from most to least verbose. Log lines select their
// level with a bracketed prefix such as "[WARN]".
var Levels = []logutils.LogLevel{"DEBUG", "INFO", "WARN", "ERROR"}

const DefaultLevel = "INFO"

func ParseLevel(s string) (logutils.LogLevel, error) {
	lvl := logutils.LogLevel(strings.ToUpper(strings.TrimSpace(s)))
	if lvl == "" {
		return DefaultLevel, nil
	}
	for _, known := range Levels {
		if lvl == known {
			return lvl, nil
		}
	}
	return "", fmt.Errorf("logging: unknown level %q", s)
}

// New returns a logger that drops lines below level.
func New(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	filter := &logutils.LevelFilter{
		Levels:   Levels,
		MinLevel: lvl,
		Writer:   w,
	}
	return log.New(filter, "remindd ", log.LstdFlags|log.Lshortfile), nil
}

// OpenFile appends to path, creating its directory, and returns a filtered
// logger over it. The caller closes the returned file.
func OpenFile(path, level string) (*log.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	fh, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger, err := New(fh, level)
	if err != nil {
		_ = fh.Close()
		return nil, nil, err
	}
	return logger, fh, nil
}

// Discard is a logger for code paths that must not write anywhere.
func Discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}
