package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/de-tools/soc-atlas/pkg/services/config"
	"github.com/rs/zerolog"
)

// New builds the root logger writing to w at the configured level.
// debug forces the debug level regardless of the config.
func New(cfg config.LogConfig, w io.Writer, debug bool) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// OpenFile opens the log file used by full screen commands, which cannot write to the terminal.
func OpenFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return f, nil
}
