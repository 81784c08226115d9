package utils

import (
	"io"
	"os"
	"path/filepath"

	"github.com/arducam/jetson-io/internal/constants"
	"github.com/rs/zerolog"
)

// Log is the process wide logger. It discards everything until SetLogger is called.
var Log = zerolog.Nop()

// SetLogger configures Log to write to stderr and, when possible, to a log file under logDir.
func SetLogger(debug bool, logDir string) {
	level := zerolog.InfoLevel
	if debug || os.Getenv("JETSON_IO_DEBUG") != "" {
		level = zerolog.DebugLevel
	}
	if logDir == "" {
		logDir = constants.LogDir
	}

	writers := []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr}}
	if err := os.MkdirAll(logDir, os.ModeDir|0o755); err == nil {
		f, err := os.OpenFile(filepath.Join(logDir, "jetson-io.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err == nil {
			writers = append(writers, f)
		}
	}

	Log = zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level).With().Timestamp().Logger()
}
