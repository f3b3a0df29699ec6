// Package logging builds the logger handed to every component. The level
// is fixed at construction from the --debug flag; nothing mutates global
// logging state afterwards.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const debugLogName = "cai_debug.log"

// New returns a logger writing human-readable output to stderr. When debug
// is enabled, output is duplicated to a rotating log file under logDir so
// request/response detail survives the terminal session. An empty logDir
// disables the file sink.
func New(debug bool, logDir string) zerolog.Logger {
	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}

	level := zerolog.InfoLevel
	var out io.Writer = console
	if debug {
		level = zerolog.DebugLevel
		if logDir != "" {
			out = zerolog.MultiLevelWriter(console, &lumberjack.Logger{
				Filename:   filepath.Join(logDir, debugLogName),
				MaxSize:    5, // MB
				MaxBackups: 2,
			})
		}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
