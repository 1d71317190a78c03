// Package logging builds the zerolog logger shared by the CLI and engines.
package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	EnvLogLevel     = "VUP_LOG_LEVEL"
	EnvLogNoColor   = "VUP_LOG_NOCOLOR"
	EnvLogTimestamp = "VUP_LOG_TIMESTAMP"
)

// Options selects the logger's verbosity and output.
type Options struct {
	Verbose bool
	Quiet   bool
	NoColor bool
	// Out defaults to os.Stderr.
	Out io.Writer
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// New returns a console logger. Quiet wins over Verbose; the VUP_LOG_*
// variables override both.
func New(opts Options) zerolog.Logger {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	level := zerolog.InfoLevel
	switch {
	case opts.Quiet:
		level = zerolog.ErrorLevel
	case opts.Verbose:
		level = zerolog.DebugLevel
	}
	if lvl, ok := ParseLevel(getenv(EnvLogLevel)); ok {
		level = lvl
	}

	noColor := opts.NoColor
	if v, ok := parseBool(getenv(EnvLogNoColor)); ok {
		noColor = v
	}
	timestamp := false
	if v, ok := parseBool(getenv(EnvLogTimestamp)); ok {
		timestamp = v
	}

	cw := zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    noColor,
		TimeFormat: time.RFC3339,
	}
	if !timestamp {
		cw.PartsExclude = []string{zerolog.TimestampFieldName}
	}

	ctx := zerolog.New(cw).Level(level).With()
	if timestamp {
		ctx = ctx.Timestamp()
	}
	return ctx.Logger()
}

// ParseLevel maps a level name to a zerolog level.
func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
