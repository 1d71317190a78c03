package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func env(vals map[string]string) func(string) string {
	return func(k string) string { return vals[k] }
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
		ok   bool
	}{
		{"", zerolog.InfoLevel, false},
		{"debug", zerolog.DebugLevel, true},
		{" WARNING ", zerolog.WarnLevel, true},
		{"off", zerolog.Disabled, true},
		{"loud", zerolog.InfoLevel, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseLevel(%q) = %v, %v", tt.in, got, ok)
		}
	}
}

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want zerolog.Level
	}{
		{"default", Options{}, zerolog.InfoLevel},
		{"verbose", Options{Verbose: true}, zerolog.DebugLevel},
		{"quiet wins", Options{Verbose: true, Quiet: true}, zerolog.ErrorLevel},
		{"env override", Options{Quiet: true, Getenv: env(map[string]string{EnvLogLevel: "trace"})}, zerolog.TraceLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Out = &bytes.Buffer{}
			if tt.opts.Getenv == nil {
				tt.opts.Getenv = env(nil)
			}
			if got := New(tt.opts).GetLevel(); got != tt.want {
				t.Errorf("level = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewWritesFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{NoColor: true, Out: &buf, Getenv: env(nil)})
	log.Warn().Str("file", "a.xbps").Str("tier", "local").Msg("skipping")

	out := buf.String()
	for _, want := range []string{"WRN", "skipping", "file=a.xbps", "tier=local"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestNewQuietSuppressesWarnings(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Quiet: true, NoColor: true, Out: &buf, Getenv: env(nil)})
	log.Warn().Msg("hidden")
	if buf.Len() != 0 {
		t.Errorf("quiet logger wrote %q", buf.String())
	}
}
