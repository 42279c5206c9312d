package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		verbose bool
		want    zerolog.Level
	}{
		{name: "empty defaults to warn", level: "", want: zerolog.WarnLevel},
		{name: "config level", level: "INFO", want: zerolog.InfoLevel},
		{name: "garbage defaults to warn", level: "loud", want: zerolog.WarnLevel},
		{name: "verbose wins", level: "error", verbose: true, want: zerolog.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(&bytes.Buffer{}, tt.level, tt.verbose)
			if got := l.GetLevel(); got != tt.want {
				t.Errorf("level = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewWritesToWriter(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "", true)
	l.Debug().Str("path", "/api/token/").Msg("trying login endpoint")

	out := buf.String()
	if !strings.Contains(out, "trying login endpoint") || !strings.Contains(out, "/api/token/") {
		t.Fatalf("unexpected log output %q", out)
	}
}
