package logger

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestNewLevelFromEnv(t *testing.T) {
	tests := []struct {
		env  string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.env)
			if got := New().GetLevel(); got != tt.want {
				t.Errorf("LOG_LEVEL=%q: got %v, want %v", tt.env, got, tt.want)
			}
		})
	}
}

func TestNewUsesUnixTimestamps(t *testing.T) {
	zerolog.TimeFieldFormat = "2006"
	New()
	if zerolog.TimeFieldFormat != zerolog.TimeFormatUnix {
		t.Errorf("expected unix timestamps, got %q", zerolog.TimeFieldFormat)
	}
}
