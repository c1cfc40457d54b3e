package console

import (
	"testing"

	"github.com/charmbracelet/log"
)

func TestLevelFromString(t *testing.T) {
	cases := map[string]log.Level{
		"DEBUG":   log.DebugLevel,
		"INFO":    log.InfoLevel,
		"WARNING": log.WarnLevel,
		"ERROR":   log.ErrorLevel,
		"":        log.InfoLevel,
		"bogus":   log.InfoLevel,
	}
	for in, want := range cases {
		if got := levelFromString(in); got != want {
			t.Errorf("levelFromString(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewConsoleLogger_DebugOverridesLevel(t *testing.T) {
	c := NewConsoleLogger(ConsoleLoggerParams{Debug: true, Level: "ERROR"})
	if c.logger.GetLevel() != log.DebugLevel {
		t.Fatalf("expected Debug=true to force DebugLevel regardless of Level, got %v", c.logger.GetLevel())
	}
}
