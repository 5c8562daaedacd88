package runtime

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, LogLevelWarn)

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message")
	l.Error("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("expected debug/info to be suppressed at LogLevelWarn, got: %s", out)
	}
	if !strings.Contains(out, "warn message") || !strings.Contains(out, "error message") {
		t.Errorf("expected warn/error to appear at LogLevelWarn, got: %s", out)
	}
}

func TestLoggerSetLevelChangesThreshold(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, LogLevelError)
	l.Info("should be suppressed")
	if strings.Contains(buf.String(), "should be suppressed") {
		t.Fatal("expected info to be suppressed at LogLevelError")
	}

	l.SetLevel(LogLevelInfo)
	if l.GetLevel() != LogLevelInfo {
		t.Fatalf("GetLevel() = %v, want LogLevelInfo", l.GetLevel())
	}
	l.Info("should now appear")
	if !strings.Contains(buf.String(), "should now appear") {
		t.Fatal("expected info to appear after SetLevel(LogLevelInfo)")
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug": LogLevelDebug,
		"WARN":  LogLevelWarn,
		"Error": LogLevelError,
		"off":   LogLevelOff,
	}
	for in, want := range cases {
		got, err := ParseLogLevel(in)
		if err != nil {
			t.Fatalf("ParseLogLevel(%q) returned error: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseLogLevel("bogus"); err == nil {
		t.Fatal("expected an error for an unknown log level")
	}
}
