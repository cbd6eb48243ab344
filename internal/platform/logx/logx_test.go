// internal/platform/logx/logx_test.go
package logx

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"
)

func newBufferLogger(lvl Level) (*simpleLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	return &simpleLogger{
		lvl: lvl,
		lg:  log.New(&buf, "", 0),
	}, &buf
}

func TestNew(t *testing.T) {
	if New() == nil {
		t.Fatal("New() should return a logger, got nil")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"dbg", LevelDebug},
		{"info", LevelInfo},
		{"inf", LevelInfo},
		{"", LevelInfo},
		{"  info  ", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"err", LevelError},
		{"error", LevelError},
		{"ERROR", LevelError},
		{"garbage", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestKVPairs(t *testing.T) {
	tests := []struct {
		name     string
		input    []any
		expected []string
	}{
		{"empty input", []any{}, []string{}},
		{"single pair", []any{"key", "value"}, []string{"key=value"}},
		{"multiple pairs", []any{"k1", "v1", "k2", "v2"}, []string{"k1=v1", "k2=v2"}},
		{"odd number of elements", []any{"k1", "v1", "k2"}, []string{"k1=v1", "k2=(missing)"}},
		{"numeric values", []any{"count", 42, "enabled", true}, []string{"count=42", "enabled=true"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := kvPairs(tt.input...)
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %d pairs, got %d", len(tt.expected), len(got))
			}
			for i, exp := range tt.expected {
				if got[i] != exp {
					t.Errorf("pair %d = %q, expected %q", i, got[i], exp)
				}
			}
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(LevelWarn)

	logger.Debug("debug message")
	logger.Info("info message")
	if buf.Len() != 0 {
		t.Errorf("messages below level should be dropped, got %q", buf.String())
	}

	logger.Warn("warn message")
	if !strings.Contains(buf.String(), "WRN warn message") {
		t.Errorf("warn message should be logged, got %q", buf.String())
	}
}

func TestErr(t *testing.T) {
	logger, buf := newBufferLogger(LevelError)

	logger.Err(nil)
	if buf.Len() != 0 {
		t.Errorf("nil error should not be logged, got %q", buf.String())
	}

	logger.Err(errors.New("boom"), "source", "netlas")
	out := buf.String()
	if !strings.Contains(out, "ERR") {
		t.Errorf("error tag missing in %q", out)
	}
	if !strings.Contains(out, "error=boom") {
		t.Errorf("error field missing in %q", out)
	}
	if !strings.Contains(out, "source=netlas") {
		t.Errorf("extra fields missing in %q", out)
	}
}

func TestWith(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo)

	scoped := logger.With("component", "engine")
	scoped.Info("started", "workers", 4)

	out := buf.String()
	if !strings.Contains(out, "component=engine") {
		t.Errorf("scope field missing in %q", out)
	}
	if !strings.Contains(out, "workers=4") {
		t.Errorf("call field missing in %q", out)
	}

	// el scope no contamina al logger original
	buf.Reset()
	logger.Info("plain")
	if strings.Contains(buf.String(), "component=engine") {
		t.Errorf("original logger should not carry scope, got %q", buf.String())
	}
}

func TestSetLevel(t *testing.T) {
	logger, buf := newBufferLogger(LevelError)

	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info should be dropped at error level, got %q", buf.String())
	}

	logger.SetLevel(LevelDebug)
	logger.Debug("now visible")
	if !strings.Contains(buf.String(), "DBG now visible") {
		t.Errorf("debug message should be logged after SetLevel, got %q", buf.String())
	}
}

func TestNewSilent(t *testing.T) {
	logger := NewSilent()
	sl, ok := logger.(*simpleLogger)
	if !ok {
		t.Fatal("NewSilent should return a simpleLogger")
	}
	if sl.lvl != LevelError {
		t.Errorf("silent logger level = %v, expected LevelError", sl.lvl)
	}
}
