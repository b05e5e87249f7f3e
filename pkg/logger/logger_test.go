package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{TraceLevel, "TRACE"},
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{Level(999), "UNKNOWN"}, // Invalid level
	}

	for _, test := range tests {
		if result := test.level.String(); result != test.expected {
			t.Errorf("Level.String() = %v, expected %v", result, test.expected)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		level Level
		ok    bool
	}{
		{"trace", TraceLevel, true},
		{"DEBUG", DebugLevel, true},
		{" info ", InfoLevel, true},
		{"warning", WarnLevel, true},
		{"error", ErrorLevel, true},
		{"loud", InfoLevel, false},
		{"", InfoLevel, false},
	}

	for _, tt := range tests {
		level, ok := ParseLevel(tt.input)
		if level != tt.level || ok != tt.ok {
			t.Errorf("ParseLevel(%q) = (%v, %v), expected (%v, %v)", tt.input, level, ok, tt.level, tt.ok)
		}
	}
}

func TestInitialize(t *testing.T) {
	original := defaultLogger
	t.Cleanup(func() { defaultLogger = original })

	if err := Initialize(Config{Level: InfoLevel, Component: "test"}); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}
	if defaultLogger == nil {
		t.Fatal("Initialize() did not set defaultLogger")
	}
	if defaultLogger.config.Component != "test" {
		t.Errorf("Initialize() did not set config correctly, got component: %s", defaultLogger.config.Component)
	}

	if err := Initialize(Config{Level: Level(42)}); err == nil {
		t.Error("Initialize() with invalid level should fail")
	}
}

func TestLoggerPrettyFormatting(t *testing.T) {
	l := New(Config{Level: InfoLevel, Component: "ncbisort", Output: &bytes.Buffer{}})

	entry := LogEntry{
		Time:      time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		Level:     "INFO",
		Message:   "Sorted download",
		Component: "ncbisort",
		Fields:    map[string]interface{}{"target": "/out", "accessions": 3, "bytes": "12 MB"},
	}

	result := l.formatPretty(entry)
	expected := "2025-01-01 12:00:00 [INFO] ncbisort: Sorted download {accessions=3, bytes=12 MB, target=/out}"
	if result != expected {
		t.Errorf("formatPretty() = %q\nexpected %q", result, expected)
	}
}

func TestLoggerPrettyColor(t *testing.T) {
	l := New(Config{Level: InfoLevel, UseColor: true, Output: &bytes.Buffer{}})
	result := l.formatPretty(LogEntry{Time: time.Now(), Level: "WARN", Message: "careful"})
	if !strings.Contains(result, "\033[33mWARN\033[0m") {
		t.Errorf("formatPretty() missing colored level: %q", result)
	}
}

func TestLoggerJSONFormatting(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{
		Level:     InfoLevel,
		JSON:      true,
		Component: "test",
		Output:    &buf,
		Fields:    []Field{String("run_id", "abc")},
	})

	l.Log(InfoLevel, "test message", String("key", "value"))

	output := strings.TrimSpace(buf.String())
	var parsed LogEntry
	if err := json.Unmarshal([]byte(output), &parsed); err != nil {
		t.Fatalf("Log() produced invalid JSON: %v\nOutput: %s", err, output)
	}
	if parsed.Message != "test message" {
		t.Errorf("Parsed JSON message = %v, expected 'test message'", parsed.Message)
	}
	if parsed.Level != "INFO" {
		t.Errorf("Parsed JSON level = %v, expected 'INFO'", parsed.Level)
	}
	if parsed.Fields["key"] != "value" || parsed.Fields["run_id"] != "abc" {
		t.Errorf("Parsed JSON fields = %v", parsed.Fields)
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: WarnLevel, Output: &buf})

	l.Log(InfoLevel, "info message")
	l.Log(DebugLevel, "debug message")
	l.Log(WarnLevel, "warn message")
	l.Log(ErrorLevel, "error message")

	output := buf.String()
	for _, hidden := range []string{"info message", "debug message"} {
		if strings.Contains(output, hidden) {
			t.Errorf("%q should be filtered out", hidden)
		}
	}
	for _, shown := range []string{"warn message", "error message"} {
		if !strings.Contains(output, shown) {
			t.Errorf("%q should appear", shown)
		}
	}
}

func TestLoggerCallerForDebug(t *testing.T) {
	var buf bytes.Buffer
	original := defaultLogger
	defaultLogger = New(Config{Level: TraceLevel, Output: &buf})
	t.Cleanup(func() { defaultLogger = original })

	Debug("with caller")
	if !strings.Contains(buf.String(), "logger_test.go:") {
		t.Errorf("Debug() output missing caller: %s", buf.String())
	}
}

func TestFieldConstructors(t *testing.T) {
	if f := String("key", "value"); f.Key != "key" || f.Value != "value" {
		t.Errorf("String() = %+v", f)
	}
	if f := Int("count", 42); f.Key != "count" || f.Value != 42 {
		t.Errorf("Int() = %+v", f)
	}
	if f := Int64("bytes", 1<<40); f.Value != int64(1<<40) {
		t.Errorf("Int64() = %+v", f)
	}
	if f := Bool("enabled", true); f.Value != true {
		t.Errorf("Bool() = %+v", f)
	}
	if f := Err(errors.New("test error")); f.Key != "error" || f.Value != "test error" {
		t.Errorf("Err() = %+v", f)
	}
}

func TestConvenienceFunctions(t *testing.T) {
	original := defaultLogger
	t.Cleanup(func() { defaultLogger = original })

	var buf bytes.Buffer
	if err := Initialize(Config{Level: InfoLevel, Component: "test", Output: &buf}); err != nil {
		t.Fatal(err)
	}

	Info("test info message")
	Debug("test debug message")
	Trace("test trace message")
	Warn("test warn message")
	Error("test error message")

	output := buf.String()
	if !strings.Contains(output, "test info message") || !strings.Contains(output, "test error message") {
		t.Errorf("convenience functions did not produce expected output: %s", output)
	}
	if strings.Contains(output, "test debug message") {
		t.Errorf("Debug() should be filtered at info level: %s", output)
	}
}

func TestUninitializedLogger(t *testing.T) {
	original := defaultLogger
	defaultLogger = nil
	t.Cleanup(func() { defaultLogger = original })

	// None of these may panic without a logger.
	Trace("x")
	Debug("x")
	Info("x")
	Warn("x")
}
