package logger

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewWithWriterEmitsJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "info", "test-svc")

	l.Info("hello", "k", "v")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if record["msg"] != "hello" || record["service"] != "test-svc" || record["k"] != "v" {
		t.Errorf("unexpected record: %v", record)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "warn", "test-svc")

	l.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info record should be filtered at warn level: %s", buf.String())
	}

	l.Warn("kept")
	if buf.Len() == 0 {
		t.Error("warn record should pass at warn level")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"debug", "DEBUG"},
		{"info", "INFO"},
		{"warn", "WARN"},
		{"warning", "WARN"},
		{"error", "ERROR"},
		{"unknown", "INFO"},
		{"", "INFO"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseLevel(tt.input).String()
			if got != tt.want {
				t.Errorf("parseLevel(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}
