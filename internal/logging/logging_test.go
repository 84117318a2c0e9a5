package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, zerolog.InfoLevel, FormatJSON)

	logger.Debug().Msg("hidden")
	logger.Info().Int("keypoints", 4).Msg("detected")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["message"] != "detected" {
		t.Errorf("message: got %v, want detected", entry["message"])
	}
	if entry["keypoints"] != float64(4) {
		t.Errorf("keypoints: got %v, want 4", entry["keypoints"])
	}
	if _, ok := entry["time"]; !ok {
		t.Error("missing timestamp")
	}
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, zerolog.DebugLevel, FormatConsole)
	logger.Debug().Str("stage", "match").Msg("done")

	out := buf.String()
	if strings.HasPrefix(out, "{") {
		t.Errorf("console output looks like JSON: %q", out)
	}
	if !strings.Contains(out, "done") || !strings.Contains(out, "stage=match") {
		t.Errorf("unexpected console output: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"loud", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvLevel, "warn")
	t.Setenv(EnvFormat, "json")

	var buf bytes.Buffer
	logger := FromEnv(&buf)
	logger.Info().Msg("quiet")
	logger.Warn().Msg("loud")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Error("info message logged at warn level")
	}
	if !strings.Contains(out, "loud") {
		t.Error("warn message missing")
	}
	if ParseFormat("Console") != FormatConsole || ParseFormat("xml") != FormatJSON {
		t.Error("ParseFormat mismatch")
	}
}
