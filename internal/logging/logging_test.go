package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestNewJSONLoggerHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "warn", Format: "json"}, &buf)

	logger.Info().Msg("hidden")
	logger.Warn().Str("component", "test").Msg("shown")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected exactly one json entry, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "shown" || entry["level"] != "warn" {
		t.Fatalf("unexpected entry %#v", entry)
	}
}

func TestForPassAddsID(t *testing.T) {
	var buf bytes.Buffer
	id := uuid.New()
	passLogger := ForPass(New(Config{}, &buf), id)
	passLogger.Info().Msg("pass")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if entry["pass_id"] != id.String() {
		t.Fatalf("pass_id missing: %#v", entry)
	}
}
