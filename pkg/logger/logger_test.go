package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
	if Named("test") == nil {
		t.Fatal("named logger is nil")
	}
}

func TestLoggerJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWith(Options{Format: "json", Output: &buf}); err != nil {
		t.Fatalf("failed to initialize json logger: %v", err)
	}
	Get().Warn(context.Background(), "skipped records", Int("skipped", 2), Bool("dropped", false))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not json: %v (%s)", err, buf.String())
	}
	if entry["msg"] != "skipped records" {
		t.Errorf("unexpected msg: %v", entry["msg"])
	}
	if entry["skipped"] != float64(2) {
		t.Errorf("unexpected skipped field: %v", entry["skipped"])
	}
	source, _ := entry["source"].(string)
	if !strings.Contains(source, "logger_test.go:") {
		t.Errorf("source should point at the call site, got %q", source)
	}
	if _, ok := entry["request_id"]; ok {
		t.Error("request_id should be absent without one in the context")
	}
}

func TestLoggerRequestID(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWith(Options{Format: "json", Output: &buf}); err != nil {
		t.Fatalf("failed to initialize json logger: %v", err)
	}
	ctx := ContextWithRequestID(context.Background(), "req-1")
	if RequestID(ctx) != "req-1" {
		t.Fatalf("request id not carried by context")
	}
	Named("api").Info(ctx, "served")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not json: %v (%s)", err, buf.String())
	}
	group, _ := entry["api"].(map[string]any)
	if group["request_id"] != "req-1" {
		t.Errorf("expected request_id in named group, got %v", entry)
	}
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWith(Options{Output: &buf}); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	if err := SetLevelString("warn"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = SetLevelString("info") }()

	Get().Info(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Errorf("info should be filtered at warn level, got %q", buf.String())
	}
	Get().Error(context.Background(), "shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("error should pass at warn level, got %q", buf.String())
	}
	if err := SetLevelString("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
	if err := InitWith(Options{Format: "xml"}); err == nil {
		t.Error("expected error for unknown format")
	}
}
