package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAuditLoggerEmit(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := NewAuditLogger("test", WithoutStdout(), WithWriter(buf))
	if err != nil {
		t.Fatalf("NewAuditLogger: %v", err)
	}

	event := AuditEvent{EventType: EventCrackRequest, Cipher: "caesar", Decision: DecisionAllow}
	if err := logger.Emit(event); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	var decoded AuditEvent
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}

	if decoded.Component != "test" {
		t.Fatalf("expected component 'test', got %q", decoded.Component)
	}
	if decoded.EventType != EventCrackRequest {
		t.Fatalf("expected event type %q, got %q", EventCrackRequest, decoded.EventType)
	}
	if decoded.Cipher != "caesar" {
		t.Fatalf("expected cipher caesar, got %q", decoded.Cipher)
	}
	if decoded.Decision != DecisionAllow {
		t.Fatalf("expected decision %q, got %q", DecisionAllow, decoded.Decision)
	}
	if decoded.Timestamp.IsZero() {
		t.Fatalf("expected timestamp to be set")
	}
}

func TestAuditLoggerRedactsMetadata(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := MustNewAuditLogger("api", WithoutStdout(), WithWriter(buf))

	err := logger.Emit(AuditEvent{
		EventType: EventEncrypt,
		Metadata: map[string]any{
			"key":  "LEMON",
			"text": strings.Repeat("x", 500),
		},
		Reason: "Bearer abcdefghijklmnop rejected",
	})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	out := buf.String()
	if strings.Contains(out, "LEMON") {
		t.Fatalf("key leaked into audit log: %s", out)
	}
	if strings.Contains(out, strings.Repeat("x", 100)) {
		t.Fatalf("text was not truncated: %s", out)
	}
	if strings.Contains(out, "abcdefghijklmnop") {
		t.Fatalf("bearer token leaked into audit log: %s", out)
	}
}

func TestAuditLoggerWithComponentSharesWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	root := MustNewAuditLogger("root", WithoutStdout(), WithWriter(buf))
	child := root.WithComponent("rpc")

	if err := child.Emit(AuditEvent{EventType: EventDetect}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if !strings.Contains(buf.String(), `"component":"rpc"`) {
		t.Fatalf("expected child component in output, got %s", buf.String())
	}
	if err := child.Close(); err != nil {
		t.Fatalf("closing a derived logger should be a no-op: %v", err)
	}
}

func TestAuditLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	logger, err := NewAuditLogger("file", WithoutStdout(), WithFile(path))
	if err != nil {
		t.Fatalf("NewAuditLogger: %v", err)
	}
	if err := logger.Emit(AuditEvent{EventType: EventServerLifecycle, Reason: "started"}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read audit file: %v", err)
	}
	if !strings.Contains(string(data), `"event_type":"server_lifecycle"`) {
		t.Fatalf("unexpected audit file contents %s", data)
	}
}

func TestAuditLoggerRequiresWriter(t *testing.T) {
	if _, err := NewAuditLogger("none", WithoutStdout()); err == nil {
		t.Fatal("expected error without any writer")
	}
	if _, err := NewAuditLogger("bad", WithFile("  ")); err == nil {
		t.Fatal("expected error for blank file path")
	}
}

func TestNilAuditLoggerIsSafe(t *testing.T) {
	var logger *AuditLogger
	if err := logger.Emit(AuditEvent{EventType: EventDetect}); err != nil {
		t.Fatalf("nil logger should drop events, got %v", err)
	}
	if err := Discard().Emit(AuditEvent{EventType: EventDetect}); err != nil {
		t.Fatalf("discard logger: %v", err)
	}
}
