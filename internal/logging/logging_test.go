package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"bookingcore/internal/core"
	"bookingcore/pkg/domain"
)

func TestNewFormats(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "info", "json")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("storage opened", "driver", "sqlite")
	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec); err != nil {
		t.Fatalf("expected one json record, got %q: %v", buf.String(), err)
	}
	if rec["msg"] != "storage opened" || rec["driver"] != "sqlite" {
		t.Fatalf("unexpected record %v", rec)
	}

	buf.Reset()
	logger, err = New(&buf, "debug", "text")
	if err != nil {
		t.Fatalf("new text: %v", err)
	}
	logger.Debug("visible")
	if !strings.Contains(buf.String(), "msg=visible") {
		t.Fatalf("expected text debug output, got %q", buf.String())
	}
}

func TestNewRejectsBadSettings(t *testing.T) {
	if _, err := New(&bytes.Buffer{}, "loud", "text"); err == nil {
		t.Fatalf("expected level error")
	}
	if _, err := New(&bytes.Buffer{}, "info", "xml"); err == nil {
		t.Fatalf("expected format error")
	}
}

func TestDiscardDropsErrors(t *testing.T) {
	logger := Discard()
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelError, slog.LevelError + 1, 12} {
		if logger.Enabled(context.Background(), level) {
			t.Fatalf("discard logger should not be enabled at %v", level)
		}
	}
}

func TestAuditRecorderLevels(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := New(&buf, "info", "json")
	rec := NewAuditRecorder(logger)
	rec.Record(context.Background(), core.AuditEntry{
		Operation: "create_reservation",
		Entity:    domain.EntityReservation,
		Action:    core.ActionCreate,
		EntityID:  "res_1",
		Actor:     "jane@example.com",
		Status:    core.AuditStatusSuccess,
		Duration:  time.Millisecond,
	})
	rec.Record(context.Background(), core.AuditEntry{
		Operation: "create_reservation",
		Entity:    domain.EntityReservation,
		Action:    core.ActionCreate,
		Status:    core.AuditStatusError,
		Outcome:   core.Outcome(domain.KindConflict),
		Error:     "This slot is fully booked",
	})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two records, got %q", buf.String())
	}
	var ok, failed map[string]any
	_ = json.Unmarshal([]byte(lines[0]), &ok)
	_ = json.Unmarshal([]byte(lines[1]), &failed)
	if ok["level"] != "INFO" || ok["entity_id"] != "res_1" || ok["actor"] != "jane@example.com" {
		t.Fatalf("unexpected success record %v", ok)
	}
	if failed["level"] != "WARN" || failed["outcome"] != "conflict" || failed["error"] != "This slot is fully booked" {
		t.Fatalf("unexpected failure record %v", failed)
	}
	if _, present := failed["entity_id"]; present {
		t.Fatalf("empty entity id should be omitted")
	}
}
