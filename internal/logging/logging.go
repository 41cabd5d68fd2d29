// Package logging builds the slog logger used by the command and the
// infrastructure layers.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"bookingcore/internal/config"
	"bookingcore/internal/core"
)

// New returns a logger writing to w with the given level and format
// ("text" or "json").
func New(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, err := config.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// AuditRecorder writes core audit entries to a logger. Successful operations
// log at info, failed ones at warn.
type AuditRecorder struct {
	logger *slog.Logger
}

var _ core.AuditRecorder = (*AuditRecorder)(nil)

// NewAuditRecorder wraps logger; nil uses slog.Default().
func NewAuditRecorder(logger *slog.Logger) *AuditRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditRecorder{logger: logger}
}

// Record implements core.AuditRecorder.
func (a *AuditRecorder) Record(ctx context.Context, entry core.AuditEntry) {
	attrs := []slog.Attr{
		slog.String("operation", entry.Operation),
		slog.String("entity", string(entry.Entity)),
		slog.String("action", string(entry.Action)),
		slog.Duration("duration", entry.Duration),
	}
	if entry.EntityID != "" {
		attrs = append(attrs, slog.String("entity_id", entry.EntityID))
	}
	if entry.Actor != "" {
		attrs = append(attrs, slog.String("actor", entry.Actor))
	}
	if entry.Status == core.AuditStatusError {
		attrs = append(attrs, slog.String("outcome", string(entry.Outcome)), slog.String("error", entry.Error))
		a.logger.LogAttrs(ctx, slog.LevelWarn, "operation failed", attrs...)
		return
	}
	a.logger.LogAttrs(ctx, slog.LevelInfo, "operation completed", attrs...)
}
