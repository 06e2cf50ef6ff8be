// Package logging provides a slog handler that mirrors WARN and above
// into the system_logs table so the admin log screens see what the
// process logged, not just stdout.
package logging

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"github.com/mesrs/portal-go/internal/model"
	"github.com/mesrs/portal-go/internal/store"
)

// SystemLogHandler wraps another slog.Handler and also persists records
// at or above a threshold level.
type SystemLogHandler struct {
	inner   slog.Handler
	queries *store.Queries
	level   slog.Level
	// attrs accumulated via WithAttrs; record attrs alone would miss
	// anything bound with Logger.With.
	attrs []slog.Attr
}

// NewSystemLogHandler creates a handler that persists WARN and above.
func NewSystemLogHandler(inner slog.Handler, db *sql.DB) *SystemLogHandler {
	return &SystemLogHandler{
		inner:   inner,
		queries: store.New(db),
		level:   slog.LevelWarn,
	}
}

// NewSystemLogHandlerWithLevel creates a handler with a custom threshold.
func NewSystemLogHandlerWithLevel(inner slog.Handler, db *sql.DB, level slog.Level) *SystemLogHandler {
	return &SystemLogHandler{
		inner:   inner,
		queries: store.New(db),
		level:   level,
	}
}

// Enabled implements slog.Handler.
func (h *SystemLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *SystemLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}
	if r.Level >= h.level {
		h.persist(r)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *SystemLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	combined := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	combined = append(combined, h.attrs...)
	combined = append(combined, attrs...)
	return &SystemLogHandler{
		inner:   h.inner.WithAttrs(attrs),
		queries: h.queries,
		level:   h.level,
		attrs:   combined,
	}
}

// WithGroup implements slog.Handler.
func (h *SystemLogHandler) WithGroup(name string) slog.Handler {
	return &SystemLogHandler{
		inner:   h.inner.WithGroup(name),
		queries: h.queries,
		level:   h.level,
		attrs:   h.attrs,
	}
}

// persist writes a record to system_logs. A background context is used
// so cancellation of the originating request cannot drop the entry.
func (h *SystemLogHandler) persist(r slog.Record) {
	_, _ = h.queries.CreateLog(context.Background(), store.CreateLogParams{
		Level:     levelString(r.Level),
		Category:  h.recordCategory(r),
		Message:   r.Message,
		Metadata:  h.recordMetadata(r),
		CreatedAt: r.Time,
	})
}

func levelString(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.LogLevelError
	case level >= slog.LevelWarn:
		return model.LogLevelWarning
	case level >= slog.LevelInfo:
		return model.LogLevelInfo
	default:
		return model.LogLevelDebug
	}
}

// recordCategory reads the "category" or "component" attribute (bound
// or per-record), falling back to inference from the message text.
func (h *SystemLogHandler) recordCategory(r slog.Record) string {
	var category string
	for _, a := range h.attrs {
		if a.Key == "category" || a.Key == "component" {
			category = a.Value.String()
		}
	}
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "category" || a.Key == "component" {
			category = a.Value.String()
			return false
		}
		return true
	})

	switch category {
	case model.LogCategoryContent, model.LogCategoryAnalytics, model.LogCategoryCache,
		model.LogCategoryMaintenance, model.LogCategorySecurity, model.LogCategorySystem:
		return category
	case "optimizer":
		return model.LogCategoryMaintenance
	}

	msg := strings.ToLower(r.Message)
	switch {
	case strings.Contains(msg, "cache"):
		return model.LogCategoryCache
	case strings.Contains(msg, "stats") || strings.Contains(msg, "analytics"):
		return model.LogCategoryAnalytics
	case strings.Contains(msg, "secret") || strings.Contains(msg, "rate limit"):
		return model.LogCategorySecurity
	case strings.Contains(msg, "news") || strings.Contains(msg, "document") || strings.Contains(msg, "content"):
		return model.LogCategoryContent
	case strings.Contains(msg, "optimiz") || strings.Contains(msg, "maintenance"):
		return model.LogCategoryMaintenance
	default:
		return model.LogCategorySystem
	}
}

// recordMetadata collects the remaining record attributes into a flat
// JSON object. Bound attrs are deliberately excluded: they repeat on
// every row and the component already lands in the category column.
func (h *SystemLogHandler) recordMetadata(r slog.Record) string {
	if r.NumAttrs() == 0 {
		return "{}"
	}

	var sb strings.Builder
	sb.WriteString("{")
	first := true
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "category" || a.Key == "component" {
			return true
		}
		if !first {
			sb.WriteString(",")
		}
		first = false
		sb.WriteString(`"`)
		sb.WriteString(escapeJSON(a.Key))
		sb.WriteString(`":"`)
		sb.WriteString(escapeJSON(a.Value.String()))
		sb.WriteString(`"`)
		return true
	})
	sb.WriteString("}")
	return sb.String()
}

func escapeJSON(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
