package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/privata-io/privata/internal/detector"
	privataotel "github.com/privata-io/privata/internal/otel"
)

var tracer = privataotel.Tracer("github.com/privata-io/privata/internal/audit")

// DefaultRetentionDays keeps the processing log for seven years, the
// longest retention period the supported frameworks require.
const DefaultRetentionDays = 2555

// Logger is the typed front door of the processing log. Each Log method
// records one kind of activity; raw document or query text never reaches
// the backend, only hashes and summaries.
type Logger struct {
	backend       Backend
	retentionDays int
}

// NewLogger wraps a backend. retentionDays <= 0 falls back to
// DefaultRetentionDays.
func NewLogger(backend Backend, retentionDays int) *Logger {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	return &Logger{backend: backend, retentionDays: retentionDays}
}

// Close releases the underlying backend.
func (l *Logger) Close() error {
	return l.backend.Close()
}

func (l *Logger) write(ctx context.Context, ev *Event) error {
	ctx, span := tracer.Start(ctx, "audit.write",
		trace.WithAttributes(
			attribute.String("audit.event_type", string(ev.Type)),
			attribute.String("audit.event_id", ev.ID),
		))
	defer span.End()

	if err := l.backend.Write(ctx, ev); err != nil {
		return fmt.Errorf("writing %s event: %w", ev.Type, err)
	}

	log.Debug().
		Str("event_id", ev.ID).
		Str("event_type", string(ev.Type)).
		Str("user_id", ev.UserID).
		Str("document_id", ev.DocumentID).
		Func(privataotel.LogTraceFields(ctx)).
		Msg("audit event recorded")
	return nil
}

// LogIngestion records that a document passed through redaction on its
// way into a store, keeping the PII summary but never the content.
func (l *Logger) LogIngestion(ctx context.Context, userID string, meta detector.IngestionMetadata) error {
	details := map[string]interface{}{
		"pii_detected":    meta.PIIDetected,
		"pii_count":       meta.PIICount,
		"pii_types":       meta.PIITypes,
		"pii_type_counts": meta.PIITypeCounts,
		"region":          meta.Region,
		"detection_level": meta.DetectionLevel,
	}
	return l.write(ctx, NewEvent(EventIngestion, userID, meta.DocumentID, details))
}

// LogQuery records a retrieval query. The query text itself is reduced to
// a SHA-256 digest so the log cannot reintroduce the PII it exists to track.
func (l *Logger) LogQuery(ctx context.Context, userID, query string, resultCount int, piiRedacted bool) error {
	sum := sha256.Sum256([]byte(query))
	details := map[string]interface{}{
		"query_hash":   hex.EncodeToString(sum[:]),
		"query_length": len(query),
		"result_count": resultCount,
		"pii_redacted": piiRedacted,
	}
	return l.write(ctx, NewEvent(EventQuery, userID, "", details))
}

// LogAccess records a read of a stored document.
func (l *Logger) LogAccess(ctx context.Context, userID, documentID, purpose string) error {
	details := map[string]interface{}{"purpose": purpose}
	return l.write(ctx, NewEvent(EventAccess, userID, documentID, details))
}

// LogDeletion records an erasure, typically an Article 17 request.
func (l *Logger) LogDeletion(ctx context.Context, userID, documentID, reason string) error {
	details := map[string]interface{}{"reason": reason}
	return l.write(ctx, NewEvent(EventDeletion, userID, documentID, details))
}

// LogConsentUpdate records a consent grant or withdrawal for a scope.
func (l *Logger) LogConsentUpdate(ctx context.Context, userID, scope string, granted bool) error {
	details := map[string]interface{}{
		"scope":   scope,
		"granted": granted,
	}
	return l.write(ctx, NewEvent(EventConsentUpdate, userID, "", details))
}

// LogExport records that the processing log itself was exported.
func (l *Logger) LogExport(ctx context.Context, userID, format string, eventCount int) error {
	details := map[string]interface{}{
		"format":      format,
		"event_count": eventCount,
	}
	return l.write(ctx, NewEvent(EventExport, userID, "", details))
}

// LogComplianceCheck records the outcome summary of a compliance run.
func (l *Logger) LogComplianceCheck(ctx context.Context, summary map[string]interface{}) error {
	return l.write(ctx, NewEvent(EventComplianceCheck, "", "", summary))
}

// QueryEvents returns log entries matching the filters, newest first.
func (l *Logger) QueryEvents(ctx context.Context, filters Filters) ([]Event, error) {
	ctx, span := tracer.Start(ctx, "audit.query")
	defer span.End()
	return l.backend.Query(ctx, filters)
}

// UserActivity returns the most recent events for a single data subject,
// the raw material for an Article 15 access report.
func (l *Logger) UserActivity(ctx context.Context, userID string, limit int) ([]Event, error) {
	return l.QueryEvents(ctx, Filters{UserID: userID, Limit: limit})
}

// EnforceRetention prunes events older than the retention window and
// records the sweep itself as a retention_check event.
func (l *Logger) EnforceRetention(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "audit.enforce_retention")
	defer span.End()

	cutoff := time.Now().UTC().AddDate(0, 0, -l.retentionDays)
	removed, err := l.backend.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("enforcing audit retention: %w", err)
	}

	details := map[string]interface{}{
		"cutoff":         cutoff.Format(time.RFC3339),
		"events_removed": removed,
		"retention_days": l.retentionDays,
	}
	if err := l.write(ctx, NewEvent(EventRetentionCheck, "", "", details)); err != nil {
		return removed, err
	}

	log.Info().
		Int64("events_removed", removed).
		Int("retention_days", l.retentionDays).
		Msg("audit retention enforced")
	return removed, nil
}
