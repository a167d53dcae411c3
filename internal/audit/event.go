// Package audit provides a GDPR Article 30 processing log for document
// pipelines. Every ingestion, query, access, and deletion produces an
// Event that is persisted through a pluggable Backend (in-memory, SQLite,
// or PostgreSQL) and can be filtered, exported, and pruned on a retention
// schedule.
package audit

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// EventType identifies the kind of processing activity recorded.
type EventType string

const (
	EventIngestion       EventType = "ingestion"
	EventQuery           EventType = "query"
	EventAccess          EventType = "access"
	EventDeletion        EventType = "deletion"
	EventExport          EventType = "export"
	EventConsentUpdate   EventType = "consent_update"
	EventRetentionCheck  EventType = "retention_check"
	EventComplianceCheck EventType = "compliance_check"
)

// Event is a single processing-log entry. Details carries event-specific
// payload such as PII counts or query metadata and is stored as JSON.
type Event struct {
	ID         string                 `json:"id"`
	Timestamp  time.Time              `json:"timestamp"`
	Type       EventType              `json:"type"`
	UserID     string                 `json:"user_id,omitempty"`
	DocumentID string                 `json:"document_id,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// NewEvent builds an event with a fresh UUID and a UTC timestamp.
func NewEvent(eventType EventType, userID, documentID string, details map[string]interface{}) *Event {
	return &Event{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		Type:       eventType,
		UserID:     userID,
		DocumentID: documentID,
		Details:    details,
	}
}

// Filters narrows a Query. Zero-valued fields match everything.
type Filters struct {
	Type       EventType
	UserID     string
	DocumentID string
	From       time.Time
	To         time.Time
	Limit      int
}

func (f Filters) matches(ev *Event) bool {
	if f.Type != "" && ev.Type != f.Type {
		return false
	}
	if f.UserID != "" && ev.UserID != f.UserID {
		return false
	}
	if f.DocumentID != "" && ev.DocumentID != f.DocumentID {
		return false
	}
	if !f.From.IsZero() && ev.Timestamp.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && ev.Timestamp.After(f.To) {
		return false
	}
	return true
}

// sortNewestFirst orders events by timestamp descending, matching the
// SQL backends' ORDER BY so every backend returns the same shape.
func sortNewestFirst(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})
}
