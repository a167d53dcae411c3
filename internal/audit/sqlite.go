package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteBackend persists events in a local SQLite file. The full event is
// stored as JSON alongside indexed filter columns, so queries stay cheap
// without a wide schema.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend opens (or creates) the audit database at dbPath.
func NewSQLiteBackend(dbPath string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening audit database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS audit_events (
		id TEXT PRIMARY KEY,
		timestamp TIMESTAMP NOT NULL,
		event_type TEXT NOT NULL,
		user_id TEXT NOT NULL,
		document_id TEXT NOT NULL,
		event_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_events(timestamp);
	CREATE INDEX IF NOT EXISTS idx_audit_type ON audit_events(event_type);
	CREATE INDEX IF NOT EXISTS idx_audit_user ON audit_events(user_id);
	CREATE INDEX IF NOT EXISTS idx_audit_document ON audit_events(document_id);
	`

	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		return nil, fmt.Errorf("creating audit schema: %w", err)
	}

	return &SQLiteBackend{db: db}, nil
}

func (s *SQLiteBackend) Write(ctx context.Context, ev *Event) error {
	eventJSON, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshaling audit event: %w", err)
	}

	query := `INSERT INTO audit_events (id, timestamp, event_type, user_id, document_id, event_json)
	          VALUES (?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query,
		ev.ID, ev.Timestamp, string(ev.Type), ev.UserID, ev.DocumentID, string(eventJSON))
	if err != nil {
		return fmt.Errorf("storing audit event: %w", err)
	}
	return nil
}

func (s *SQLiteBackend) Query(ctx context.Context, filters Filters) ([]Event, error) {
	query := `SELECT event_json FROM audit_events WHERE 1=1`
	args := []interface{}{}

	if filters.Type != "" {
		query += ` AND event_type = ?`
		args = append(args, string(filters.Type))
	}
	if filters.UserID != "" {
		query += ` AND user_id = ?`
		args = append(args, filters.UserID)
	}
	if filters.DocumentID != "" {
		query += ` AND document_id = ?`
		args = append(args, filters.DocumentID)
	}
	if !filters.From.IsZero() {
		query += ` AND timestamp >= ?`
		args = append(args, filters.From)
	}
	if !filters.To.IsZero() {
		query += ` AND timestamp <= ?`
		args = append(args, filters.To)
	}

	query += ` ORDER BY timestamp DESC`
	if filters.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filters.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit events: %w", err)
	}
	defer rows.Close()

	var results []Event
	for rows.Next() {
		var eventJSON string
		if err := rows.Scan(&eventJSON); err != nil {
			return nil, fmt.Errorf("scanning audit event: %w", err)
		}
		var ev Event
		if err := json.Unmarshal([]byte(eventJSON), &ev); err != nil {
			return nil, fmt.Errorf("unmarshaling audit event: %w", err)
		}
		results = append(results, ev)
	}
	return results, rows.Err()
}

func (s *SQLiteBackend) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM audit_events WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning audit events: %w", err)
	}
	return result.RowsAffected()
}

func (s *SQLiteBackend) Close() error {
	return s.db.Close()
}
