package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// PostgresBackend persists events in PostgreSQL for deployments where the
// processing log is shared across pipeline instances. Same shape as the
// SQLite backend: indexed filter columns plus a JSONB payload.
type PostgresBackend struct {
	db *sqlx.DB
}

// NewPostgresBackend connects to the database named by dsn and ensures
// the audit schema exists.
func NewPostgresBackend(dsn string) (*PostgresBackend, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to audit database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	schema := `
	CREATE TABLE IF NOT EXISTS audit_events (
		id TEXT PRIMARY KEY,
		timestamp TIMESTAMPTZ NOT NULL,
		event_type TEXT NOT NULL,
		user_id TEXT NOT NULL,
		document_id TEXT NOT NULL,
		event_json JSONB NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_events(timestamp);
	CREATE INDEX IF NOT EXISTS idx_audit_type ON audit_events(event_type);
	CREATE INDEX IF NOT EXISTS idx_audit_user ON audit_events(user_id);
	CREATE INDEX IF NOT EXISTS idx_audit_document ON audit_events(document_id);
	`

	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating audit schema: %w", err)
	}

	return &PostgresBackend{db: db}, nil
}

func (p *PostgresBackend) Write(ctx context.Context, ev *Event) error {
	eventJSON, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshaling audit event: %w", err)
	}

	query := `INSERT INTO audit_events (id, timestamp, event_type, user_id, document_id, event_json)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err = p.db.ExecContext(ctx, query,
		ev.ID, ev.Timestamp, string(ev.Type), ev.UserID, ev.DocumentID, string(eventJSON))
	if err != nil {
		return fmt.Errorf("storing audit event: %w", err)
	}
	return nil
}

func (p *PostgresBackend) Query(ctx context.Context, filters Filters) ([]Event, error) {
	query := `SELECT event_json FROM audit_events WHERE 1=1`
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filters.Type != "" {
		query += ` AND event_type = ` + arg(string(filters.Type))
	}
	if filters.UserID != "" {
		query += ` AND user_id = ` + arg(filters.UserID)
	}
	if filters.DocumentID != "" {
		query += ` AND document_id = ` + arg(filters.DocumentID)
	}
	if !filters.From.IsZero() {
		query += ` AND timestamp >= ` + arg(filters.From)
	}
	if !filters.To.IsZero() {
		query += ` AND timestamp <= ` + arg(filters.To)
	}

	query += ` ORDER BY timestamp DESC`
	if filters.Limit > 0 {
		query += ` LIMIT ` + arg(filters.Limit)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit events: %w", err)
	}
	defer rows.Close()

	var results []Event
	for rows.Next() {
		var eventJSON []byte
		if err := rows.Scan(&eventJSON); err != nil {
			return nil, fmt.Errorf("scanning audit event: %w", err)
		}
		var ev Event
		if err := json.Unmarshal(eventJSON, &ev); err != nil {
			return nil, fmt.Errorf("unmarshaling audit event: %w", err)
		}
		results = append(results, ev)
	}
	return results, rows.Err()
}

func (p *PostgresBackend) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := p.db.ExecContext(ctx,
		`DELETE FROM audit_events WHERE timestamp < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning audit events: %w", err)
	}
	return result.RowsAffected()
}

func (p *PostgresBackend) Close() error {
	return p.db.Close()
}
