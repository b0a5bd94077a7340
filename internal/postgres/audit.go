package postgres

import (
	"context"
	"fmt"
	"github.com/ariefcatur/go-bookstore-api/internal/audit"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	event_id      UUID PRIMARY KEY,
	event_type    TEXT        NOT NULL,
	resource      TEXT        NOT NULL,
	resource_id   TEXT        NOT NULL,
	actor         TEXT        NOT NULL DEFAULT '',
	producer      TEXT        NOT NULL DEFAULT '',
	trace_id      TEXT        NOT NULL DEFAULT '',
	occurred_at   TIMESTAMPTZ NOT NULL,
	recorded_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	document      JSONB
);
CREATE INDEX IF NOT EXISTS audit_events_resource_idx ON audit_events (resource, resource_id, occurred_at);
`

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type AuditRepo struct{ DB DBTX }

var _ audit.Recorder = (*AuditRepo)(nil)

func (r *AuditRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.DB.Exec(ctx, schema); err != nil {
		return fmt.Errorf("audit schema: %w", err)
	}
	return nil
}

// Record is idempotent on event id; it reports whether a row was inserted.
func (r *AuditRepo) Record(ctx context.Context, e audit.Entry) (bool, error) {
	id, err := uuid.Parse(e.EventID)
	if err != nil {
		return false, fmt.Errorf("audit event id %q: %w", e.EventID, err)
	}
	var doc any
	if len(e.Document) > 0 {
		doc = string(e.Document)
	}
	ct, err := r.DB.Exec(ctx, `
		INSERT INTO audit_events(event_id, event_type, resource, resource_id, actor, producer, trace_id, occurred_at, document)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb)
		ON CONFLICT (event_id) DO NOTHING
	`, id, e.EventType, e.Resource, e.ResourceID, e.Actor, e.Producer, e.TraceID, e.OccurredAt, doc)
	if err != nil {
		return false, fmt.Errorf("insert audit event %s: %w", e.EventID, err)
	}
	return ct.RowsAffected() == 1, nil
}
