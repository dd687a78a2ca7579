package audit

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSink persists audit records in PostgreSQL.
type PostgresSink struct {
	pool *pgxpool.Pool
}

// NewPostgresSink creates a PostgreSQL-backed audit sink.
func NewPostgresSink(pool *pgxpool.Pool) *PostgresSink {
	return &PostgresSink{pool: pool}
}

const insertRecordSQL = `
INSERT INTO audit_records (id, created_at, kind, service, operation, mocked, admin_id, target_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// Record inserts the audit record. Insert failures are logged, not
// returned: auditing must never abort the operation it is auditing.
func (s *PostgresSink) Record(ctx context.Context, rec Record) {
	_, err := s.pool.Exec(ctx, insertRecordSQL,
		rec.ID,
		rec.Timestamp,
		string(rec.Kind),
		rec.Service,
		rec.Operation,
		rec.Mocked,
		rec.AdminID,
		rec.TargetID,
	)
	if err != nil {
		slog.Error("Failed to persist audit record",
			"audit_id", rec.ID,
			"kind", rec.Kind,
			"err", err)
	}
}
