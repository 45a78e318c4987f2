package postgres

import (
	"context"
	"database/sql"

	"github.com/avasilkov/secure-doc-portal/internal/core/domain"
)

// AuditLogRepository is append-only by construction: it exposes no update or
// delete, and the audit_log table is only ever written through Append.
type AuditLogRepository struct {
	db *sql.DB
}

func NewAuditLogRepository(db *sql.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

func (r *AuditLogRepository) Append(ctx context.Context, entry domain.AuditEntry) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO audit_log (document_id, from_state, to_state, actor_id, actor_role, comment, occurred_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`,
		entry.DocumentID, nullIfEmpty(string(entry.FromState)), string(entry.ToState),
		entry.ActorID, string(entry.ActorRole), nullIfEmpty(entry.Comment), entry.Timestamp,
	)
	if err != nil {
		return domain.WrapError(domain.ErrStorageUnavailable, "append audit entry", err)
	}
	return nil
}

func (r *AuditLogRepository) History(ctx context.Context, documentID string) ([]domain.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT document_id, from_state, to_state, actor_id, actor_role, comment, occurred_at
FROM audit_log
WHERE document_id = $1
ORDER BY occurred_at ASC, seq ASC
`, documentID)
	if err != nil {
		return nil, domain.WrapError(domain.ErrStorageUnavailable, "query audit history", err)
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var entry domain.AuditEntry
		var fromState, comment sql.NullString
		var toState, actorRole string
		err := rows.Scan(&entry.DocumentID, &fromState, &toState, &entry.ActorID, &actorRole, &comment, &entry.Timestamp)
		if err != nil {
			return nil, domain.WrapError(domain.ErrStorageUnavailable, "scan audit entry", err)
		}
		entry.FromState = domain.DocumentState(fromState.String)
		entry.ToState = domain.DocumentState(toState)
		entry.ActorRole = domain.Role(actorRole)
		entry.Comment = comment.String
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(domain.ErrStorageUnavailable, "iterate audit history", err)
	}
	return entries, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
