package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/avasilkov/secure-doc-portal/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, title, description, filename, content_type, storage_path, owner_id, current_state, version, created_at, updated_at`

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO documents (`+documentColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
`,
		doc.ID, doc.Title, doc.Description, doc.Filename, doc.ContentType, doc.StoragePath,
		doc.OwnerID, string(doc.CurrentState), doc.Version, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return domain.WrapError(domain.ErrStorageUnavailable, "insert document", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE id = $1
`, id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, id)
		}
		return nil, domain.WrapError(domain.ErrStorageUnavailable, "scan document", err)
	}
	return doc, nil
}

func (r *DocumentRepository) List(ctx context.Context) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+documentColumns+`
FROM documents
ORDER BY created_at DESC, id
`)
	if err != nil {
		return nil, domain.WrapError(domain.ErrStorageUnavailable, "list documents", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, domain.WrapError(domain.ErrStorageUnavailable, "scan document row", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(domain.ErrStorageUnavailable, "iterate documents", err)
	}
	return docs, nil
}

// AdvanceState is the compare-and-swap write path: the update applies only
// while the stored state and version still match the caller's expectation.
// A miss on an existing document means another transition won the race.
func (r *DocumentRepository) AdvanceState(ctx context.Context, id string, from, to domain.DocumentState, expectedVersion int) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
UPDATE documents
SET current_state = $4, version = version + 1, updated_at = $5
WHERE id = $1 AND current_state = $2 AND version = $3
RETURNING `+documentColumns+`
`, id, string(from), expectedVersion, string(to), time.Now().UTC())

	doc, err := scanDocument(row)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, domain.WrapError(domain.ErrStorageUnavailable, "advance document state", err)
	}

	// Distinguish a lost race from a missing document.
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM documents WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, domain.WrapError(domain.ErrStorageUnavailable, "check document existence", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, id)
	}
	return nil, fmt.Errorf("%w: document %s no longer at %s v%d",
		domain.ErrConcurrentModification, id, from, expectedVersion)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var state string
	err := row.Scan(
		&doc.ID, &doc.Title, &doc.Description, &doc.Filename, &doc.ContentType,
		&doc.StoragePath, &doc.OwnerID, &state, &doc.Version, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	doc.CurrentState = domain.DocumentState(state)
	return &doc, nil
}
