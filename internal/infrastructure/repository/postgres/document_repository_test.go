package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/avasilkov/secure-doc-portal/internal/core/domain"
)

func newRepoWithMock(t *testing.T) (*DocumentRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &DocumentRepository{db: db}, mock, func() { _ = db.Close() }
}

func documentRow(id string, state domain.DocumentState, version int) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "title", "description", "filename", "content_type", "storage_path",
		"owner_id", "current_state", "version", "created_at", "updated_at",
	}).AddRow(id, "contract", "", "contract.pdf", "application/pdf", id+"_contract.pdf",
		"alice", string(state), version, now, now)
}

func TestGetByIDReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, title, description").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAdvanceStateReturnsUpdatedDocument(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery("UPDATE documents").
		WithArgs("doc-1", string(domain.StateDraft), 1, string(domain.StateSubmitted), sqlmock.AnyArg()).
		WillReturnRows(documentRow("doc-1", domain.StateSubmitted, 2))

	doc, err := repo.AdvanceState(context.Background(), "doc-1", domain.StateDraft, domain.StateSubmitted, 1)
	if err != nil {
		t.Fatalf("AdvanceState() error = %v", err)
	}
	if doc.CurrentState != domain.StateSubmitted || doc.Version != 2 {
		t.Fatalf("expected SUBMITTED v2, got %s v%d", doc.CurrentState, doc.Version)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAdvanceStateLostRaceReturnsConcurrentModification(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery("UPDATE documents").
		WithArgs("doc-1", string(domain.StateDraft), 1, string(domain.StateSubmitted), sqlmock.AnyArg()).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := repo.AdvanceState(context.Background(), "doc-1", domain.StateDraft, domain.StateSubmitted, 1)
	if !domain.IsKind(err, domain.ErrConcurrentModification) {
		t.Fatalf("expected ErrConcurrentModification, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAdvanceStateMissingDocumentReturnsNotFound(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery("UPDATE documents").
		WithArgs("ghost", string(domain.StateDraft), 1, string(domain.StateSubmitted), sqlmock.AnyArg()).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	_, err := repo.AdvanceState(context.Background(), "ghost", domain.StateDraft, domain.StateSubmitted, 1)
	if !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAdvanceStateInfrastructureErrorIsStorageKind(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery("UPDATE documents").
		WithArgs("doc-1", string(domain.StateDraft), 1, string(domain.StateSubmitted), sqlmock.AnyArg()).
		WillReturnError(sql.ErrConnDone)

	_, err := repo.AdvanceState(context.Background(), "doc-1", domain.StateDraft, domain.StateSubmitted, 1)
	if !domain.IsKind(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreateInsertsAllColumns(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:           "doc-1",
		Title:        "contract",
		Filename:     "contract.pdf",
		ContentType:  "application/pdf",
		StoragePath:  "doc-1_contract.pdf",
		OwnerID:      "alice",
		CurrentState: domain.StateDraft,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	mock.ExpectExec("INSERT INTO documents").
		WithArgs("doc-1", "contract", "", "contract.pdf", "application/pdf",
			"doc-1_contract.pdf", "alice", string(domain.StateDraft), 1, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), doc); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
