package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avasilkov/secure-doc-portal/internal/core/domain"
	"github.com/avasilkov/secure-doc-portal/internal/core/ports"
)

// allowedContentTypes restricts uploads to office document formats.
var allowedContentTypes = map[string]string{
	"application/pdf": ".pdf",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   ".docx",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         ".xlsx",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": ".pptx",
}

const creationComment = "Initial Upload"

// LifecycleUseCase owns the write path for document state, version and audit
// entries. State never changes outside Advance, so a document's current state
// always matches the last entry of its audit trail.
type LifecycleUseCase struct {
	repo    ports.DocumentRepository
	audit   ports.AuditLog
	storage ports.PayloadStorage
	events  ports.EventPublisher
	now     func() time.Time
}

func NewLifecycleUseCase(
	repo ports.DocumentRepository,
	audit ports.AuditLog,
	storage ports.PayloadStorage,
	events ports.EventPublisher,
) *LifecycleUseCase {
	return &LifecycleUseCase{
		repo:    repo,
		audit:   audit,
		storage: storage,
		events:  events,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Create registers a new document directly in DRAFT at version 1. Creation is
// the degenerate transition: it bypasses the validator (there is no from
// state) but goes through the same audit-append discipline.
func (uc *LifecycleUseCase) Create(ctx context.Context, in ports.CreateDocumentInput) (*domain.Document, error) {
	if in.Actor.Role != domain.RoleUploader {
		return nil, fmt.Errorf("%w: document creation requires role %s, actor has %s",
			domain.ErrForbidden, domain.RoleUploader, in.Actor.Role)
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if _, ok := allowedContentTypes[in.ContentType]; !ok {
		return nil, fmt.Errorf("%w: content type %q is not accepted", domain.ErrInvalidInput, in.ContentType)
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(in.Filename))
	now := uc.now()

	if err := uc.storage.Save(ctx, storageKey, in.Payload); err != nil {
		return nil, fmt.Errorf("save payload: %w", err)
	}

	doc := &domain.Document{
		ID:           id,
		Title:        in.Title,
		Description:  in.Description,
		Filename:     in.Filename,
		ContentType:  in.ContentType,
		StoragePath:  storageKey,
		OwnerID:      in.Actor.ID,
		CurrentState: domain.StateDraft,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	entry := domain.AuditEntry{
		DocumentID: doc.ID,
		ToState:    domain.StateDraft,
		ActorID:    in.Actor.ID,
		ActorRole:  in.Actor.Role,
		Comment:    creationComment,
		Timestamp:  now,
	}
	if err := uc.audit.Append(ctx, entry); err != nil {
		return nil, domain.WrapError(domain.ErrStorageUnavailable, "append creation audit entry", err)
	}

	uc.publish(ctx, doc, "", in.Actor)
	return doc, nil
}

// Advance performs one validated, audited transition. The conditional update
// keyed on expectedState/expectedVersion is the sole concurrency control: of
// two racing calls against the same starting version at most one succeeds and
// the loser sees ErrConcurrentModification. The manager never retries.
func (uc *LifecycleUseCase) Advance(
	ctx context.Context,
	documentID string,
	expectedState domain.DocumentState,
	expectedVersion int,
	target domain.DocumentState,
	actor domain.Actor,
	comment string,
) (*domain.Document, error) {
	if err := domain.ValidateTransition(expectedState, target, actor.Role); err != nil {
		return nil, err
	}

	updated, err := uc.repo.AdvanceState(ctx, documentID, expectedState, target, expectedVersion)
	if err != nil {
		return nil, err
	}

	entry := domain.AuditEntry{
		DocumentID: documentID,
		FromState:  expectedState,
		ToState:    target,
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Comment:    comment,
		Timestamp:  uc.now(),
	}
	if err := uc.audit.Append(ctx, entry); err != nil {
		// The state update already committed; a missing audit entry is a
		// fatal inconsistency and must be surfaced, not swallowed.
		return nil, domain.WrapError(domain.ErrStorageUnavailable, "append audit entry after state update", err)
	}

	uc.publish(ctx, updated, expectedState, actor)
	return updated, nil
}

// RequestTransition resolves the caller's expectation from the live document
// and delegates to Advance. On ErrConcurrentModification the caller re-reads
// and retries; nothing is retried here.
func (uc *LifecycleUseCase) RequestTransition(
	ctx context.Context,
	documentID string,
	target domain.DocumentState,
	actor domain.Actor,
	comment string,
) (*domain.Document, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return uc.Advance(ctx, documentID, doc.CurrentState, doc.Version, target, actor, comment)
}

func (uc *LifecycleUseCase) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	return uc.repo.GetByID(ctx, id)
}

func (uc *LifecycleUseCase) List(ctx context.Context) ([]domain.Document, error) {
	return uc.repo.List(ctx)
}

// History returns the document's complete audit trail in chronological order.
func (uc *LifecycleUseCase) History(ctx context.Context, documentID string) ([]domain.AuditEntry, error) {
	if _, err := uc.repo.GetByID(ctx, documentID); err != nil {
		return nil, err
	}
	return uc.audit.History(ctx, documentID)
}

// OpenPayload streams the stored payload for a document.
func (uc *LifecycleUseCase) OpenPayload(ctx context.Context, id string) (*domain.Document, io.ReadCloser, error) {
	doc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := uc.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open payload: %w", err)
	}
	return doc, rc, nil
}

// publish is best-effort: the audit log in the primary store is the source of
// truth and a committed transition is never unwound over a lost event.
func (uc *LifecycleUseCase) publish(ctx context.Context, doc *domain.Document, from domain.DocumentState, actor domain.Actor) {
	if uc.events == nil {
		return
	}
	event := domain.TransitionEvent{
		DocumentID: doc.ID,
		FromState:  from,
		ToState:    doc.CurrentState,
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Version:    doc.Version,
		OccurredAt: uc.now(),
	}
	if err := uc.events.PublishTransition(ctx, event); err != nil {
		slog.Warn("transition_event_publish_failed",
			"document_id", doc.ID,
			"to_state", doc.CurrentState,
			"error", err,
		)
	}
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "document.bin"
	}
	return base
}
