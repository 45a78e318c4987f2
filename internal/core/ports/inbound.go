package ports

import (
	"context"
	"io"

	"github.com/avasilkov/secure-doc-portal/internal/core/domain"
)

// CreateDocumentInput carries everything needed to register a new document.
type CreateDocumentInput struct {
	Title       string
	Description string
	Filename    string
	ContentType string
	Payload     io.Reader
	Actor       domain.Actor
}

// DocumentLifecycle is the inbound contract for the transition engine.
type DocumentLifecycle interface {
	Create(ctx context.Context, in CreateDocumentInput) (*domain.Document, error)
	Advance(ctx context.Context, documentID string, expectedState domain.DocumentState, expectedVersion int, target domain.DocumentState, actor domain.Actor, comment string) (*domain.Document, error)
	RequestTransition(ctx context.Context, documentID string, target domain.DocumentState, actor domain.Actor, comment string) (*domain.Document, error)
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context) ([]domain.Document, error)
	History(ctx context.Context, documentID string) ([]domain.AuditEntry, error)
	OpenPayload(ctx context.Context, id string) (*domain.Document, io.ReadCloser, error)
}

// TransitionNotifier is the inbound contract for worker-side event handling.
type TransitionNotifier interface {
	Notify(ctx context.Context, event domain.TransitionEvent) error
}
