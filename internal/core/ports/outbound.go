package ports

import (
	"context"
	"io"

	"github.com/avasilkov/secure-doc-portal/internal/core/domain"
)

// DocumentRepository persists document records. AdvanceState is the only write
// path for state and version: it must apply the change conditionally on the
// expected state and version, so racing transitions serialize without locks.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context) ([]domain.Document, error)
	AdvanceState(ctx context.Context, id string, from, to domain.DocumentState, expectedVersion int) (*domain.Document, error)
}

// AuditLog is the append-only transition history. There is deliberately no
// update or delete: immutability is enforced by the shape of this interface.
type AuditLog interface {
	Append(ctx context.Context, entry domain.AuditEntry) error
	History(ctx context.Context, documentID string) ([]domain.AuditEntry, error)
}

// PayloadStorage stores document payload bytes. The core only tracks the key.
type PayloadStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// EventPublisher emits committed transition events for downstream consumers.
type EventPublisher interface {
	PublishTransition(ctx context.Context, event domain.TransitionEvent) error
}

// EventStream extends publishing with the worker-side subscription.
type EventStream interface {
	EventPublisher
	SubscribeTransitions(ctx context.Context, handler func(context.Context, domain.TransitionEvent) error) error
}
