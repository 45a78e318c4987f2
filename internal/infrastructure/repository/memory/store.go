package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/avasilkov/secure-doc-portal/internal/core/domain"
)

// Store keeps documents and their audit trail in process memory. It mirrors
// the compare-and-swap semantics of the postgres repository so that
// concurrency behavior is identical in tests and local runs.
type Store struct {
	mu      sync.Mutex
	docs    map[string]domain.Document
	entries map[string][]domain.AuditEntry
}

func NewStore() *Store {
	return &Store{
		docs:    make(map[string]domain.Document),
		entries: make(map[string][]domain.AuditEntry),
	}
}

func (s *Store) Create(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[doc.ID]; ok {
		return fmt.Errorf("document %s already exists", doc.ID)
	}
	s.docs[doc.ID] = *doc
	return nil
}

func (s *Store) GetByID(_ context.Context, id string) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, id)
	}
	copyDoc := doc
	return &copyDoc, nil
}

func (s *Store) List(_ context.Context) ([]domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// AdvanceState applies the state change only if the stored state and version
// still match the caller's expectation. Exactly one of two racing calls with
// the same expectation can succeed.
func (s *Store) AdvanceState(_ context.Context, id string, from, to domain.DocumentState, expectedVersion int) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, id)
	}
	if doc.CurrentState != from || doc.Version != expectedVersion {
		return nil, fmt.Errorf("%w: document %s is at %s v%d, expected %s v%d",
			domain.ErrConcurrentModification, id, doc.CurrentState, doc.Version, from, expectedVersion)
	}

	doc.CurrentState = to
	doc.Version++
	doc.UpdatedAt = time.Now().UTC()
	s.docs[id] = doc

	copyDoc := doc
	return &copyDoc, nil
}

func (s *Store) Append(_ context.Context, entry domain.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[entry.DocumentID] = append(s.entries[entry.DocumentID], entry)
	return nil
}

func (s *Store) History(_ context.Context, documentID string) ([]domain.AuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.entries[documentID]
	out := make([]domain.AuditEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}
