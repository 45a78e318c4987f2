package domain

import "time"

type Document struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description,omitempty"`
	Filename     string        `json:"filename"`
	ContentType  string        `json:"content_type"`
	StoragePath  string        `json:"storage_path"`
	OwnerID      string        `json:"owner_id"`
	CurrentState DocumentState `json:"current_state"`
	Version      int           `json:"version"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Actor is a request-scoped identity already authenticated upstream. The core
// only applies role-based authorization on top of it.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// AuditEntry is one immutable record of a transition attempt outcome.
// FromState is empty only for the creation entry.
type AuditEntry struct {
	DocumentID string        `json:"document_id"`
	FromState  DocumentState `json:"from_state,omitempty"`
	ToState    DocumentState `json:"to_state"`
	ActorID    string        `json:"actor_id"`
	ActorRole  Role          `json:"actor_role"`
	Comment    string        `json:"comment,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
}

// TransitionEvent is the message published after a committed state change.
type TransitionEvent struct {
	DocumentID string        `json:"document_id"`
	FromState  DocumentState `json:"from_state,omitempty"`
	ToState    DocumentState `json:"to_state"`
	ActorID    string        `json:"actor_id"`
	ActorRole  Role          `json:"actor_role"`
	Version    int           `json:"version"`
	OccurredAt time.Time     `json:"occurred_at"`
}
