package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/avasilkov/secure-doc-portal/internal/core/domain"
)

type recorderFake struct {
	toStates []string
	errs     []error
	lags     []time.Duration
}

func (f *recorderFake) RecordNotification(toState string, err error) {
	f.toStates = append(f.toStates, toState)
	f.errs = append(f.errs, err)
}

func (f *recorderFake) ObserveEventLag(lag time.Duration) {
	f.lags = append(f.lags, lag)
}

func TestNotifyRecordsHandledEvent(t *testing.T) {
	recorder := &recorderFake{}
	uc := NewNotifyTransitionUseCase(recorder)
	uc.now = func() time.Time { return time.Date(2026, 8, 31, 12, 0, 1, 0, time.UTC) }

	event := domain.TransitionEvent{
		DocumentID: "doc-1",
		FromState:  domain.StateDraft,
		ToState:    domain.StateSubmitted,
		ActorID:    "alice",
		ActorRole:  domain.RoleUploader,
		Version:    2,
		OccurredAt: time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC),
	}
	if err := uc.Notify(context.Background(), event); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	if len(recorder.toStates) != 1 || recorder.toStates[0] != string(domain.StateSubmitted) {
		t.Fatalf("expected one SUBMITTED record, got %v", recorder.toStates)
	}
	if recorder.errs[0] != nil {
		t.Fatalf("expected success record, got %v", recorder.errs[0])
	}
	if len(recorder.lags) != 1 || recorder.lags[0] != time.Second {
		t.Fatalf("expected 1s lag observation, got %v", recorder.lags)
	}
}

func TestNotifyRejectsEventWithoutDocumentID(t *testing.T) {
	recorder := &recorderFake{}
	uc := NewNotifyTransitionUseCase(recorder)

	err := uc.Notify(context.Background(), domain.TransitionEvent{ToState: domain.StateSubmitted})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(recorder.errs) != 1 || recorder.errs[0] == nil {
		t.Fatalf("expected failure recorded, got %v", recorder.errs)
	}
}

func TestNotifyRejectsUnknownTargetState(t *testing.T) {
	uc := NewNotifyTransitionUseCase(nil)

	err := uc.Notify(context.Background(), domain.TransitionEvent{
		DocumentID: "doc-1",
		ToState:    domain.DocumentState("PUBLISHED"),
	})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown state, got %v", err)
	}
}

func TestNotifyStopsOnCancelledContext(t *testing.T) {
	recorder := &recorderFake{}
	uc := NewNotifyTransitionUseCase(recorder)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := uc.Notify(ctx, domain.TransitionEvent{DocumentID: "doc-1", ToState: domain.StateSubmitted})
	if err == nil {
		t.Fatal("expected context error")
	}
	if len(recorder.toStates) != 0 {
		t.Fatalf("cancelled event must not be recorded, got %v", recorder.toStates)
	}
}
