package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/avasilkov/secure-doc-portal/internal/core/domain"
)

// NotificationRecorder receives worker-side observations about handled events.
type NotificationRecorder interface {
	RecordNotification(toState string, err error)
	ObserveEventLag(lag time.Duration)
}

// NotifyTransitionUseCase turns committed transition events into structured
// notifications addressed to the roles responsible for the next step. The
// audit log in the primary store remains the source of truth; this is a
// downstream convenience and may lose events.
type NotifyTransitionUseCase struct {
	recorder NotificationRecorder
	now      func() time.Time
}

func NewNotifyTransitionUseCase(recorder NotificationRecorder) *NotifyTransitionUseCase {
	return &NotifyTransitionUseCase{
		recorder: recorder,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (uc *NotifyTransitionUseCase) Notify(ctx context.Context, event domain.TransitionEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if event.DocumentID == "" {
		err := fmt.Errorf("%w: transition event without document id", domain.ErrInvalidInput)
		uc.record(event, err)
		return err
	}
	if _, err := domain.ParseState(string(event.ToState)); err != nil {
		uc.record(event, err)
		return err
	}

	audience := domain.NextRoles(event.ToState)
	attrs := []any{
		"document_id", event.DocumentID,
		"from_state", string(event.FromState),
		"to_state", string(event.ToState),
		"actor_id", event.ActorID,
		"actor_role", string(event.ActorRole),
		"version", event.Version,
	}
	if len(audience) == 0 {
		slog.Info("transition_terminal", attrs...)
	} else {
		roles := make([]string, 0, len(audience))
		for _, role := range audience {
			roles = append(roles, string(role))
		}
		slog.Info("transition_notification", append(attrs, "notify_roles", roles)...)
	}

	uc.record(event, nil)
	return nil
}

func (uc *NotifyTransitionUseCase) record(event domain.TransitionEvent, err error) {
	if uc.recorder == nil {
		return
	}
	uc.recorder.RecordNotification(string(event.ToState), err)
	if !event.OccurredAt.IsZero() {
		uc.recorder.ObserveEventLag(uc.now().Sub(event.OccurredAt))
	}
}
