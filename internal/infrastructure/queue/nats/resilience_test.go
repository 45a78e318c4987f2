package nats

import (
	"context"
	"errors"
	"testing"

	"github.com/nats-io/nats.go"
)

func TestClassifyConnectionErrorsAreRetryable(t *testing.T) {
	for _, err := range []error{
		nats.ErrNoServers,
		nats.ErrTimeout,
		nats.ErrConnectionClosed,
		nats.ErrDisconnected,
	} {
		class := classifyNATSError(err)
		if !class.Retryable || !class.RecordFailure {
			t.Fatalf("expected %v to be retryable and recorded, got %+v", err, class)
		}
	}
}

func TestClassifyContextCancellationIsNotRecorded(t *testing.T) {
	class := classifyNATSError(context.Canceled)
	if class.Retryable || class.RecordFailure {
		t.Fatalf("expected cancellation to be neither retried nor recorded, got %+v", class)
	}
}

func TestClassifyUnknownErrorIsPermanent(t *testing.T) {
	class := classifyNATSError(errors.New("bad subject"))
	if class.Retryable {
		t.Fatalf("expected unknown error to be permanent, got %+v", class)
	}
	if !class.RecordFailure {
		t.Fatalf("expected unknown error to count against the breaker")
	}
}
