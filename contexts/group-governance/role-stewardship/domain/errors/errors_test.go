package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestIsDomainCoversEverySentinel(t *testing.T) {
	for _, sentinel := range known {
		if !IsDomain(fmt.Errorf("wrapped: %w", sentinel)) {
			t.Fatalf("expected %q to be a domain error", sentinel)
		}
	}
	for _, sentinel := range []error{ErrGroupNotFound, ErrForbidden, ErrMembershipTooRecent, ErrModeTransitionForbidden} {
		if !IsDomain(sentinel) {
			t.Fatalf("expected %q to be a domain error", sentinel)
		}
	}
	if IsDomain(errors.New("disk full")) || IsDomain(context.Canceled) {
		t.Fatalf("infrastructure errors must not be domain errors")
	}
}
