package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestStatusCode_MapsEveryKind(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{InvalidRequest, 400},
		{NotFound, 400},
		{UpstreamTransient, 500},
		{UpstreamFatal, 503},
		{RateLimited, 429},
		{Forbidden, 403},
		{Internal, 500},
	}
	for _, tt := range tests {
		if got := StatusCode(tt.kind); got != tt.want {
			t.Fatalf("StatusCode(%s) = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func TestAs_UnwrapsWrappedAppError(t *testing.T) {
	inner := New(NotFound, "node missing")
	wrapped := fmt.Errorf("phase 1 failed: %w", inner)

	if got := As(wrapped); got != NotFound {
		t.Fatalf("As(wrapped) = %s, want %s", got, NotFound)
	}
}

func TestAs_DefaultsToInternal(t *testing.T) {
	if got := As(errors.New("boom")); got != Internal {
		t.Fatalf("As(plain error) = %s, want %s", got, Internal)
	}
}
