// internal/platform/errors/errors_test.go
package errors

import (
	"testing"

	"surfacex/internal/testutil"
)

func TestWrap(t *testing.T) {
	t.Run("wraps error with context", func(t *testing.T) {
		baseErr := New("base error")
		wrapped := Wrap(baseErr, "additional context")

		testutil.AssertNotNil(t, wrapped, "wrapped error should not be nil")
		testutil.AssertTrue(t, Is(wrapped, baseErr), "should be able to unwrap to base error")
		testutil.AssertEqual(t, wrapped.Error(), "additional context: base error", "error message should include context")
	})

	t.Run("returns nil when wrapping nil", func(t *testing.T) {
		testutil.AssertTrue(t, Wrap(nil, "context") == nil, "wrapping nil should return nil")
	})

	t.Run("multiple wraps preserve chain", func(t *testing.T) {
		baseErr := New("base")
		wrapped := Wrap(Wrap(baseErr, "layer 1"), "layer 2")

		testutil.AssertTrue(t, Is(wrapped, baseErr), "should unwrap to base error")
		testutil.AssertEqual(t, wrapped.Error(), "layer 2: layer 1: base", "should show full chain")
	})
}

func TestWrapf(t *testing.T) {
	t.Run("wraps error with formatted context", func(t *testing.T) {
		baseErr := New("base error")
		wrapped := Wrapf(baseErr, "failed for id=%d", 42)

		testutil.AssertTrue(t, Is(wrapped, baseErr), "should be able to unwrap to base error")
		testutil.AssertEqual(t, wrapped.Error(), "failed for id=42: base error", "error message should include formatted context")
	})

	t.Run("returns nil when wrapping nil", func(t *testing.T) {
		testutil.AssertTrue(t, Wrapf(nil, "context %s", "test") == nil, "wrapping nil should return nil")
	})
}

func TestIs(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"matches sentinel error", ErrTimeout, ErrTimeout, true},
		{"matches wrapped sentinel error", Wrap(ErrTimeout, "context"), ErrTimeout, true},
		{"does not match different error", ErrTimeout, ErrNotFound, false},
		{"nil does not match", nil, ErrTimeout, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertEqual(t, Is(tt.err, tt.target), tt.want, "Is() result should match expected")
		})
	}
}

func TestUnwrap(t *testing.T) {
	t.Run("unwraps single layer", func(t *testing.T) {
		baseErr := New("base")
		testutil.AssertEqual(t, Unwrap(Wrap(baseErr, "context")), baseErr, "should unwrap to base error")
	})

	t.Run("returns nil for non-wrapped error", func(t *testing.T) {
		testutil.AssertTrue(t, Unwrap(New("test")) == nil, "should return nil for non-wrapped error")
	})
}

func TestSentinelPredicates(t *testing.T) {
	tests := []struct {
		name  string
		check func(error) bool
		err   error
		want  bool
	}{
		{"direct timeout", IsTimeout, ErrTimeout, true},
		{"wrapped timeout", IsTimeout, Wrap(ErrTimeout, "context"), true},
		{"timeout mismatch", IsTimeout, ErrNotFound, false},
		{"direct rate limit", IsRateLimit, ErrRateLimit, true},
		{"wrapped rate limit", IsRateLimit, Wrapf(ErrRateLimit, "HTTP %d", 429), true},
		{"direct not found", IsNotFound, ErrNotFound, true},
		{"direct unavailable", IsServiceUnavailable, ErrServiceUnavailable, true},
		{"direct invalid response", IsInvalidResponse, ErrInvalidResponse, true},
		{"wrapped invalid response", IsInvalidResponse, Wrap(ErrInvalidResponse, "bad json"), true},
		{"nil error", IsTimeout, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertEqual(t, tt.check(tt.err), tt.want, "predicate result should match")
		})
	}
}

func TestIsRecoverable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limit is recoverable", Wrap(ErrRateLimit, "source"), true},
		{"service unavailable is recoverable", ErrServiceUnavailable, true},
		{"timeout is recoverable", ErrTimeout, true},
		{"not found is recoverable", ErrNotFound, true},
		{"connection failure is recoverable", Wrap(ErrConnectionFailed, "dial"), true},
		{"invalid response is not recoverable", ErrInvalidResponse, false},
		{"invalid input is not recoverable", ErrInvalidInput, false},
		{"arbitrary error is not recoverable", New("boom"), false},
		{"nil is not recoverable", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertEqual(t, IsRecoverable(tt.err), tt.want, "recoverability should match")
		})
	}
}

func TestJoin(t *testing.T) {
	first := New("first")
	second := New("second")

	joined := Join(first, nil, second)
	testutil.AssertTrue(t, Is(joined, first), "joined error should match first")
	testutil.AssertTrue(t, Is(joined, second), "joined error should match second")
	testutil.AssertTrue(t, Join(nil, nil) == nil, "joining nils should return nil")
}
