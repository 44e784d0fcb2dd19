package testutil

import (
	"context"
	"testing"
	"time"
)

// TestContext returns a context that is canceled when the test ends.
// This ensures any goroutines started during the test are properly cleaned up.
func TestContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return ctx
}

// TestContextWithTimeout returns a context with a timeout.
// The context is also canceled when the test ends.
func TestContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)

	return ctx
}

// CancelableContext returns a context and cancel function.
// The context is automatically canceled when the test ends if not canceled earlier.
func CancelableContext(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return ctx, cancel
}

// contextKey is used for storing test values in context.
type contextKey string

// WithTestName adds the test name to the context.
func WithTestName(ctx context.Context, t *testing.T) context.Context {
	return context.WithValue(ctx, contextKey("test_name"), t.Name())
}

// TestNameFromContext retrieves the test name from context.
func TestNameFromContext(ctx context.Context) string {
	if v := ctx.Value(contextKey("test_name")); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
