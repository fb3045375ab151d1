package testutil

import (
	"context"
	"errors"
	"testing"
	"time"
)

// ErrSimulated — sentinel для проверки путей обработки ошибок.
var ErrSimulated = errors.New("simulated error for testing")

// ContextWithTimeout создаёт context с timeout, отменяемый при завершении теста.
func ContextWithTimeout(t testing.TB, duration time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), duration)
	t.Cleanup(cancel)
	return ctx
}

// ContextWithCancel создаёт отменяемый context; cancel также вызывается при завершении теста.
func ContextWithCancel(t testing.TB) (context.Context, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx, cancel
}
