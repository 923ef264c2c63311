// Package goroutine runs background work with a concurrency cap, panic
// recovery and a single Wait for shutdown.
package goroutine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/shandysiswandi/authflow/internal/pkg/stacktrace"
)

// DefaultLimit applies when NewManager receives a non-positive limit.
const DefaultLimit = 64

var ErrClosed = errors.New("goroutine: manager closed")

// ErrPanic wraps a recovered panic value.
type ErrPanic struct {
	Value any
	Stack []string
}

func (e *ErrPanic) Error() string {
	return fmt.Sprintf("goroutine: panic: %v", e.Value)
}

type Manager struct {
	wg   sync.WaitGroup
	sema chan struct{}

	mu     sync.RWMutex
	closed bool

	errMu sync.Mutex
	errs  []error
}

func NewManager(limit int) *Manager {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &Manager{sema: make(chan struct{}, limit)}
}

// Go runs f once a slot is free. It gives up when ctx ends first or the
// manager is closed, returning false in both cases.
func (m *Manager) Go(ctx context.Context, f func(ctx context.Context) error) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		slog.WarnContext(ctx, "goroutine manager closed, task dropped")
		return false
	}

	select {
	case m.sema <- struct{}{}:
	case <-ctx.Done():
		slog.WarnContext(ctx, "goroutine not started", "error", ctx.Err())
		return false
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer func() { <-m.sema }()

		if err := m.run(ctx, f); err != nil && !errors.Is(err, context.Canceled) {
			m.errMu.Lock()
			m.errs = append(m.errs, err)
			m.errMu.Unlock()
		}
	}()

	return true
}

func (m *Manager) run(ctx context.Context, f func(ctx context.Context) error) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			p := &ErrPanic{Value: rvr, Stack: stacktrace.InternalPaths(debug.Stack())}
			slog.ErrorContext(ctx, "panic in goroutine", "panic", rvr, "stack", p.Stack)
			err = p
		}
	}()

	return f(ctx)
}

// Wait closes the manager, blocks until every task returns and joins
// their errors. Cancellation errors are not collected.
func (m *Manager) Wait() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.wg.Wait()

	m.errMu.Lock()
	defer m.errMu.Unlock()
	return errors.Join(m.errs...)
}
