package viewmodel

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/boldserve/adminconsole/internal/apperr"
)

// Config describes one list screen.
type Config[T any] struct {
	Name  string
	Fetch func(ctx context.Context) ([]T, error)
	Key   func(T) string
	// Remove deletes one item on the backend; nil disables Delete.
	Remove func(ctx context.Context, id string) error

	EmptyMessage   string
	ErrorFallback  string
	DeleteNotice   string
	DeleteFallback string

	// EmptyOn lets a screen treat some failures as "nothing here yet",
	// returning the message to show.
	EmptyOn func(err error) (string, bool)

	Runner Runner
}

// Snapshot is an immutable copy of a list's state for rendering.
type Snapshot[T any] struct {
	Name       string
	State      State
	Items      []T
	Message    string
	Notice     string
	Generation uint64
	Deleting   bool
}

// List is the state machine behind every list screen: one load on mount,
// manual retry after a failure, and serialized deletes that only touch the
// local list once the backend has confirmed.
type List[T any] struct {
	cfg Config[T]

	mu        sync.Mutex
	state     State
	items     []T
	message   string
	notice    string
	mounted   bool
	unmounted bool
	gen       uint64
	cancel    context.CancelFunc
	settled   chan struct{}
	deleting  bool
}

func NewList[T any](cfg Config[T]) *List[T] {
	if cfg.Runner == nil {
		cfg.Runner = GoRunner{}
	}
	settled := make(chan struct{})
	close(settled)
	return &List[T]{cfg: cfg, settled: settled}
}

// Mount starts the initial load. Only the first call has any effect; it
// reports whether a load was started. ctx bounds the load, which keeps
// running after the caller returns until it completes or Unmount is called.
func (l *List[T]) Mount(ctx context.Context) bool {
	l.mu.Lock()
	if l.mounted || l.unmounted {
		l.mu.Unlock()
		return false
	}
	l.mounted = true
	run := l.startLocked(ctx)
	l.mu.Unlock()
	run()
	return true
}

// Retry reloads after a failure.
func (l *List[T]) Retry(ctx context.Context) error {
	l.mu.Lock()
	if l.unmounted {
		l.mu.Unlock()
		return ErrUnmounted
	}
	if l.state != StateError {
		l.mu.Unlock()
		return ErrNotRetryable
	}
	run := l.startLocked(ctx)
	l.mu.Unlock()
	run()
	return nil
}

// Unmount cancels any in-flight load; its result will be discarded.
func (l *List[T]) Unmount() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.unmounted {
		return
	}
	l.unmounted = true
	l.gen++
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.settleLocked()
}

func (l *List[T]) startLocked(parent context.Context) func() {
	l.gen++
	gen := l.gen
	ctx, cancel := context.WithCancel(parent)
	if l.cancel != nil {
		l.cancel()
	}
	l.cancel = cancel
	l.state = StateLoading
	l.settled = make(chan struct{})

	task := func() {
		items, err := l.cfg.Fetch(ctx)
		l.finish(gen, items, err)
	}
	return func() {
		if err := l.cfg.Runner.Submit(task); err != nil {
			zap.L().Error("list load not scheduled", zap.String("list", l.cfg.Name), zap.Error(err))
			l.finish(gen, nil, errors.Wrap(err, "schedule load"))
		}
	}
}

func (l *List[T]) finish(gen uint64, items []T, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen || l.unmounted {
		zap.L().Debug("stale list result discarded",
			zap.String("list", l.cfg.Name),
			zap.Uint64("generation", gen),
			zap.Uint64("current", l.gen))
		return
	}
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}

	switch {
	case err == nil && len(items) == 0:
		l.state, l.items, l.message = StateEmpty, nil, l.cfg.EmptyMessage
	case err == nil:
		l.state, l.items, l.message = StateSuccess, items, ""
	default:
		if msg, ok := l.emptyOn(err); ok {
			l.state, l.items, l.message = StateEmpty, nil, msg
			break
		}
		l.state, l.items = StateError, nil
		l.message = apperr.Message(err, l.cfg.ErrorFallback)
		zap.L().Warn("list load failed", zap.String("list", l.cfg.Name), zap.Error(err))
	}
	l.settleLocked()
}

func (l *List[T]) emptyOn(err error) (string, bool) {
	if l.cfg.EmptyOn == nil {
		return "", false
	}
	return l.cfg.EmptyOn(err)
}

func (l *List[T]) settleLocked() {
	select {
	case <-l.settled:
	default:
		close(l.settled)
	}
}

// Snapshot copies the current state.
func (l *List[T]) Snapshot() Snapshot[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

func (l *List[T]) snapshotLocked() Snapshot[T] {
	return Snapshot[T]{
		Name:       l.cfg.Name,
		State:      l.state,
		Items:      append([]T(nil), l.items...),
		Message:    l.message,
		Notice:     l.notice,
		Generation: l.gen,
		Deleting:   l.deleting,
	}
}

// Await blocks until the current load settles or ctx is done, then returns
// the state at that moment, which may still be Loading.
func (l *List[T]) Await(ctx context.Context) Snapshot[T] {
	l.mu.Lock()
	settled := l.settled
	l.mu.Unlock()
	select {
	case <-settled:
	case <-ctx.Done():
	}
	return l.Snapshot()
}

// TakeNotice returns the transient notice once and clears it.
func (l *List[T]) TakeNotice() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := l.notice
	l.notice = ""
	return n
}

// Delete removes one item on the backend, then locally. A failed delete
// leaves the list untouched and returns an error carrying the message to show.
func (l *List[T]) Delete(ctx context.Context, id string) error {
	l.mu.Lock()
	if l.cfg.Remove == nil {
		l.mu.Unlock()
		return ErrDeleteUnsupported
	}
	if l.unmounted {
		l.mu.Unlock()
		return ErrUnmounted
	}
	if l.deleting {
		l.mu.Unlock()
		return ErrDeleteInProgress
	}
	l.deleting = true
	l.mu.Unlock()

	err := l.cfg.Remove(ctx, id)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.deleting = false
	if err != nil {
		zap.L().Warn("list delete failed", zap.String("list", l.cfg.Name), zap.String("id", id), zap.Error(err))
		return &DeleteError{Message: apperr.Message(err, l.cfg.DeleteFallback), Err: err}
	}
	for i, item := range l.items {
		if l.cfg.Key(item) == id {
			l.items = append(l.items[:i:i], l.items[i+1:]...)
			break
		}
	}
	if l.state == StateSuccess && len(l.items) == 0 {
		l.state, l.message = StateEmpty, l.cfg.EmptyMessage
	}
	l.notice = l.cfg.DeleteNotice
	return nil
}

// DeleteError is a failed delete with its user-facing message.
type DeleteError struct {
	Message string
	Err     error
}

func (e *DeleteError) Error() string {
	return e.Message + ": " + e.Err.Error()
}

func (e *DeleteError) Unwrap() error {
	return e.Err
}
