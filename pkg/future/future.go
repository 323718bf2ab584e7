// Package future turns a single-value asynchronous operation into a bounded
// blocking wait.
//
// A Future holds at most one value and one error and fires its done signal
// exactly once, either on Fail or on Complete. Callers block on Wait with a
// timeout; timing out stops the wait, not the operation behind it.
package future

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultTimeout is the bounded wait used when callers have no opinion.
const DefaultTimeout = 5 * time.Minute

var ErrTimeout = errors.New("future: wait timed out")

type Future[T any] struct {
	mu       sync.Mutex
	value    T
	hasValue bool
	err      error

	done chan struct{}
	once sync.Once
}

func New[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Next stores the received value. Only the first value before the signal
// fires is kept.
func (f *Future[T]) Next(v T) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.hasValue || f.fired() {
		return
	}
	f.value = v
	f.hasValue = true
}

// Fail records err and fires the signal.
func (f *Future[T]) Fail(err error) {
	f.once.Do(func() {
		f.mu.Lock()
		f.err = err
		f.mu.Unlock()
		close(f.done)
	})
}

// Complete fires the signal without an error.
func (f *Future[T]) Complete() {
	f.once.Do(func() {
		close(f.done)
	})
}

// Resolve delivers a value followed by the terminal notification matching err.
func (f *Future[T]) Resolve(v T, err error) {
	if err != nil {
		f.Fail(err)
		return
	}
	f.Next(v)
	f.Complete()
}

func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the signal fires, timeout elapses or ctx is done.
// It reports whether the signal fired in time. A done ctx is returned as an
// error. A non-positive timeout waits on ctx alone.
func (f *Future[T]) Wait(ctx context.Context, timeout time.Duration) (bool, error) {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case <-f.done:
		return true, nil
	case <-expired:
		return false, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (f *Future[T]) Value() T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

func (f *Future[T]) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// fired must be called with mu held.
func (f *Future[T]) fired() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Go runs fn on its own goroutine and resolves the returned future with its
// result.
func Go[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Future[T] {
	f := New[T]()
	go func() {
		v, err := fn(ctx)
		f.Resolve(v, err)
	}()
	return f
}

// Await runs fn and waits up to timeout for it to finish. A recorded error
// takes precedence over a timeout.
func Await[T any](ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	f := Go(ctx, fn)
	ok, err := f.Wait(ctx, timeout)
	if err != nil {
		return zero, err
	}
	if err := f.Err(); err != nil {
		return zero, err
	}
	if !ok {
		return zero, ErrTimeout
	}
	return f.Value(), nil
}
