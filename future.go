package morph

import (
	"context"
	"fmt"
	"sync"
)

type LoadState int

const (
	LoadPending LoadState = iota
	LoadLoaded
	LoadFailed
)

func (s LoadState) String() string {
	switch s {
	case LoadPending:
		return "Pending"
	case LoadLoaded:
		return "Loaded"
	case LoadFailed:
		return "Failed"
	}
	return fmt.Sprintf("LoadState(%d)", int(s))
}

// Future is the result of an asynchronous load. It moves from LoadPending
// to exactly one of LoadLoaded or LoadFailed, and never changes again.
type Future[T any] struct {
	mu    sync.Mutex
	state LoadState
	value T
	err   error
	done  chan struct{}
}

func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// LoadAsync runs load on its own goroutine and settles the returned future
// with its result.
func LoadAsync[T any](ctx context.Context, load func(context.Context) (T, error)) *Future[T] {
	f := NewFuture[T]()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				f.Fail(fmt.Errorf("load panicked: %v", r))
			}
		}()
		value, err := load(ctx)
		if err != nil {
			f.Fail(err)
			return
		}
		f.Resolve(value)
	}()
	return f
}

// Resolve settles the future with value. It reports false if the future
// was already settled.
func (f *Future[T]) Resolve(value T) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != LoadPending {
		return false
	}
	f.state = LoadLoaded
	f.value = value
	close(f.done)
	return true
}

func (f *Future[T]) Fail(err error) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != LoadPending {
		return false
	}
	f.state = LoadFailed
	f.err = err
	close(f.done)
	return true
}

// Poll never blocks.
func (f *Future[T]) Poll() (LoadState, T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state, f.value, f.err
}

func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		_, value, err := f.Poll()
		return value, err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
