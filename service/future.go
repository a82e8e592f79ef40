package service

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/kochabx/netservice/errors"
)

// State is the lifecycle position of a Future
type State int32

const (
	StatePending State = iota
	StateSucceeded
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Future is the single result of one execution. It leaves StatePending exactly
// once: it resolves to success or failure, or it is cancelled. Callbacks run at
// most once and never after cancellation.
type Future struct {
	mu        sync.Mutex
	state     atomic.Int32
	done      chan struct{}
	resp      *Response
	err       error
	callbacks []func(*Response, error)
	cancel    context.CancelFunc
}

func newFuture(cancel context.CancelFunc) *Future {
	if cancel == nil {
		cancel = func() {}
	}
	return &Future{
		done:   make(chan struct{}),
		cancel: cancel,
	}
}

// failedFuture is a future already resolved with err
func failedFuture(err error) *Future {
	f := newFuture(nil)
	f.resolve(nil, err)
	return f
}

// resolve settles the future. It reports false if the future had already left StatePending.
func (f *Future) resolve(resp *Response, err error) bool {
	next := StateSucceeded
	if err != nil {
		next = StateFailed
		resp = nil
	}

	f.mu.Lock()
	if !f.state.CompareAndSwap(int32(StatePending), int32(next)) {
		f.mu.Unlock()
		return false
	}
	f.resp, f.err = resp, err
	callbacks := f.callbacks
	f.callbacks = nil
	close(f.done)
	f.mu.Unlock()

	for _, cb := range callbacks {
		cb(resp, err)
	}
	return true
}

// Cancel aborts the in-flight transport call. It reports false if the future
// had already resolved or been cancelled.
func (f *Future) Cancel() bool {
	f.mu.Lock()
	if !f.state.CompareAndSwap(int32(StatePending), int32(StateCancelled)) {
		f.mu.Unlock()
		return false
	}
	f.err = errors.Cancelled("request cancelled before completion")
	f.callbacks = nil
	close(f.done)
	f.mu.Unlock()

	f.cancel()
	return true
}

// OnComplete registers fn to receive the resolution. If the future already
// resolved, fn runs immediately; if it was cancelled, fn never runs.
func (f *Future) OnComplete(fn func(*Response, error)) {
	f.mu.Lock()
	switch State(f.state.Load()) {
	case StatePending:
		f.callbacks = append(f.callbacks, fn)
		f.mu.Unlock()
	case StateCancelled:
		f.mu.Unlock()
	default:
		resp, err := f.resp, f.err
		f.mu.Unlock()
		fn(resp, err)
	}
}

// Done is closed once the future resolves or is cancelled
func (f *Future) Done() <-chan struct{} {
	return f.done
}

func (f *Future) State() State {
	return State(f.state.Load())
}

// Wait blocks until the future leaves StatePending or ctx is done. Leaving
// Wait through ctx does not cancel the future. A cancelled future reports a
// CANCELLED error.
func (f *Future) Wait(ctx context.Context) (*Response, error) {
	select {
	case <-f.done:
		return f.resp, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Result blocks until the future leaves StatePending
func (f *Future) Result() (*Response, error) {
	<-f.done
	return f.resp, f.err
}
