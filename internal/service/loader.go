package service

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	appErrors "github.com/eduhub-vn/reporting-api/pkg/errors"
)

// ErrSuperseded marks a load whose result arrived after a newer load for the
// same consumer had already started. Stale results are discarded, never
// rendered over fresher data.
var ErrSuperseded = appErrors.New("LOAD_SUPERSEDED", http.StatusConflict, "superseded by a newer load")

// SnapshotLoader serializes dashboard loads for one consumer with
// last-request-wins semantics. Starting a load cancels the previous
// in-flight one and bumps the sequence; a load whose sequence is no longer
// current returns ErrSuperseded regardless of how its pipeline run ended.
type SnapshotLoader[T any] struct {
	seq atomic.Uint64

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewSnapshotLoader constructs an empty loader.
func NewSnapshotLoader[T any]() *SnapshotLoader[T] {
	return &SnapshotLoader[T]{}
}

// Load runs fn under a cancelable context tied to this load's sequence
// number. Concurrent calls are safe: every call gets its own sequence and at
// most the newest one returns a usable result.
func (l *SnapshotLoader[T]) Load(ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	loadCtx, cancel := context.WithCancel(ctx)

	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.cancel = cancel
	seq := l.seq.Add(1)
	l.mu.Unlock()

	result, err := fn(loadCtx)

	l.mu.Lock()
	current := l.seq.Load()
	if seq == current {
		cancel()
		l.cancel = nil
	}
	l.mu.Unlock()

	if seq != current {
		var zero T
		return zero, appErrors.Clone(ErrSuperseded, "superseded by a newer load")
	}
	return result, err
}

// Cancel aborts the in-flight load, if any, and invalidates its sequence so
// a late result cannot surface.
func (l *SnapshotLoader[T]) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
		l.seq.Add(1)
	}
}

// LoaderRegistry tracks one SnapshotLoader per consumer key, so supersession
// applies between requests of the same consumer and never across consumers.
type LoaderRegistry[T any] struct {
	mu      sync.Mutex
	loaders map[string]*SnapshotLoader[T]
}

// NewLoaderRegistry constructs an empty registry.
func NewLoaderRegistry[T any]() *LoaderRegistry[T] {
	return &LoaderRegistry[T]{loaders: make(map[string]*SnapshotLoader[T])}
}

// For returns the loader for the given consumer key, creating it on first use.
func (r *LoaderRegistry[T]) For(key string) *SnapshotLoader[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	loader, ok := r.loaders[key]
	if !ok {
		loader = NewSnapshotLoader[T]()
		r.loaders[key] = loader
	}
	return loader
}
