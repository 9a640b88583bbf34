package imagestore

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// Fault describes an injected failure.
type Fault struct {
	// FailAfterBytes fails reads once this many bytes have been read
	// from a matching image. Negative disables the limit.
	FailAfterBytes int64
	// FailOnOpen fails Open outright.
	FailOnOpen bool
	// Err is the error to inject. Defaults to a generic injected error.
	Err error
}

var errInjected = errors.New("imagestore: injected fault")

// FaultyStore wraps a Store and injects read failures according to
// per-name rules. It exists so consumers can exercise their error
// handling against backend failures without a flaky backend.
type FaultyStore struct {
	inner Store

	mu    sync.Mutex
	rules map[string]Fault
	read  map[string]int64
}

var _ Store = (*FaultyStore)(nil)

// NewFaultyStore creates a fault-injecting wrapper around inner. With
// no rules it behaves exactly like inner.
func NewFaultyStore(inner Store) *FaultyStore {
	return &FaultyStore{
		inner: inner,
		rules: make(map[string]Fault),
		read:  make(map[string]int64),
	}
}

// AddRule applies fault to every image whose name contains pattern.
func (s *FaultyStore) AddRule(pattern string, fault Fault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fault.Err == nil {
		fault.Err = errInjected
	}
	s.rules[pattern] = fault
}

func (s *FaultyStore) match(name string) (Fault, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for pattern, fault := range s.rules {
		if strings.Contains(name, pattern) {
			return fault, true
		}
	}
	return Fault{}, false
}

// Open opens an image, applying any matching fault rule.
func (s *FaultyStore) Open(ctx context.Context, name string) (Blob, error) {
	fault, ok := s.match(name)
	if ok && fault.FailOnOpen {
		return nil, fault.Err
	}
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok || fault.FailAfterBytes < 0 {
		return b, nil
	}
	return &faultyBlob{inner: b, store: s, name: name, fault: fault}, nil
}

// Create passes through to the inner store.
func (s *FaultyStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	return s.inner.Create(ctx, name)
}

// Put passes through to the inner store.
func (s *FaultyStore) Put(ctx context.Context, name string, data []byte) error {
	return s.inner.Put(ctx, name, data)
}

// Delete passes through to the inner store.
func (s *FaultyStore) Delete(ctx context.Context, name string) error {
	return s.inner.Delete(ctx, name)
}

// List passes through to the inner store.
func (s *FaultyStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

type faultyBlob struct {
	inner Blob
	store *FaultyStore
	name  string
	fault Fault
}

func (b *faultyBlob) ReadAt(p []byte, off int64) (int, error) {
	b.store.mu.Lock()
	already := b.store.read[b.name]
	b.store.read[b.name] = already + int64(len(p))
	b.store.mu.Unlock()

	if already+int64(len(p)) > b.fault.FailAfterBytes {
		return 0, b.fault.Err
	}
	return b.inner.ReadAt(p, off)
}

func (b *faultyBlob) Close() error {
	return b.inner.Close()
}

func (b *faultyBlob) Size() int64 {
	return b.inner.Size()
}
