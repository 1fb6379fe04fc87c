// Package stele is an append-only sequence with one writer and any number of
// lock-free readers.
//
// Elements live in a fixed table of power of two sized blocks that are never
// moved or resized, so a pointer returned by Read stays valid for as long as
// some handle to the sequence is open. The writer publishes an element by
// storing the new length after the element is written, and readers never look
// past the length they loaded.
//
// Handles are reference counted. When the last Writer or Reader is closed the
// blocks are returned to the allocator.
package stele

import (
	"iter"
	"runtime"
	"slices"
	"sync/atomic"

	"github.com/zeebo/errs/v2"

	"github.com/AlyssaRoseDev/stele/alloc"
	"github.com/AlyssaRoseDev/stele/blocks"
)

var (
	// ErrClosed is returned by Close on a handle that is already closed and
	// is the panic value of any other method called on one.
	ErrClosed = errs.Errorf("stele: handle is closed")

	// ErrPointers is returned by New when a raw allocator is combined with
	// an element type that holds Go pointers.
	ErrPointers = blocks.ErrPointers
)

// Option configures a new sequence.
type Option func(*config)

type config struct {
	alloc     alloc.Allocator
	noCleanup bool
}

// WithAllocator makes the sequence allocate its blocks from a. Memory from
// anything but an *alloc.Heap is invisible to the garbage collector, so such
// allocators only accept element types without pointers.
func WithAllocator(a alloc.Allocator) Option {
	return func(c *config) {
		c.alloc = a
	}
}

// WithoutCleanup disables releasing handles that are garbage collected without
// being closed. Blocks of a sequence whose handles are all dropped are then
// never freed, which lets leak checking allocators see the mistake.
func WithoutCleanup() Option {
	return func(c *config) {
		c.noCleanup = true
	}
}

func applyOptions(opts []Option) config {
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

// shared is the state every handle of one sequence points at.
type shared[V any] struct {
	_ [0]func() // no equality

	b         *blocks.T[V]
	refs      atomic.Int64
	noCleanup bool
}

func (s *shared[V]) acquire() { s.refs.Add(1) }

// tryAcquire takes a reference only if the sequence has not been freed.
func (s *shared[V]) tryAcquire() bool {
	for {
		n := s.refs.Load()
		if n <= 0 {
			return false
		} else if s.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

func (s *shared[V]) release() {
	switch n := s.refs.Add(-1); {
	case n == 0:
		s.b.Free()
	case n < 0:
		panic(errs.Errorf("stele: reference count went negative: %d", n))
	}
}

// handle is the part common to Writer and Reader: a reference to the shared
// state that is dropped exactly once.
type handle[V any] struct {
	s       atomic.Pointer[shared[V]]
	cleanup runtime.Cleanup
}

func (h *handle[V]) load() *shared[V] {
	s := h.s.Load()
	if s == nil {
		panic(ErrClosed)
	}
	return s
}

func (h *handle[V]) close() error {
	s := h.s.Swap(nil)
	if s == nil {
		return ErrClosed
	}
	h.cleanup.Stop()
	s.release()
	return nil
}

// New returns the two handles of an empty sequence. Nothing is allocated
// until the first Push.
func New[V any](opts ...Option) (*Writer[V], *Reader[V], error) {
	cfg := applyOptions(opts)

	b, err := blocks.New[V](cfg.alloc)
	if err != nil {
		return nil, nil, err
	}

	s := &shared[V]{b: b, noCleanup: cfg.noCleanup}
	s.refs.Store(1)
	w := newWriter(s)

	s.acquire()
	r := newReader(s)

	return w, r, nil
}

// Collect appends every value of seq in order and returns the handles of
// the resulting sequence.
func Collect[V any](seq iter.Seq[V], opts ...Option) (*Writer[V], *Reader[V], error) {
	w, r, err := New[V](opts...)
	if err != nil {
		return nil, nil, err
	}
	for v := range seq {
		w.Push(v)
	}
	return w, r, nil
}

// FromSlice is Collect over the elements of vs.
func FromSlice[V any](vs []V, opts ...Option) (*Writer[V], *Reader[V], error) {
	return Collect(slices.Values(vs), opts...)
}
