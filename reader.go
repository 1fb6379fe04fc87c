package stele

import (
	"runtime"
	"unsafe"
)

// Reader is a handle that can read a sequence. It is safe for concurrent use
// by multiple goroutines, including concurrently with the Writer. Close is the
// exception: it must not overlap any other use of the same Reader, because
// closing the last handle frees the blocks.
//
// Lengths reported by a Reader are snapshots: they may be stale by the time
// they are used, but never shrink.
type Reader[V any] struct {
	_ [0]func() // no equality

	h handle[V]
}

func newReader[V any](s *shared[V]) *Reader[V] {
	r := new(Reader[V])
	r.h.s.Store(s)
	if !s.noCleanup {
		r.h.cleanup = runtime.AddCleanup(r, (*shared[V]).release, s)
	}
	return r
}

// Read returns a pointer to element i. It panics if i is out of range.
func (r *Reader[V]) Read(i int) *V { return read(r.h.load(), i) }

// TryRead is Read that reports false instead of panicking.
func (r *Reader[V]) TryRead(i int) (*V, bool) { return tryRead(r.h.load(), i) }

// Get returns a copy of element i. It panics if i is out of range.
func (r *Reader[V]) Get(i int) V { return *r.Read(i) }

func (r *Reader[V]) TryGet(i int) (v V, ok bool) {
	p, ok := r.TryRead(i)
	if ok {
		v = *p
	}
	return v, ok
}

// Len returns the number of published elements.
func (r *Reader[V]) Len() int { return int(r.h.load().b.Len()) }

// IsEmpty reports if nothing has been published yet. Once it returns false it
// always will.
func (r *Reader[V]) IsEmpty() bool { return r.Len() == 0 }

// Clone returns another handle to the same sequence.
func (r *Reader[V]) Clone() *Reader[V] {
	s := r.h.load()
	s.acquire()
	return newReader(s)
}

// Weak returns a reference that does not keep the sequence alive.
func (r *Reader[V]) Weak() Weak[V] { return Weak[V]{s: r.h.load()} }

func (r *Reader[V]) Size() uint64 {
	return 0 +
		/* shared */ r.h.load().b.Size() + 8 + 8 +
		/* h      */ uint64(unsafe.Sizeof(r.h)) +
		0
}

// Close releases the reader's reference. It must not run concurrently with
// any other method on r. Other handles, including clones of r, are unaffected.
func (r *Reader[V]) Close() error { return r.h.close() }

// Weak refers to a sequence without keeping its blocks alive.
type Weak[V any] struct {
	s *shared[V]
}

// Upgrade returns a new Reader if any handle to the sequence is still open.
func (w Weak[V]) Upgrade() (*Reader[V], bool) {
	if w.s == nil || !w.s.tryAcquire() {
		return nil, false
	}
	return newReader(w.s), true
}
