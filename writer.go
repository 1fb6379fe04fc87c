package stele

import (
	"fmt"
	"io"
	"runtime"
	"unsafe"
)

// noCopy makes go vet flag copies of the value that contains it.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Writer is the only handle that can append to a sequence. It may be handed
// to another goroutine but must never be used by two goroutines at once.
type Writer[V any] struct {
	_ noCopy

	h handle[V]
}

func newWriter[V any](s *shared[V]) *Writer[V] {
	w := new(Writer[V])
	w.h.s.Store(s)
	if !s.noCleanup {
		w.h.cleanup = runtime.AddCleanup(w, (*shared[V]).release, s)
	}
	return w
}

// Push appends v and returns its index. It panics with a *blocks.AllocError
// if storage for v cannot be allocated.
func (w *Writer[V]) Push(v V) int {
	return int(w.h.load().b.Push(v))
}

// Len returns the number of elements appended so far.
func (w *Writer[V]) Len() int { return int(w.h.load().b.Len()) }

func (w *Writer[V]) IsEmpty() bool { return w.Len() == 0 }

// Read returns a pointer to element i. It panics if i is out of range.
func (w *Writer[V]) Read(i int) *V { return read(w.h.load(), i) }

// TryRead is Read that reports false instead of panicking.
func (w *Writer[V]) TryRead(i int) (*V, bool) { return tryRead(w.h.load(), i) }

// Get returns a copy of element i. It panics if i is out of range.
func (w *Writer[V]) Get(i int) V { return *w.Read(i) }

func (w *Writer[V]) TryGet(i int) (v V, ok bool) {
	p, ok := w.TryRead(i)
	if ok {
		v = *p
	}
	return v, ok
}

// Reader returns a new reader handle for the sequence.
func (w *Writer[V]) Reader() *Reader[V] {
	s := w.h.load()
	s.acquire()
	return newReader(s)
}

func (w *Writer[V]) Size() uint64 {
	return 0 +
		/* shared */ w.h.load().b.Size() + 8 + 8 +
		/* h      */ uint64(unsafe.Sizeof(w.h)) +
		0
}

// Dump writes a description of the block layout to out.
func (w *Writer[V]) Dump(out io.Writer) {
	s := w.h.load()
	fmt.Fprintf(out, "writer[%p](refs:%d):\n", w, s.refs.Load())
	s.b.Dump(out)
}

// Close releases the writer's reference. No more values can be appended
// afterwards, but readers keep working. Like every Writer method it must not
// overlap another call on w.
func (w *Writer[V]) Close() error { return w.h.close() }

func read[V any](s *shared[V], i int) *V {
	p, ok := tryRead(s, i)
	if !ok {
		panic(fmt.Sprintf("stele: index out of range [%d] with length %d", i, s.b.Len()))
	}
	return p
}

func tryRead[V any](s *shared[V], i int) (*V, bool) {
	if i < 0 {
		return nil, false
	}
	return s.b.Lookup(uint(i))
}
