// Package blocks implements the storage under a stele: a fixed table of
// one-shot block slots where block b holds index.MaxLen(b) elements. Elements
// are never moved once written, so a pointer to one stays valid until Free.
//
// A T has exactly one writer. Any number of goroutines may call Len, Ptr, At
// and Lookup concurrently with the writer: the length counter is stored only
// after the element and, if needed, its block are fully published.
package blocks

import (
	"fmt"
	"io"
	"reflect"
	"sync/atomic"
	"unsafe"

	"github.com/zeebo/errs/v2"

	"github.com/AlyssaRoseDev/stele/alloc"
	"github.com/AlyssaRoseDev/stele/bitmap"
	"github.com/AlyssaRoseDev/stele/index"
	"github.com/AlyssaRoseDev/stele/internal/sched"
	"github.com/AlyssaRoseDev/stele/sizeof"
)

// ErrPointers is returned when a raw allocator is asked to back an element
// type that holds Go pointers.
var ErrPointers = errs.Errorf("blocks: element type contains pointers and needs the heap allocator")

// AllocError is the panic value of a Push whose block could not be allocated.
type AllocError struct {
	Block uint
	Size  uintptr
	Err   error
}

func (e *AllocError) Error() string {
	return fmt.Sprintf("blocks: allocating block %d (%d bytes): %v", e.Block, e.Size, e.Err)
}

func (e *AllocError) Unwrap() error { return e.Err }

var zerobase uintptr

// cell is the storage for one element. It is only ever written whole, by the
// push that publishes it, so there is no readable state before the write.
type cell[V any] struct{ v V }

type T[V any] struct {
	_ [0]func() // no equality

	slots [index.W]atomic.Pointer[cell[V]]
	n     atomic.Uint64
	used  bitmap.T // slots that have been installed

	a     alloc.Allocator
	heap  bool
	size  uintptr
	align uintptr

	own sched.Owner
}

// New returns an empty T whose blocks come from a. A nil a, or a *alloc.Heap,
// allocates typed memory from the Go heap.
func New[V any](a alloc.Allocator) (*T[V], error) {
	t := &T[V]{
		a:     a,
		heap:  alloc.IsHeap(a),
		size:  unsafe.Sizeof(cell[V]{}),
		align: unsafe.Alignof(cell[V]{}),
	}
	if !t.heap && t.size > 0 && alloc.HasPointers(reflect.TypeFor[V]()) {
		return nil, errs.Wrap(ErrPointers)
	}
	return t, nil
}

func (t *T[V]) Size() uint64 {
	return 0 +
		/* blocks */ sizeof.Elems[cell[V]](t.Cap()) +
		/* slots  */ index.W*sizeof.Word +
		/* n      */ 8 +
		/* used   */ 8 +
		/* a      */ 2*sizeof.Word +
		/* heap   */ 8 +
		/* size   */ sizeof.Word +
		/* align  */ sizeof.Word +
		0
}

// Len returns the number of published elements.
func (t *T[V]) Len() uint { return uint(t.n.Load()) }

// Cap returns the number of elements the installed blocks hold.
func (t *T[V]) Cap() uint {
	s := t.used.AtomicClone()
	if s.Empty() {
		return 0
	}
	return index.Cap(s.Highest() + 1)
}

// Push appends v and returns its index. It must only be called by the single
// writer. It panics with an *AllocError if a new block cannot be allocated.
func (t *T[V]) Push(v V) uint {
	t.own.Enter()
	defer t.own.Exit()

	i := uint(t.n.Load())
	b, o := index.Split(i)
	if index.Starts(i) {
		t.install(b)
	}
	sched.Yield()

	*t.cellAt(t.slots[b].Load(), o) = cell[V]{v: v}
	sched.Yield()

	t.n.Store(uint64(i + 1))
	return i
}

func (t *T[V]) cellAt(p *cell[V], o uint) *cell[V] {
	return (*cell[V])(unsafe.Add(unsafe.Pointer(p), uintptr(o)*t.size))
}

func (t *T[V]) install(b uint) {
	p := t.alloc(b)
	sched.Yield()

	if !t.slots[b].CompareAndSwap(nil, p) {
		t.dealloc(b, p)
		panic(errs.Errorf("blocks: slot %d installed twice", b))
	}
	t.used.AtomicSetIdx(b)
}

func (t *T[V]) alloc(b uint) *cell[V] {
	n := index.MaxLen(b)

	switch {
	case t.size == 0:
		return (*cell[V])(unsafe.Pointer(&zerobase))

	case t.heap:
		return unsafe.SliceData(make([]cell[V], n))
	}

	if uintptr(n) > ^uintptr(0)/t.size {
		panic(&AllocError{Block: b, Size: ^uintptr(0), Err: errs.Errorf("block size overflows")})
	}
	size := uintptr(n) * t.size

	p, err := t.a.Allocate(size, t.align)
	if err != nil {
		panic(&AllocError{Block: b, Size: size, Err: err})
	}
	return (*cell[V])(p)
}

func (t *T[V]) dealloc(b uint, p *cell[V]) {
	if t.size == 0 || t.heap {
		return
	}
	t.a.Deallocate(unsafe.Pointer(p), uintptr(index.MaxLen(b))*t.size, t.align)
}

// Ptr returns a pointer to element i without checking it against the length.
// i must be less than a length previously observed with Len.
func (t *T[V]) Ptr(i uint) *V {
	b, o := index.Split(i)
	return &t.cellAt(t.slots[b].Load(), o).v
}

// Lookup returns a pointer to element i if it has been published.
func (t *T[V]) Lookup(i uint) (*V, bool) {
	if i >= t.Len() {
		return nil, false
	}
	return t.Ptr(i), true
}

// At is Lookup that panics when i is out of range.
func (t *T[V]) At(i uint) *V {
	if n := t.Len(); i >= n {
		panic(fmt.Sprintf("blocks: index out of range [%d] with length %d", i, n))
	}
	return t.Ptr(i)
}

// Free releases every installed block and resets t to empty. It returns the
// number of blocks released. No other goroutine may be using t.
func (t *T[V]) Free() (freed uint) {
	for b := uint(0); b < index.W; b++ {
		if p := t.slots[b].Swap(nil); p != nil {
			t.dealloc(b, p)
			freed++
		}
	}
	t.n.Store(0)
	t.used.AtomicReset()
	return freed
}

// Dump writes the installed blocks and how full each one is.
func (t *T[V]) Dump(w io.Writer) {
	n := t.Len()
	fmt.Fprintf(w, "blocks[%p](len:%d, cap:%d, elem:%d, heap:%v):\n", t, n, t.Cap(), t.size, t.heap)

	for s := t.used.AtomicClone(); !s.Empty(); s.ClearLowest() {
		b := s.Lowest()
		first, size := index.First(b), index.MaxLen(b)
		fill := uint(0)
		if n > first {
			fill = min(n-first, size)
		}
		fmt.Fprintf(w, "    block[%d](ptr:%p, first:%d, fill:%d/%d)\n", b, t.slots[b].Load(), first, fill, size)
	}
}
