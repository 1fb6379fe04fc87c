package alloc

import (
	"reflect"
	"sync"
	"unsafe"

	"github.com/zeebo/errs/v2"
)

// Allocator hands out raw, uninitialized memory for blocks. Deallocate is
// always called with the same size and alignment that were passed to the
// Allocate call that returned p.
//
// Memory from an Allocator is not scanned by the garbage collector, so it may
// only back element types that contain no Go pointers.
type Allocator interface {
	Allocate(size, align uintptr) (unsafe.Pointer, error)
	Deallocate(p unsafe.Pointer, size, align uintptr)
}

// ErrExhausted is returned by allocators that refuse to hand out more memory.
var ErrExhausted = errs.Errorf("alloc: memory exhausted")

var zerobase uintptr

// DefaultHeap is the allocator used when none is given.
var DefaultHeap = new(Heap)

// Heap allocates from the Go heap. Sequences detect it and allocate typed
// blocks with make directly, so the raw methods below are only reached when a
// Heap is wrapped by another Allocator.
type Heap struct {
	_ [0]func() // no equality

	mu   sync.Mutex
	pins map[unsafe.Pointer][]byte // keeps raw allocations reachable
}

// IsHeap reports if a is the Go heap, either nil or a *Heap.
func IsHeap(a Allocator) bool {
	if a == nil {
		return true
	}
	_, ok := a.(*Heap)
	return ok
}

func (h *Heap) Allocate(size, align uintptr) (unsafe.Pointer, error) {
	if align == 0 || align&(align-1) != 0 {
		return nil, errs.Errorf("alloc: invalid alignment %d", align)
	}
	if size == 0 {
		return unsafe.Pointer(&zerobase), nil
	}

	buf := make([]byte, size+align-1)
	base := unsafe.Pointer(unsafe.SliceData(buf))
	p := unsafe.Add(base, (align-uintptr(base)%align)%align)

	h.mu.Lock()
	if h.pins == nil {
		h.pins = make(map[unsafe.Pointer][]byte)
	}
	h.pins[p] = buf
	h.mu.Unlock()

	return p, nil
}

func (h *Heap) Deallocate(p unsafe.Pointer, size, align uintptr) {
	if size == 0 {
		return
	}

	h.mu.Lock()
	delete(h.pins, p)
	h.mu.Unlock()
}

// Pinned returns the number of raw allocations the heap is keeping alive.
func (h *Heap) Pinned() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pins)
}

// HasPointers reports if values of type t contain Go pointers and therefore
// must live in garbage collected memory.
func HasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Map, reflect.Slice,
		reflect.Chan, reflect.Func, reflect.Interface, reflect.String:
		return true

	case reflect.Array:
		return t.Len() > 0 && HasPointers(t.Elem())

	case reflect.Struct:
		for i := range t.NumField() {
			if HasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false

	default:
		return false
	}
}
