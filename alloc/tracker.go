package alloc

import (
	"sync"
	"unsafe"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/zeebo/errs/v2"
)

// Stats counts what a Tracker has seen.
type Stats struct {
	Allocs    uint64
	Frees     uint64
	Live      uint64
	LiveBytes uint64
	PeakBytes uint64
}

type allocation struct {
	id    uint32
	size  uintptr
	align uintptr
}

// Tracker wraps an Allocator and records every allocation so that leaks,
// double frees and frees with the wrong size can be reported. Misuse is
// recorded rather than panicking and is returned from Err.
type Tracker struct {
	_ [0]func() // no equality

	a Allocator

	mu    sync.Mutex
	next  uint32
	live  map[unsafe.Pointer]allocation
	ids   *roaring.Bitmap // ids of live allocations
	stats Stats
	limit uint64
	err   error
}

// NewTracker returns a Tracker allocating from a, or from a fresh Heap if a is
// nil.
func NewTracker(a Allocator) *Tracker {
	if a == nil {
		a = new(Heap)
	}
	return &Tracker{
		a:    a,
		live: make(map[unsafe.Pointer]allocation),
		ids:  roaring.New(),
	}
}

// SetLimit makes allocations fail with ErrExhausted once the live bytes
// would exceed limit. Zero removes the limit.
func (t *Tracker) SetLimit(limit uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.limit = limit
}

func (t *Tracker) Allocate(size, align uintptr) (unsafe.Pointer, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if size == 0 {
		return nil, errs.Errorf("alloc: zero sized allocation")
	}
	if t.limit > 0 && t.stats.LiveBytes+uint64(size) > t.limit {
		return nil, errs.Errorf("%w: %d live + %d requested > %d limit",
			ErrExhausted, t.stats.LiveBytes, size, t.limit)
	}

	p, err := t.a.Allocate(size, align)
	if err != nil {
		return nil, errs.Wrap(err)
	} else if p == nil {
		return nil, errs.Errorf("alloc: allocator returned nil")
	}

	id := t.next
	t.next++
	t.live[p] = allocation{id: id, size: size, align: align}
	t.ids.Add(id)

	t.stats.Allocs++
	t.stats.Live++
	t.stats.LiveBytes += uint64(size)
	t.stats.PeakBytes = max(t.stats.PeakBytes, t.stats.LiveBytes)

	return p, nil
}

func (t *Tracker) Deallocate(p unsafe.Pointer, size, align uintptr) {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, ok := t.live[p]
	if !ok {
		t.err = errs.Combine(t.err, errs.Errorf("alloc: free of unknown or already freed pointer %p", p))
		return
	}
	if a.size != size || a.align != align {
		t.err = errs.Combine(t.err, errs.Errorf(
			"alloc: allocation %d freed with size %d align %d but allocated with size %d align %d",
			a.id, size, align, a.size, a.align))
	}

	delete(t.live, p)
	t.ids.Remove(a.id)

	t.stats.Frees++
	t.stats.Live--
	t.stats.LiveBytes -= uint64(a.size)

	t.a.Deallocate(p, a.size, a.align)
}

// Stats returns a copy of the counters.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// Leaked returns the ids of allocations that have not been freed, in
// allocation order.
func (t *Tracker) Leaked() []uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ids.ToArray()
}

// Err returns every misuse recorded so far.
func (t *Tracker) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Check returns Err combined with an error if any allocation is still live.
func (t *Tracker) Check() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	err := t.err
	if n := t.ids.GetCardinality(); n > 0 {
		err = errs.Combine(err, errs.Errorf("alloc: %d allocations leaked: %v", n, t.ids.ToArray()))
	}
	return err
}
