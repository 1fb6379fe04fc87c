package stele

import (
	"iter"
	"runtime"

	"github.com/AlyssaRoseDev/stele/blocks"
)

// Iter walks the elements that were published when it was created. Values
// appended afterwards are not visited. It is only valid while the handle that
// created it is open. The iterator keeps that handle reachable, so a handle
// dropped without Close is not released while the iterator is in use.
type Iter[V any] struct {
	r   *Reader[V]
	b   *blocks.T[V]
	i   uint
	n   uint
	cur *V
}

// Iter returns an iterator over the current elements.
func (r *Reader[V]) Iter() Iter[V] {
	b := r.h.load().b
	return Iter[V]{r: r, b: b, n: b.Len()}
}

// Next advances to the next element and reports if there was one.
func (it *Iter[V]) Next() bool {
	if it.i >= it.n {
		it.cur = nil
		return false
	}
	it.cur = it.b.Ptr(it.i)
	it.i++
	runtime.KeepAlive(it.r)
	return true
}

// Index returns the index of the current element.
func (it *Iter[V]) Index() int { return int(it.i) - 1 }

// Ptr returns a pointer to the current element.
func (it *Iter[V]) Ptr() *V { return it.cur }

// Value returns a copy of the current element.
func (it *Iter[V]) Value() V { return *it.cur }

// Remaining returns how many more times Next will return true.
func (it *Iter[V]) Remaining() int { return int(it.n - it.i) }

// All yields the index and a pointer to every element published when the
// iteration starts.
func (r *Reader[V]) All() iter.Seq2[int, *V] {
	return func(yield func(int, *V) bool) {
		for it := r.Iter(); it.Next(); {
			if !yield(it.Index(), it.Ptr()) {
				return
			}
		}
	}
}

// Values yields a copy of every element published when the iteration starts.
func (r *Reader[V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for it := r.Iter(); it.Next(); {
			if !yield(it.Value()) {
				return
			}
		}
	}
}

// Live yields copies of the elements and checks the length again before
// every step, so it also visits elements appended during the iteration. It
// stops once it has caught up with the writer.
func (r *Reader[V]) Live() iter.Seq[V] {
	return func(yield func(V) bool) {
		defer runtime.KeepAlive(r)

		b := r.h.load().b
		for i := uint(0); i < b.Len(); i++ {
			if !yield(*b.Ptr(i)) {
				return
			}
		}
	}
}
