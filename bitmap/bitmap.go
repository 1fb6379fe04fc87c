package bitmap

import (
	"fmt"
	"math/bits"
	"sync/atomic"
)

// T is a 64 bit set that may be updated concurrently with readers. Bits are
// only ever added.
type T struct{ b uint64 }

func (b *T) AtomicClone() Set        { return Set{atomic.LoadUint64(&b.b)} }
func (b *T) AtomicSetIdx(idx uint)   { atomic.OrUint64(&b.b, 1<<(idx&63)) }
func (b *T) AtomicHas(idx uint) bool { return atomic.LoadUint64(&b.b)&(1<<(idx&63)) > 0 }
func (b *T) AtomicReset() Set        { return Set{atomic.SwapUint64(&b.b, 0)} }

// Set is a point in time copy of a T.
type Set struct{ b uint64 }

func (s *Set) ClearLowest()     { s.b &= s.b - 1 }
func (s Set) Has(idx uint) bool { return s.b&(1<<(idx&63)) > 0 }
func (s Set) Uint64() uint64    { return s.b }
func (s Set) Empty() bool       { return s.b == 0 }
func (s Set) Len() uint         { return uint(bits.OnesCount64(s.b)) }
func (s Set) Lowest() uint      { return uint(bits.TrailingZeros64(s.b)) % 64 }
func (s Set) Highest() uint     { return uint(63-bits.LeadingZeros64(s.b)) % 64 }
func (s Set) String() string    { return fmt.Sprintf("%064b", s.b) }

// Prefix reports if the set is exactly the bits [0, n).
func (s Set) Prefix(n uint) bool {
	if n >= 64 {
		return s.b == ^uint64(0)
	}
	return s.b == 1<<n-1
}
