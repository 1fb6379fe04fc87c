//go:build stelechaos

package sched

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/zeebo/errs/v2"
	"github.com/zeebo/mwc"
)

const Enabled = true

// yieldOneIn is the inverse probability that a Yield reschedules.
const yieldOneIn = 4

var rngs = sync.Pool{New: func() any { return mwc.Rand() }}

func Yield() {
	rng := rngs.Get().(*mwc.T)
	n := rng.Uint64n(yieldOneIn)
	rngs.Put(rng)

	if n == 0 {
		runtime.Gosched()
	}
}

type Owner struct {
	_ [0]func() // no equality

	in atomic.Int32
}

func (o *Owner) Enter() {
	if !o.in.CompareAndSwap(0, 1) {
		panic(errs.Errorf("stele: concurrent use of a single writer"))
	}
	Yield()
}

func (o *Owner) Exit() {
	Yield()
	o.in.Store(0)
}
