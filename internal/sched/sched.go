//go:build !stelechaos

// Package sched holds the hooks the block store calls between the steps of
// its publication protocol. In normal builds they compile to nothing. Building
// with -tags stelechaos swaps in versions that randomly yield the processor at
// every hook and check that the single writer is never entered twice, which
// makes the race detector and the concurrency tests explore many more
// interleavings.
package sched

// Enabled reports if the perturbing backend is compiled in.
const Enabled = false

// Yield is a point where another goroutine may be scheduled.
func Yield() {}

// Owner guards a section that only one goroutine may be inside.
type Owner struct{}

func (*Owner) Enter() {}
func (*Owner) Exit()  {}
