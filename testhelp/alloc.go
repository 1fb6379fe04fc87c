package testhelp

import (
	"testing"

	"github.com/zeebo/assert"

	"github.com/AlyssaRoseDev/stele/alloc"
)

// Allocator returns a tracking allocator that fails the test at cleanup if
// any allocation was leaked or misused.
func Allocator(tb testing.TB) *alloc.Tracker {
	tr := alloc.NewTracker(nil)
	tb.Cleanup(func() { assert.NoError(tb, tr.Check()) })
	return tr
}
