package testhelp

import (
	"testing"

	"github.com/zeebo/assert"
)

func TestAllocator(t *testing.T) {
	tr := Allocator(t)

	p, err := tr.Allocate(24, 8)
	assert.NoError(t, err)
	tr.Deallocate(p, 24, 8)

	assert.Equal(t, tr.Stats().Allocs, uint64(1))
}

func TestName(t *testing.T) {
	for _, c := range Name(100) {
		assert.That(t, c >= 'a' && c <= 'z')
	}
	assert.Equal(t, len(Uint64s(10)), 10)
}
