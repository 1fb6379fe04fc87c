package sizeof

import (
	"testing"

	"github.com/zeebo/assert"
)

func TestSizeof(t *testing.T) {
	assert.Equal(t, Elems[uint64](10), uint64(80))
	assert.Equal(t, Elems[struct{}](10), uint64(0))
	assert.Equal(t, Elems[[3]uint16](2), uint64(12))
	assert.Equal(t, Elems[uintptr](3), 3*Word)
}
