package index

import (
	"math/bits"
	"testing"

	"github.com/zeebo/assert"
)

func TestSplit(t *testing.T) {
	t.Run("Table", func(t *testing.T) {
		for _, tc := range []struct{ i, b, o uint }{
			{0, 0, 0},
			{1, 1, 0},
			{2, 2, 0},
			{3, 2, 1},
			{4, 3, 0},
			{7, 3, 3},
			{8, 4, 0},
			{15, 4, 7},
			{16, 5, 0},
			{31, 5, 15},
			{32, 6, 0},
			{1<<(W-1) - 1, W - 1, 1<<(W-2) - 1},
			{1 << (W - 1), W, 0},
		} {
			b, o := Split(tc.i)
			assert.Equal(t, b, tc.b)
			assert.Equal(t, o, tc.o)
		}
	})

	t.Run("Bijection", func(t *testing.T) {
		// walking blocks in order and offsets within them must reproduce
		// 0, 1, 2, ... exactly.
		next := uint(0)
		for b := uint(0); b < 16; b++ {
			for o := uint(0); o < MaxLen(b); o++ {
				gb, gio := Split(next)
				assert.Equal(t, gb, b)
				assert.Equal(t, gio, o)
				next++
			}
		}
		assert.Equal(t, next, uint(1<<15))
	})

	t.Run("InBounds", func(t *testing.T) {
		for i := uint(0); i < 1<<16; i++ {
			b, o := Split(i)
			assert.That(t, b < W || (b == W && i >= 1<<(W-1)))
			assert.That(t, o < MaxLen(b))
			assert.Equal(t, First(b)+o, i)
		}
	})

	t.Run("Boundaries", func(t *testing.T) {
		for k := uint(1); k < W; k++ {
			p := uint(1) << k

			b, o := Split(p)
			assert.Equal(t, b, k+1)
			assert.Equal(t, o, uint(0))

			b, o = Split(p - 1)
			assert.Equal(t, b, k)
			assert.Equal(t, o, MaxLen(k)-1)
		}
	})
}

func TestMaxLen(t *testing.T) {
	assert.Equal(t, MaxLen(0), uint(1))
	assert.Equal(t, MaxLen(1), uint(1))
	for b := uint(2); b < W; b++ {
		assert.Equal(t, MaxLen(b), uint(1)<<(b-1))
		assert.Equal(t, MaxLen(b), 2*MaxLen(b-1))
	}
}

func TestStarts(t *testing.T) {
	for i := uint(0); i < 1<<16; i++ {
		_, o := Split(i)
		assert.Equal(t, Starts(i), o == 0)
		assert.Equal(t, Starts(i), i <= 1 || bits.OnesCount(i) == 1)
	}
}

func TestBlocks(t *testing.T) {
	assert.Equal(t, Blocks(0), uint(0))
	assert.Equal(t, Blocks(1), uint(1))
	assert.Equal(t, Blocks(2), uint(2))
	assert.Equal(t, Blocks(3), uint(3))
	assert.Equal(t, Blocks(4), uint(3))
	assert.Equal(t, Blocks(5), uint(4))
	assert.Equal(t, Blocks(8), uint(4))
	assert.Equal(t, Blocks(9), uint(5))

	// Blocks must count exactly the blocks a run of pushes installs.
	installed := uint(0)
	for n := uint(0); n < 1<<12; n++ {
		assert.Equal(t, Blocks(n), installed)
		if Starts(n) {
			installed++
		}
		assert.That(t, Cap(Blocks(n+1)) >= n+1)
		assert.That(t, Cap(Blocks(n+1)-1) < n+1)
	}
}

func TestCap(t *testing.T) {
	sum := uint(0)
	for k := uint(0); k < W; k++ {
		assert.Equal(t, Cap(k), sum)
		sum += MaxLen(k)
	}
}

func BenchmarkSplit(b *testing.B) {
	var sb, so uint
	for i := uint(0); b.Loop(); i++ {
		bb, oo := Split(i)
		sb += bb
		so += oo
	}
	_, _ = sb, so
}
