package bitmap

import (
	"runtime"
	"sync"
	"testing"

	"github.com/zeebo/assert"
)

func TestBitmap(t *testing.T) {
	var bm T

	for i := uint(0); i < 64; i++ {
		bm.AtomicSetIdx(i)
		assert.That(t, bm.AtomicHas(i))

		s := bm.AtomicClone()
		assert.Equal(t, s.Len(), i+1)
		assert.Equal(t, s.Highest(), i)
		assert.Equal(t, s.Lowest(), uint(0))
		assert.That(t, s.Prefix(i+1))
	}

	s := bm.AtomicReset()
	assert.That(t, bm.AtomicClone().Empty())
	for i := uint(0); i < 64; i++ {
		assert.Equal(t, s.Lowest(), i)
		s.ClearLowest()
	}
	assert.That(t, s.Empty())
}

func TestBitmapIdempotent(t *testing.T) {
	var bm T
	bm.AtomicSetIdx(3)
	bm.AtomicSetIdx(3)
	assert.Equal(t, bm.AtomicClone().Uint64(), uint64(1<<3))
	assert.That(t, !bm.AtomicClone().Prefix(3))
}

func TestBitmapConcurrent(t *testing.T) {
	var bm T
	var wg sync.WaitGroup

	for i := uint(0); i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runtime.Gosched()
			bm.AtomicSetIdx(i)
		}()
	}
	wg.Wait()

	assert.That(t, bm.AtomicClone().Prefix(64))
	assert.Equal(t, bm.AtomicClone().String(), "1111111111111111111111111111111111111111111111111111111111111111")
}

func BenchmarkBitmap(b *testing.B) {
	b.Run("NextAll", func(b *testing.B) {
		var bm T
		for i := uint(0); i < 64; i++ {
			bm.AtomicSetIdx(i)
		}

		for b.Loop() {
			s := bm.AtomicClone()
			for !s.Empty() {
				s.ClearLowest()
			}
		}
	})
}
