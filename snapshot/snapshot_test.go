package snapshot

import (
	"bytes"
	"testing"

	"github.com/zeebo/assert"
	"github.com/zeebo/mwc"
	"github.com/zeebo/xxh3"

	"github.com/AlyssaRoseDev/stele"
	"github.com/AlyssaRoseDev/stele/num"
	"github.com/AlyssaRoseDev/stele/testhelp"
	"github.com/AlyssaRoseDev/stele/varint"
)

func encode[V any, P RW[V]](t *testing.T, vs []V) []byte {
	w, r, err := stele.FromSlice(vs)
	assert.NoError(t, err)
	defer w.Close()
	defer r.Close()

	var buf bytes.Buffer
	n, err := Encode[V, P](&buf, r)
	assert.NoError(t, err)
	assert.Equal(t, n, buf.Len())
	return buf.Bytes()
}

func reseal(body []byte) []byte {
	out := append([]byte(nil), body...)
	return le.AppendUint64(out, xxh3.Hash(body))
}

func TestRoundTrip(t *testing.T) {
	t.Run("U64", func(t *testing.T) {
		rng := mwc.Rand()
		vs := make([]num.U64, 1000)
		for i := range vs {
			vs[i] = num.U64(rng.Uint64())
		}

		data := encode(t, vs)
		assert.Equal(t, len(data), 4+2+8*len(vs)+sumSize)

		w, r, err := Decode[num.U64](data, stele.WithAllocator(testhelp.Allocator(t)))
		assert.NoError(t, err)
		defer w.Close()
		defer r.Close()

		assert.Equal(t, r.Len(), len(vs))
		for i, v := range r.All() {
			assert.Equal(t, *v, vs[i])
		}

		// the decoded sequence keeps accepting appends
		assert.Equal(t, w.Push(7), len(vs))
	})

	t.Run("I64", func(t *testing.T) {
		vs := []num.I64{0, -1, 1, -1 << 40, 1<<63 - 1}

		w, r, err := Decode[num.I64](encode(t, vs))
		assert.NoError(t, err)
		defer w.Close()
		defer r.Close()

		for i, v := range r.All() {
			assert.Equal(t, *v, vs[i])
		}
	})

	t.Run("Empty", func(t *testing.T) {
		data := encode[num.U8](t, nil)
		assert.Equal(t, len(data), 4+1+sumSize)

		w, r, err := Decode[num.U8](data)
		assert.NoError(t, err)
		defer w.Close()
		defer r.Close()
		assert.That(t, r.IsEmpty())
	})

	t.Run("ZeroSize", func(t *testing.T) {
		data := encode(t, make([]num.E, 300))

		w, r, err := Decode[num.E](data)
		assert.NoError(t, err)
		defer w.Close()
		defer r.Close()
		assert.Equal(t, r.Len(), 300)
	})
}

func TestEncodePrefix(t *testing.T) {
	w, r, err := stele.New[num.U16]()
	assert.NoError(t, err)
	defer w.Close()
	defer r.Close()

	for i := 0; i < 10; i++ {
		w.Push(num.U16(i))
	}

	var buf bytes.Buffer
	_, err = Encode(&buf, r)
	assert.NoError(t, err)
	w.Push(10)

	w2, r2, err := Decode[num.U16](buf.Bytes())
	assert.NoError(t, err)
	defer w2.Close()
	defer r2.Close()
	assert.Equal(t, r2.Len(), 10)
	assert.Equal(t, r2.Get(9), num.U16(9))
}

func TestDecodeErrors(t *testing.T) {
	good := encode(t, []num.U32{1, 2, 3})
	body := good[:len(good)-sumSize]

	for name, data := range map[string][]byte{
		"Short":     good[:5],
		"Checksum":  append(append([]byte(nil), body...), 0, 0, 0, 0, 0, 0, 0, 0),
		"Flipped":   append([]byte{good[0] ^ 1}, good[1:]...),
		"Magic":     reseal(append([]byte{'x'}, body[1:]...)),
		"Trailing":  reseal(append(append([]byte(nil), body...), 0xaa)),
		"Truncated": reseal(body[:len(body)-1]),
	} {
		t.Run(name, func(t *testing.T) {
			tr := testhelp.Allocator(t)
			w, r, err := Decode[num.U32](data, stele.WithAllocator(tr))
			assert.Error(t, err)
			assert.That(t, w == nil)
			assert.That(t, r == nil)
		})
	}
}

func TestDecodeAllocFailure(t *testing.T) {
	vs := make([]num.U64, 100)
	data := encode(t, vs)

	tr := testhelp.Allocator(t)
	tr.SetLimit(64)

	_, _, err := Decode[num.U64](data, stele.WithAllocator(tr))
	assert.Error(t, err)
}

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) { return 0, bytes.ErrTooLarge }

func TestEncodeWriteError(t *testing.T) {
	w, r, err := stele.FromSlice([]num.U8{1, 2, 3})
	assert.NoError(t, err)
	defer w.Close()
	defer r.Close()

	_, err = Encode(failWriter{}, r)
	assert.Error(t, err)
}

func countOnly(count uint64) []byte {
	body := le.AppendUint32(nil, magic)
	body = varint.Append(body, count)
	return reseal(body)
}

func TestDecodeCount(t *testing.T) {
	t.Run("Huge", func(t *testing.T) {
		_, _, err := Decode[num.E](countOnly(1 << 40))
		assert.Error(t, err)

		_, _, err = Decode[num.U64](countOnly(1 << 40))
		assert.Error(t, err)
	})

	t.Run("EmptyLimit", func(t *testing.T) {
		_, _, err := Decode[num.E](countOnly(MaxEmpty + 1))
		assert.Error(t, err)

		w, r, err := Decode[num.E](countOnly(MaxEmpty))
		assert.NoError(t, err)
		defer w.Close()
		defer r.Close()
		assert.Equal(t, r.Len(), MaxEmpty)
	})

	t.Run("Short", func(t *testing.T) {
		body := le.AppendUint32(nil, magic)
		body = varint.Append(body, 1000)
		body = le.AppendUint64(body, 1)

		_, _, err := Decode[num.U64](reseal(body), stele.WithAllocator(testhelp.Allocator(t)))
		assert.Error(t, err)
	})
}

func TestEncodeEmptyLimit(t *testing.T) {
	w, r, err := stele.New[num.E]()
	assert.NoError(t, err)
	defer w.Close()
	defer r.Close()

	for i := 0; i < MaxEmpty; i++ {
		w.Push(num.E{})
	}

	var buf bytes.Buffer
	_, err = Encode(&buf, r)
	assert.NoError(t, err)

	w.Push(num.E{})
	buf.Reset()
	_, err = Encode(&buf, r)
	assert.Error(t, err)
	assert.Equal(t, buf.Len(), 0)
}
