// Package snapshot stores the published prefix of a sequence as bytes and
// builds a new sequence back from them.
//
// The format is little endian: the magic "stl\x01", the element count as a
// varint, every element as written by its AppendTo method, and finally the
// xxh3 hash of everything before it.
//
// A count larger than the number of element bytes is only accepted up to
// MaxEmpty, so sequences of elements that encode to nothing are limited to
// that length.
package snapshot

import (
	"encoding/binary"
	"io"
	"unsafe"

	"github.com/zeebo/errs/v2"
	"github.com/zeebo/xxh3"

	"github.com/AlyssaRoseDev/stele"
	"github.com/AlyssaRoseDev/stele/blocks"
	"github.com/AlyssaRoseDev/stele/rwutils"
)

var le = binary.LittleEndian

const (
	magic   = uint32('s') | uint32('t')<<8 | uint32('l')<<16 | 0x01<<24
	sumSize = 8
)

// MaxEmpty is the largest count Decode accepts beyond one element per byte.
const MaxEmpty = 1 << 20

// RW is the constraint for element types that can be stored: *V must know
// how to encode and decode itself.
type RW[V any] interface {
	*V
	rwutils.RW
}

// Encode writes every element of r published at the time of the call to out
// and returns the number of bytes written.
func Encode[V any, P RW[V]](out io.Writer, r *stele.Reader[V]) (int, error) {
	h := xxh3.New()

	var w rwutils.W
	w.Init(io.MultiWriter(out, h), nil)

	it := r.Iter()
	if unsafe.Sizeof(*new(V)) == 0 && it.Remaining() > MaxEmpty {
		return 0, errs.Errorf("snapshot: %d empty elements exceeds limit of %d", it.Remaining(), MaxEmpty)
	}

	w.Uint32(magic)
	w.Varint(uint64(it.Remaining()))
	for it.Next() {
		P(it.Ptr()).AppendTo(&w)
	}
	if err := w.Done(); err != nil {
		return int(w.Written()), err
	}

	var sum [sumSize]byte
	le.PutUint64(sum[:], h.Sum64())
	n, err := out.Write(sum[:])

	return int(w.Written()) + n, errs.Wrap(err)
}

// Decode verifies data and appends its elements to a new sequence created
// with opts.
func Decode[V any, P RW[V]](data []byte, opts ...stele.Option) (
	w *stele.Writer[V], r *stele.Reader[V], err error) {

	if len(data) < 4+1+sumSize {
		return nil, nil, errs.Errorf("snapshot: too short: %d bytes", len(data))
	}

	body := data[:len(data)-sumSize]
	if exp, got := le.Uint64(data[len(body):]), xxh3.Hash(body); exp != got {
		return nil, nil, errs.Errorf("snapshot: checksum mismatch: stored %016x computed %016x", exp, got)
	}

	var rd rwutils.R
	rd.Init(body)
	if m := rd.Uint32(); m != magic {
		return nil, nil, errs.Errorf("snapshot: bad magic: %08x", m)
	}
	count := rd.Varint()
	if rem := uint64(rd.Remaining()); count > rem && count > MaxEmpty {
		return nil, nil, errs.Errorf("snapshot: count %d with only %d bytes of elements", count, rem)
	}

	w, r, err = stele.New[V](opts...)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if rec := recover(); rec != nil {
			ae, ok := rec.(*blocks.AllocError)
			if !ok {
				panic(rec)
			}
			err = errs.Wrap(ae)
		}
		if err != nil {
			err = errs.Combine(err, w.Close(), r.Close())
			w, r = nil, nil
		}
	}()

	for i := uint64(0); i < count && rd.Err() == nil; i++ {
		var v V
		P(&v).ReadFrom(&rd)
		w.Push(v)
	}

	rest, err := rd.Done()
	if err != nil {
		return w, r, errs.Wrap(err)
	} else if len(rest) > 0 {
		return w, r, errs.Errorf("snapshot: %d bytes of trailing data", len(rest))
	}
	return w, r, nil
}
