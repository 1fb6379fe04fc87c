package rwutils

import (
	"encoding/binary"
	"io"

	"github.com/zeebo/errs/v2"

	"github.com/AlyssaRoseDev/stele/varint"
)

var le = binary.LittleEndian

// RW is implemented by pointers to values that can be stored in a snapshot.
type RW interface {
	AppendTo(w *W)
	ReadFrom(r *R)
}

// W buffers encoded values in front of an io.Writer. The first write error is
// kept and every later call becomes a no-op.
type W struct {
	buf []byte
	err error
	w   io.Writer
	n   int64
}

func (w *W) Init(wr io.Writer, buf []byte) {
	if cap(buf) < varint.MaxLen {
		buf = make([]byte, 0, 4096)
	}
	*w = W{
		buf: buf[:0],
		w:   wr,
	}
}

// Done flushes the buffer and returns the first error seen.
func (w *W) Done() error {
	w.flush()
	return w.err
}

// Written returns the number of bytes handed to the underlying writer.
func (w *W) Written() int64 { return w.n }

func (w *W) reserve(n int) {
	if len(w.buf)+n > cap(w.buf) {
		w.flush()
	}
}

func (w *W) Uint64(x uint64) {
	w.reserve(8)
	w.buf = le.AppendUint64(w.buf, x)
}

func (w *W) Uint32(x uint32) {
	w.reserve(4)
	w.buf = le.AppendUint32(w.buf, x)
}

func (w *W) Uint16(x uint16) {
	w.reserve(2)
	w.buf = le.AppendUint16(w.buf, x)
}

func (w *W) Uint8(x uint8) {
	w.reserve(1)
	w.buf = append(w.buf, x)
}

func (w *W) Varint(x uint64) {
	w.reserve(varint.MaxLen)
	w.buf = varint.Append(w.buf, x)
}

func (w *W) Bytes(buf []byte) {
	if len(w.buf)+len(buf) > cap(w.buf) {
		w.flush()
		if len(buf) > cap(w.buf) {
			w.write(buf)
			return
		}
	}
	w.buf = append(w.buf, buf...)
}

//go:noinline
func (w *W) flush() {
	w.write(w.buf)
	w.buf = w.buf[:0]
}

func (w *W) write(p []byte) {
	if w.err == nil && len(p) > 0 {
		var n int
		n, w.err = w.w.Write(p)
		w.n += int64(n)
		w.err = errs.Wrap(w.err)
	}
}

// R decodes values from the front of a byte slice. Reading past the end sets
// a sticky error and returns zero values from then on.
type R struct {
	buf []byte
	err error
}

func (r *R) Init(buf []byte) {
	*r = R{buf: buf}
}

// Done returns the unread bytes and the first error seen.
func (r *R) Done() ([]byte, error) {
	return r.buf, r.err
}

// Remaining returns the number of unread bytes.
func (r *R) Remaining() int { return len(r.buf) }

// Err returns the first error seen.
func (r *R) Err() error { return r.err }

// Invalid records err if no error has been seen yet. Decoders use it to
// reject values that parse but make no sense.
func (r *R) Invalid(err error) {
	if r.err == nil {
		r.err = err
		r.buf = nil
	}
}

func (r *R) front(n int) (x []byte) {
	if r.err == nil {
		if len(r.buf) >= n {
			x, r.buf = r.buf[:n:n], r.buf[n:]
		} else {
			r.bad(n)
		}
	}
	return
}

func (r *R) Uint64() (x uint64) {
	if b := r.front(8); b != nil {
		x = le.Uint64(b)
	}
	return
}

func (r *R) Uint32() (x uint32) {
	if b := r.front(4); b != nil {
		x = le.Uint32(b)
	}
	return
}

func (r *R) Uint16() (x uint16) {
	if b := r.front(2); b != nil {
		x = le.Uint16(b)
	}
	return
}

func (r *R) Uint8() (x uint8) {
	if b := r.front(1); b != nil {
		x = b[0]
	}
	return
}

func (r *R) Varint() (x uint64) {
	if r.err == nil {
		v, n, ok := varint.Consume(r.buf)
		if !ok {
			r.bad(varint.MaxLen)
			return 0
		}
		x, r.buf = v, r.buf[n:]
	}
	return
}

// Bytes returns the next n bytes. The result aliases the input.
func (r *R) Bytes(n int) (x []byte) {
	if n < 0 {
		r.Invalid(errs.Errorf("negative length: %d", n))
		return nil
	}
	return r.front(n)
}

func (r *R) bad(n int) {
	r.err = errs.Errorf("short buffer: needed %d bytes", n)
	r.buf = nil
}
