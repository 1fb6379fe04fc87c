// Package num has fixed width integer types that know how to store
// themselves in a snapshot.
package num

import "github.com/AlyssaRoseDev/stele/rwutils"

// E is the empty element. It takes no space in memory or on disk.
type E struct{}

func (E) ReadFrom(r *rwutils.R)  {}
func (*E) AppendTo(w *rwutils.W) {}

type U64 uint64

func (u *U64) ReadFrom(r *rwutils.R) { *u = U64(r.Uint64()) }
func (u *U64) AppendTo(w *rwutils.W) { w.Uint64(uint64(*u)) }

type U32 uint32

func (u *U32) ReadFrom(r *rwutils.R) { *u = U32(r.Uint32()) }
func (u *U32) AppendTo(w *rwutils.W) { w.Uint32(uint32(*u)) }

type U16 uint16

func (u *U16) ReadFrom(r *rwutils.R) { *u = U16(r.Uint16()) }
func (u *U16) AppendTo(w *rwutils.W) { w.Uint16(uint16(*u)) }

type U8 uint8

func (u *U8) ReadFrom(r *rwutils.R) { *u = U8(r.Uint8()) }
func (u *U8) AppendTo(w *rwutils.W) { w.Uint8(uint8(*u)) }

// I64 is stored zigzag encoded as a varint so small magnitudes stay short.
type I64 int64

func (i *I64) ReadFrom(r *rwutils.R) {
	x := r.Varint()
	*i = I64(int64(x>>1) ^ -int64(x&1))
}

func (i *I64) AppendTo(w *rwutils.W) {
	x := int64(*i)
	w.Varint(uint64(x<<1) ^ uint64(x>>63))
}
