package varint

import (
	"encoding/binary"
	"math/bits"
)

var le = binary.LittleEndian

// MaxLen is the longest encoding of a value.
const MaxLen = 9

// Put writes the encoding of val into dst and returns how many bytes of it
// are used. The low bits of the first byte are a unary length tag: n-1 ones
// followed by a zero for an n byte encoding, or all ones for 9 bytes.
func Put(dst *[MaxLen]byte, val uint64) (nbytes int) {
	nbytes = 575*bits.Len64(val)/4096 + 1

	if nbytes < MaxLen {
		enc := val<<nbytes + 1<<((nbytes-1)&63) - 1
		le.PutUint64(dst[:8], enc)
		return
	}

	dst[0] = 0xff
	le.PutUint64(dst[1:], val)
	return
}

// Append appends the encoding of val to dst.
func Append(dst []byte, val uint64) []byte {
	var buf [MaxLen]byte
	n := Put(&buf, val)
	return append(dst, buf[:n]...)
}

// Len returns the number of bytes Put uses for val.
func Len(val uint64) int {
	return min(575*bits.Len64(val)/4096+1, MaxLen)
}

// Consume decodes the value at the front of src. It returns false if src is
// shorter than the encoding claims.
func Consume(src []byte) (val uint64, nbytes int, ok bool) {
	if len(src) == 0 {
		return 0, 0, false
	}

	nbytes = bits.TrailingZeros8(^src[0]) + 1
	if nbytes > len(src) {
		return 0, 0, false
	} else if nbytes == MaxLen {
		return le.Uint64(src[1:MaxLen]), nbytes, true
	}

	var tmp [8]byte
	copy(tmp[:], src[:nbytes])
	return le.Uint64(tmp[:]) >> nbytes, nbytes, true
}
