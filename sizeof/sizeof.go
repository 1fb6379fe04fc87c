package sizeof

import "unsafe"

const Word = uint64(unsafe.Sizeof(uintptr(0)))

// Elems returns the number of bytes n values of T occupy in a contiguous run.
func Elems[T any](n uint) uint64 {
	return uint64(unsafe.Sizeof(*new(T))) * uint64(n)
}
