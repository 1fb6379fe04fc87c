package testhelp

import (
	"github.com/zeebo/mwc"
)

var (
	valRng  = mwc.Rand()
	nameRng = mwc.Rand()
)

// Uint64s returns n random values.
func Uint64s(n int) []uint64 {
	vs := make([]uint64, n)
	for i := range vs {
		vs[i] = valRng.Uint64()
	}
	return vs
}

func Name(n int) []byte {
	v := make([]byte, n)
	for i := range v {
		v[i] = 'a' + byte(nameRng.Uint64n(26))
	}
	return v
}
