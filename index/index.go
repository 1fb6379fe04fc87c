package index

import "math/bits"

// W is the number of block slots: one per bit of a machine word.
const W = bits.UintSize

// Split maps a global index to the block that stores it and the offset inside
// that block. Block 0 and block 1 hold one element each, and every later block
// b holds 2^(b-1) elements, so the blocks concatenated in order reproduce the
// append order.
func Split(i uint) (b, o uint) {
	if i == 0 {
		return 0, 0
	}
	b = W - uint(bits.LeadingZeros(i))
	return b, i - 1<<(b-1)
}

// MaxLen returns the number of elements block b holds. Allocation and
// deallocation of a block must both size it with MaxLen.
func MaxLen(b uint) uint {
	if b <= 1 {
		return 1
	}
	return 1 << ((b - 1) % W)
}

// First returns the global index of the first element in block b.
func First(b uint) uint {
	if b == 0 {
		return 0
	}
	return 1 << ((b - 1) % W)
}

// Starts reports if i is the first index of its block, which is when a push
// of index i has to install a new block.
func Starts(i uint) bool { return i <= 1 || i&(i-1) == 0 }

// Blocks returns the number of blocks occupied by n elements.
func Blocks(n uint) uint {
	if n == 0 {
		return 0
	}
	b, _ := Split(n - 1)
	return b + 1
}

// Cap returns the number of elements the first k blocks hold.
func Cap(k uint) uint {
	if k == 0 {
		return 0
	}
	return First(k)
}
