package hll

import "math/bits"

// Bit manipulation functions

const all1s uint64 = 1<<64 - 1

// Return a bitmask containing ones from position startPos to endPos, inclusive.
// startPos and endPos are 0-indexed so they should be in [0,63].
// startPos should be less than or equal to endPos.
func onesFromTo(startPos, endPos uint) uint64 {
	// Generate two overlapping sequences of 1s, and keep the overlap.
	highOrderOnes := all1s << startPos
	lowOrderOnes := all1s >> (64 - endPos - 1)
	return highOrderOnes & lowOrderOnes
}

// Return bits x[startPos:endPos] inclusive, shifted into the low order bits of the result.
// startPos and endPos are 0-indexed so they should be in [0,63].
// startPos should be less than or equal to endPos.
func extractShift(x uint64, startPos, endPos uint) uint64 {
	mask := onesFromTo(startPos, endPos)
	bits := x & mask
	return bits >> startPos
}

// Split a 64-bit hash into the register index (the top p bits) and the remaining 64-p bits.
func splitHash(x uint64, p uint) (index uint64, w uint64) {
	index = extractShift(x, 64-p, 63)
	w = extractShift(x, 0, 63-p)
	return index, w
}

// Return the rank of w, a bitstring of width bits held in the low order bits: the number of
// leading zeros within those width bits plus one. The result is capped at width, so it always
// fits in a register of a sketch whose hash remainder is width bits wide.
func rank(w uint64, width uint) uint8 {
	lz := uint(bits.LeadingZeros64(w)) - (64 - width)
	r := lz + 1
	if r > width {
		r = width
	}
	return uint8(r)
}
