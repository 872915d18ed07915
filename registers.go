package hll

// registerBits is the width of one packed register. The largest rank a 64-bit hash can produce
// for p >= 4 is 60, which fits in 6 bits.
const registerBits = 6

const registerMask = 1<<registerBits - 1

// registers is the dense register array of the sketch, packed 6 bits per register.
type registers []byte

// We can store 4 6-bit registers in 3 bytes (4 * 6 == 3 * 8)
func packedLen(numRegisters uint64) int {
	return int((numRegisters*3)/4 + 1) // +1 to round up
}

func newRegisters(numRegisters uint64) registers {
	return make([]byte, packedLen(numRegisters))
}

// This function assumes that registerIdx is within range. It may panic if not.
func (r registers) Get(registerIdx uint64) uint8 {
	byteIdx, startBit, numInSecondByte := bitPosn(registerIdx)

	result := (r[byteIdx] >> startBit) & registerMask
	if numInSecondByte == 0 {
		return result
	}
	result <<= numInSecondByte
	lowOrderMask := uint8(onesFromTo(0, numInSecondByte-1))
	result |= r[byteIdx+1] & lowOrderMask
	return result
}

// Set overwrites a register. Only the low 6 bits of val are stored.
func (r registers) Set(registerIdx uint64, val uint8) {
	byteIdx, startBit, numInSecondByte := bitPosn(registerIdx)
	val &= registerMask

	b1 := r[byteIdx]
	b1 = b1 &^ uint8(onesFromTo(startBit, startBit+registerBits-1)) // Clear bits holding this register.
	b1 |= (val >> numInSecondByte) << startBit
	r[byteIdx] = b1

	if numInSecondByte == 0 {
		return
	}

	b2 := r[byteIdx+1]
	lowOrderMask := uint8(onesFromTo(0, numInSecondByte-1))
	b2 = b2 &^ lowOrderMask // Clear bits holding this register.
	b2 |= (val & lowOrderMask)
	r[byteIdx+1] = b2
}

// SetMax stores candidate only if it exceeds the current register value, and reports whether it
// did.
func (r registers) SetMax(registerIdx uint64, candidate uint8) bool {
	if candidate <= r.Get(registerIdx) {
		return false
	}
	r.Set(registerIdx, candidate)
	return true
}

func (r registers) SizeInBytes() int {
	return len(r)
}

func (r registers) Copy() registers {
	out := make(registers, len(r))
	copy(out, r)
	return out
}

func (r registers) Clear() {
	for i := range r {
		r[i] = 0
	}
}

// Given a register number, returns the bit position where it can be found in the byte slice.
func bitPosn(registerIdx uint64) (byteIdx uint64, startBit, numInSecondByte uint) {
	bitIdx := registerIdx * registerBits

	byteIdx = bitIdx / 8
	startBit = uint(bitIdx % 8)
	numInFirstByte := minUint(registerBits, 8-startBit)
	numInSecondByte = registerBits - numInFirstByte

	return
}

func minUint(x, y uint) uint {
	if x <= y {
		return x
	}
	return y
}
