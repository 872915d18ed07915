package hll

import (
	"os"
	"testing"

	"github.com/bmizerany/assert"
)

func TestRegisters(t *testing.T) {
	for _, numRegisters := range []uint64{1023, 1024, 1025} { // Try a power of two, also power of two +/- 1.
		iterativeGetSet(t, numRegisters)
	}
}

func TestHuge(t *testing.T) {
	// This test uses a lot of memory and takes a long time. Only run it when requested.
	if len(os.Getenv("HLL_HUGE")) == 0 {
		t.Skip("Skipping gigantic memory test because HLL_HUGE isn't set")
		return
	}

	var numRegisters uint64 = 7 * (1 << 30)
	iterativeGetSet(t, numRegisters)
}

func TestSetMax(t *testing.T) {
	r := newRegisters(16)

	assert.T(t, r.SetMax(3, 5))
	assert.Equal(t, uint8(5), r.Get(3))

	assert.T(t, !r.SetMax(3, 4)) // lower values never overwrite
	assert.T(t, !r.SetMax(3, 5))
	assert.Equal(t, uint8(5), r.Get(3))

	assert.T(t, r.SetMax(3, 60))
	assert.Equal(t, uint8(60), r.Get(3))

	// Neighbours sharing bytes with register 3 are untouched.
	assert.Equal(t, uint8(0), r.Get(2))
	assert.Equal(t, uint8(0), r.Get(4))
}

func TestRegistersNeighbours(t *testing.T) {
	r := newRegisters(64)
	for i := uint64(0); i < 64; i++ {
		r.Set(i, registerMask)
	}
	r.Set(10, 0)
	for i := uint64(0); i < 64; i++ {
		if i == 10 {
			assert.Equal(t, uint8(0), r.Get(i))
			continue
		}
		assert.Equalf(t, uint8(registerMask), r.Get(i), "register %d", i)
	}

	r.Clear()
	for i := uint64(0); i < 64; i++ {
		assert.Equal(t, uint8(0), r.Get(i))
	}
}

func TestPackedLen(t *testing.T) {
	assert.Equal(t, 13, packedLen(16))
	assert.Equal(t, 769, packedLen(1024))
	assert.Equal(t, 769, newRegisters(1024).SizeInBytes())
}

func iterativeGetSet(t *testing.T, numRegisters uint64) {
	cd := newRegisters(numRegisters)

	for i := uint64(0); i < numRegisters; i++ {
		valToInsert := uint8(i % 64)
		cd.Set(i, valToInsert)
		readBack := cd.Get(i)
		if readBack != valToInsert {
			t.Fatal(readBack, valToInsert)
		}
	}

	for i := uint64(0); i < numRegisters; i++ {
		readBack := cd.Get(i)
		expected := uint8(i % 64)
		if readBack != expected {
			t.Fatal(readBack, expected)
		}
	}
}
