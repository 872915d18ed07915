package hll

import (
	"math"
	"testing"

	"github.com/bmizerany/assert"
)

func TestLinearCounting(t *testing.T) {
	assert.Equal(t, float64(0), linearCounting(1024, 1024))
	assert.Equal(t, 1024*math.Log(1024.0/1021.0), linearCounting(1024, 1021))
	assert.Equal(t, 16*math.Log(16), linearCounting(16, 1))
}

func TestLargeRangeCorrection(t *testing.T) {
	const two32 = float64(1 << 32)

	// Below the threshold nothing changes.
	assert.Equal(t, float64(1000), largeRangeCorrection(1000, 32))
	assert.Equal(t, two32/30, largeRangeCorrection(two32/30, 32))

	// Above it the estimate grows to account for collisions.
	e := two32 / 2
	assert.Equal(t, -two32*math.Log(0.5), largeRangeCorrection(e, 32))
	assert.T(t, largeRangeCorrection(e, 32) > e)

	e = two32 / 10
	assert.Equal(t, -two32*math.Log(1-e/two32), largeRangeCorrection(e, 32))

	// Saturated.
	assert.Equal(t, two32, largeRangeCorrection(two32, 32))
	assert.Equal(t, two32, largeRangeCorrection(2*two32, 32))
	assert.T(t, !math.IsInf(largeRangeCorrection(two32, 32), 0))

	// With a 64 bit hash, a billion is nowhere near the threshold.
	assert.Equal(t, float64(1e9), largeRangeCorrection(1e9, 64))
	assert.Equal(t, float64(1e17), largeRangeCorrection(1e17, 64))
}

// Saturating every register pushes the raw estimate as high as a sketch can go. The result must
// still be finite and positive.
func TestCountSaturated(t *testing.T) {
	for _, p := range []uint{4, 14, 18} {
		h := MustNewHll(p)
		for i := uint64(0); i < h.m; i++ {
			h.bigM.Set(i, uint8(64-p))
		}
		c := h.Count()
		assert.T(t, c > 0 && !math.IsInf(c, 0) && !math.IsNaN(c), p, c)
	}
}

// Exercise each regime directly through the registers.
func TestCountRegimes(t *testing.T) {
	h := MustNewHll(4)
	m := float64(16)

	// A single occupied register: linear counting.
	h.bigM.Set(0, 1)
	assert.Equal(t, m*math.Log(16.0/15.0), h.Count())

	// Every register at 1: the raw estimate is alpha*m*m/(m/2) = 2*alpha*m, below 2.5m, but
	// there are no empty registers so it's returned as is.
	for i := uint64(0); i < h.m; i++ {
		h.bigM.Set(i, 1)
	}
	assert.Equal(t, alpha_16*m*m/(m/2), h.Count())

	// Every register at 5: raw estimate alpha*m*m/(m/32), well above 2.5m.
	for i := uint64(0); i < h.m; i++ {
		h.bigM.Set(i, 5)
	}
	assert.Equal(t, alpha_16*m*m/(m/32), h.Count())
}

func TestRoundFloat(t *testing.T) {
	assert.Equal(t, uint64(3), roundFloatToUint64(3.004))
	assert.Equal(t, uint64(3), roundFloatToUint64(2.5))
	assert.Equal(t, uint64(2), roundFloatToUint64(2.49))
	assert.Equal(t, uint64(0), roundFloatToUint64(0))
}
