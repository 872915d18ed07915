package hll

import "math"

// Count returns the estimated cardinality (the number of unique inputs seen so far).
//
// The raw harmonic-mean estimate is biased at both ends, so it is corrected in three regimes:
// linear counting while the raw estimate is at most 2.5m and some registers are still empty,
// the large range correction once the raw estimate passes 2^64/30, and the raw estimate
// otherwise. An empty sketch counts 0.
func (h *Hll) Count() float64 {
	inverseSum := float64(0)
	V := uint64(0)

	// calculate the harmonic mean of the values in the registers.
	for i := uint64(0); i < h.m; i++ {
		registerVal := h.bigM.Get(i)
		inverseSum += math.Ldexp(1, -int(registerVal))
		if registerVal == 0 {
			V++
		}
	}
	m := float64(h.m)
	e := h.alpha * m * m / inverseSum

	if e <= 2.5*m {
		if V != 0 {
			return linearCounting(h.m, V)
		}
		return e
	}
	return largeRangeCorrection(e, hashBits)
}

// Cardinality is Count rounded to the nearest integer.
func (h *Hll) Cardinality() uint64 {
	return roundFloatToUint64(h.Count())
}

// Returns linear counting cardinality estimate for m registers of which v are empty.
func linearCounting(m, v uint64) float64 {
	return float64(m) * math.Log(float64(m)/float64(v))
}

// Corrects e for hash collisions when hashes are width bits wide. With 64-bit hashes the
// threshold is far beyond any reachable estimate, but the formula is kept general so that a
// narrower hash stays correct. Estimates at or beyond 2^width saturate to 2^width.
func largeRangeCorrection(e float64, width uint) float64 {
	space := math.Ldexp(1, int(width))
	if e <= space/30 {
		return e
	}
	if e >= space {
		return space
	}
	return -space * math.Log(1-e/space)
}

func roundFloatToUint64(value float64) uint64 {
	var round float64
	_, div := math.Modf(value)
	if div >= 0.5 {
		round = math.Ceil(value)
	} else {
		round = math.Floor(value)
	}
	return uint64(round)
}
