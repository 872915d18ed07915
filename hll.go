package hll

import (
	"fmt"
	"math"
)

const (
	MinPrecision = 4
	MaxPrecision = 18

	// hashBits is the width of the hashes produced by a Hasher.
	hashBits = 64
)

const (
	alpha_16 = 0.673
	alpha_32 = 0.697
	alpha_64 = 0.709
)

type Hll struct {
	bigM  registers // registers the rank values for each hashed index, packed 6 bits each
	hash  Hasher    // maps items to the 64-bit values passed to Add
	alpha float64   // constant used in cardinality calculation
	p     uint      // precision bits, the top p bits of a hash select the register
	m     uint64    // number of registers, 2^p
}

// NewHll returns an empty sketch with 2^p registers that hashes items with DefaultHasher.
// p must be in [4,18]; the standard error of the estimate is about 1.04/sqrt(2^p) and the
// registers use 0.75 * 2^p bytes.
func NewHll(p uint) (*Hll, error) {
	return NewHllWithHasher(p, nil)
}

// NewHllWithHasher is like NewHll but hashes items passed to Update with hash. A nil hash selects
// DefaultHasher.
func NewHllWithHasher(p uint, hash Hasher) (*Hll, error) {
	if p < MinPrecision || p > MaxPrecision {
		return nil, fmt.Errorf("%w: p must be in the range [%d,%d], got %d", ErrInvalidPrecision,
			MinPrecision, MaxPrecision, p)
	}
	if hash == nil {
		hash = DefaultHasher
	}

	h := &Hll{}
	h.p = p
	h.m = 1 << p
	h.hash = hash
	h.alpha = alpha(h.m)
	h.bigM = newRegisters(h.m)
	return h, nil
}

// MustNewHll is like NewHll but panics on an invalid precision. It's meant for precisions that
// are compile-time constants.
func MustNewHll(p uint) *Hll {
	h, err := NewHll(p)
	if err != nil {
		panic(err)
	}
	return h
}

func alpha(m uint64) float64 {
	switch m {
	case 16:
		return alpha_16
	case 32:
		return alpha_32
	case 64:
		return alpha_64
	default:
		return 0.7213 / (1.0 + 1.079/float64(m))
	}
}

// Update hashes item and adds the hash to the sketch. The item isn't retained.
func (h *Hll) Update(item []byte) {
	h.Add(h.hash(item))
}

// UpdateString is Update for textual items.
func (h *Hll) UpdateString(item string) {
	h.Update([]byte(item))
}

// Add takes a hash and updates the register it selects.
//
// The input should be a hash of whatever type you're estimating of. Update does the hashing for
// you; Add is for callers that already have a good 64-bit hash of each item.
func (h *Hll) Add(x uint64) {
	idx, w := splitHash(x, h.p)
	h.bigM.SetMax(idx, rank(w, hashBits-h.p))
}

// Merge folds other into h so that h estimates the cardinality of the union of both inputs. This
// allows you to parallelize cardinality estimation: each goroutine can process a shard of the
// input into its own sketch, then the results can be merged later, in any order.
//
// The inputs must have the same p, otherwise ErrIncompatiblePrecision is returned and h is left
// untouched. other is never modified. Merging a nil sketch is a no-op.
func (h *Hll) Merge(other *Hll) error {
	if other == nil {
		return nil
	}
	if h.p != other.p {
		return fmt.Errorf("%w: p=%d/%d", ErrIncompatiblePrecision, h.p, other.p)
	}

	for i := uint64(0); i < h.m; i++ {
		h.bigM.SetMax(i, other.bigM.Get(i))
	}
	return nil
}

// Clone returns a deep copy of h sharing its hasher.
func (h *Hll) Clone() *Hll {
	c := *h
	c.bigM = h.bigM.Copy()
	return &c
}

// Reset zeroes every register.
func (h *Hll) Reset() {
	h.bigM.Clear()
}

func (h *Hll) Precision() uint {
	return h.p
}

func (h *Hll) NumRegisters() uint64 {
	return h.m
}

// Register returns the value of register i. It panics if i >= NumRegisters().
func (h *Hll) Register(i uint64) uint8 {
	if i >= h.m {
		panic(fmt.Sprintf("register %d out of range [0,%d)", i, h.m))
	}
	return h.bigM.Get(i)
}

// Registers returns an unpacked copy of the registers, one byte per register.
func (h *Hll) Registers() []uint8 {
	out := make([]uint8, h.m)
	for i := range out {
		out[i] = h.bigM.Get(uint64(i))
	}
	return out
}

// SizeInBytes is the memory held by the registers. It doesn't depend on how many items were
// added.
func (h *Hll) SizeInBytes() int {
	return h.bigM.SizeInBytes()
}

// StandardError is the relative standard error of Count for this precision, 1.04/sqrt(m).
func (h *Hll) StandardError() float64 {
	return 1.04 / math.Sqrt(float64(h.m))
}

// Equal reports whether h and other have the same precision and register values.
func (h *Hll) Equal(other *Hll) bool {
	if other == nil || h.p != other.p {
		return false
	}
	for i := uint64(0); i < h.m; i++ {
		if h.bigM.Get(i) != other.bigM.Get(i) {
			return false
		}
	}
	return true
}
