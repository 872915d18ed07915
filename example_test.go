package hll_test

import (
	"fmt"
	"math"
	"strconv"

	"github.com/lytics/hll/v2"
)

// A simple walkthrough on how to use Hll.
func Example() {
	const (
		p           = 14 // Memory usage is 0.75 * 2^p bytes
		numToInsert = 1000000
	)

	h, err := hll.NewHll(p)
	if err != nil {
		panic(err)
	}

	// For this example, our inputs will just be strings, e.g. "1", "2"
	for i := 0; i < numToInsert; i++ {
		h.UpdateString(strconv.Itoa(i))
	}

	// Duplicates do not affect the cardinality. The following loop has no effect.
	for i := 0; i < 10000; i++ {
		h.UpdateString("1")
	}

	// We inserted 1M unique elements, the estimate should be within a few standard errors of 1M.
	relErr := math.Abs(h.Count()-numToInsert) / numToInsert
	fmt.Println(relErr < 4*h.StandardError())
	// Output: true
}

// Sketches of separate shards merge into the sketch of the whole stream.
func ExampleHll_Merge() {
	left := hll.MustNewHll(10)
	right := hll.MustNewHll(10)
	whole := hll.MustNewHll(10)

	for i, addr := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.1", "10.0.0.3", "10.0.0.2"} {
		if i%2 == 0 {
			left.UpdateString(addr)
		} else {
			right.UpdateString(addr)
		}
		whole.UpdateString(addr)
	}

	if err := left.Merge(right); err != nil {
		panic(err)
	}
	fmt.Println(left.Equal(whole))

	err := left.Merge(hll.MustNewHll(12))
	fmt.Println(err)
	// Output:
	// true
	// hll: incompatible precision: p=10/12
}

// Sketches can be saved and restored.
func ExampleHll_MarshalBinary() {
	h := hll.MustNewHll(4)
	h.UpdateString("10.0.0.1")

	buf, err := h.MarshalBinary()
	if err != nil {
		panic(err)
	}
	fmt.Println(len(buf), buf[0], buf[1])

	restored := &hll.Hll{}
	if err := restored.UnmarshalBinary(buf); err != nil {
		panic(err)
	}
	fmt.Println(restored.Equal(h))

	err = restored.UnmarshalBinary(buf[:10])
	fmt.Println(err)
	// Output:
	// 18 1 4
	// true
	// hll: corrupt state: got 8 registers for p=4, expected 16
}
