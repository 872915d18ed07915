package hll

import (
	"fmt"
	"hash/fnv"
	"sort"

	"github.com/cespare/xxhash/v2"
	farm "github.com/dgryski/go-farm"
	metro "github.com/dgryski/go-metro"
	"github.com/twmb/murmur3"
)

// A Hasher maps an item to a 64-bit hash. It must be deterministic and its output bits should be
// close to independent and uniformly distributed, since the top p bits pick a register and the
// rest feed the rank.
//
// Two sketches can only be merged meaningfully if they were built with the same Hasher. All of
// the hashers provided here are seedless (or fixed-seed) and therefore stable across processes.
type Hasher func(data []byte) uint64

// Murmur3 hashes with the 64-bit half of MurmurHash3 x64_128. It is the default.
func Murmur3(data []byte) uint64 {
	return murmur3.Sum64(data)
}

// XXHash hashes with XXH64.
func XXHash(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Farm hashes with FarmHash Fingerprint64.
func Farm(data []byte) uint64 {
	return farm.Fingerprint64(data)
}

// Metro hashes with MetroHash64 and a zero seed.
func Metro(data []byte) uint64 {
	return metro.Hash64(data, 0)
}

// FNV hashes with FNV-1a. Its avalanche is weaker than the others; it's mainly here for
// comparison with sketches built by tools that use it.
func FNV(data []byte) uint64 {
	h := fnv.New64a()
	h.Write(data)
	return h.Sum64()
}

// DefaultHasher is used by NewHll and by sketches decoded from a serialized form.
var DefaultHasher Hasher = Murmur3

var hashers = map[string]Hasher{
	"murmur3": Murmur3,
	"xxhash":  XXHash,
	"farm":    Farm,
	"metro":   Metro,
	"fnv":     FNV,
}

// HasherByName returns one of the provided hashers: "murmur3", "xxhash", "farm", "metro" or "fnv".
func HasherByName(name string) (Hasher, error) {
	h, ok := hashers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownHasher, name)
	}
	return h, nil
}

// HasherNames lists the names accepted by HasherByName, sorted.
func HasherNames() []string {
	names := make([]string, 0, len(hashers))
	for name := range hashers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
