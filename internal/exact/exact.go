// Package exact counts distinct items exactly. It's the ground truth the estimator is compared
// against, and its memory grows with the number of distinct items.
package exact

import (
	"github.com/bits-and-blooms/bitset"
)

const (
	prefixBits = 1 << 16

	// Rough per-entry cost of a map[string]struct{} beyond the key bytes: the string header plus
	// bucket overhead.
	mapEntryOverhead = 48
)

// Counter is a set of items. Canonical dotted-quad IPv4 addresses are stored as bits, one
// 65536-bit set per /16 prefix, everything else (IPv6, hostnames, non-canonical spellings) as
// strings. Each item string lands in exactly one of the two stores, so the counts add up.
//
// A Counter is not safe for concurrent use.
type Counter struct {
	ipv4      map[uint16]*bitset.BitSet
	ipv4Count int

	other      map[string]struct{}
	otherBytes int
}

func New() *Counter {
	return &Counter{
		ipv4:  map[uint16]*bitset.BitSet{},
		other: map[string]struct{}{},
	}
}

// Add records item. The slice isn't retained.
func (c *Counter) Add(item []byte) {
	if ip, ok := parseIPv4(item); ok {
		c.addIPv4(ip)
		return
	}
	if _, ok := c.other[string(item)]; ok {
		return
	}
	c.other[string(item)] = struct{}{}
	c.otherBytes += len(item) + mapEntryOverhead
}

func (c *Counter) AddString(item string) {
	c.Add([]byte(item))
}

func (c *Counter) addIPv4(ip uint32) {
	prefix, host := uint16(ip>>16), uint(ip&0xffff)
	set, ok := c.ipv4[prefix]
	if !ok {
		set = bitset.New(prefixBits)
		c.ipv4[prefix] = set
	}
	if set.Test(host) {
		return
	}
	set.Set(host)
	c.ipv4Count++
}

// UniqueCount is the number of distinct items added.
func (c *Counter) UniqueCount() int {
	return c.ipv4Count + len(c.other)
}

// SizeInBytes approximates the memory held by the set.
func (c *Counter) SizeInBytes() int {
	return len(c.ipv4)*prefixBits/8 + c.otherBytes
}

// parseIPv4 accepts only the canonical spelling of an address (no leading zeros, no spaces) so
// that distinct strings always map to distinct addresses.
func parseIPv4(s []byte) (uint32, bool) {
	var ip uint32
	part, digits, parts := 0, 0, 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == '.' {
			if digits == 0 || part > 255 {
				return 0, false
			}
			ip = ip<<8 | uint32(part)
			parts++
			part, digits = 0, 0
			continue
		}
		ch := s[i]
		if ch < '0' || ch > '9' {
			return 0, false
		}
		if digits > 0 && part == 0 {
			return 0, false // leading zero
		}
		digits++
		if digits > 3 {
			return 0, false
		}
		part = part*10 + int(ch-'0')
	}
	if parts != 4 {
		return 0, false
	}
	return ip, true
}
