package hll

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/golang/snappy"
)

// binaryVersion is the first byte of the binary encoding. It's bumped whenever the layout
// changes so that old readers reject new states instead of misreading them.
const binaryVersion = 1

const binaryHeaderLen = 2

// MarshalBinary encodes the sketch as a version byte, a precision byte and then one byte per
// register, 2 + 2^p bytes in total. The hasher is not part of the encoding.
func (h *Hll) MarshalBinary() ([]byte, error) {
	buf := make([]byte, binaryHeaderLen+int(h.m))
	buf[0] = binaryVersion
	buf[1] = uint8(h.p)
	for i := uint64(0); i < h.m; i++ {
		buf[binaryHeaderLen+i] = h.bigM.Get(i)
	}
	return buf, nil
}

// UnmarshalBinary decodes a sketch written by MarshalBinary into h, replacing its state. The
// decoded sketch hashes with h's hasher if it already had one, DefaultHasher otherwise. On error
// h is left untouched.
func (h *Hll) UnmarshalBinary(buf []byte) error {
	if len(buf) < binaryHeaderLen {
		return fmt.Errorf("%w: %d bytes is shorter than the header", ErrCorruptState, len(buf))
	}
	if buf[0] != binaryVersion {
		return fmt.Errorf("%w: unknown format version %d", ErrCorruptState, buf[0])
	}

	decoded, err := h.fresh(uint(buf[1]))
	if err != nil {
		return err
	}

	regs := buf[binaryHeaderLen:]
	if uint64(len(regs)) != decoded.m {
		return fmt.Errorf("%w: got %d registers for p=%d, expected %d", ErrCorruptState,
			len(regs), decoded.p, decoded.m)
	}
	maxRank := uint8(hashBits - decoded.p)
	for i, val := range regs {
		if val > maxRank {
			return fmt.Errorf("%w: register %d holds %d, above the maximum rank %d",
				ErrCorruptState, i, val, maxRank)
		}
		decoded.bigM.Set(uint64(i), val)
	}

	*h = *decoded
	return nil
}

// GobEncode uses the binary encoding.
func (h *Hll) GobEncode() ([]byte, error) {
	return h.MarshalBinary()
}

func (h *Hll) GobDecode(buf []byte) error {
	return h.UnmarshalBinary(buf)
}

// When marshalling an Hll to JSON, we only marshal a subset of its fields.
type jsonableHll struct {
	BigM *registers `json:"M"`
	P    uint       `json:"p"`
}

// Convert the Hll struct into JSON. The packed registers are compressed and base64 encoded.
func (h *Hll) MarshalJSON() ([]byte, error) {
	return json.Marshal(&jsonableHll{&h.bigM, h.p})
}

// Unmarshals JSON byte-array into a Hll struct.
func (h *Hll) UnmarshalJSON(buf []byte) error {
	j := jsonableHll{}

	if err := json.Unmarshal(buf, &j); err != nil {
		return err
	}

	decoded, err := h.fresh(j.P)
	if err != nil {
		return err
	}
	if j.BigM == nil || len(*j.BigM) != len(decoded.bigM) {
		return fmt.Errorf("%w: packed registers don't match p=%d", ErrCorruptState, j.P)
	}
	decoded.bigM = *j.BigM
	if err := decoded.checkRanks(); err != nil {
		return err
	}

	*h = *decoded
	return nil
}

// Every register must hold a rank a 64-p bit remainder can produce.
func (h *Hll) checkRanks() error {
	maxRank := uint8(hashBits - h.p)
	for i := uint64(0); i < h.m; i++ {
		if val := h.bigM.Get(i); val > maxRank {
			return fmt.Errorf("%w: register %d holds %d, above the maximum rank %d",
				ErrCorruptState, i, val, maxRank)
		}
	}
	return nil
}

// Returns an empty sketch with precision p that keeps h's hasher. An out of range p is
// reported as ErrCorruptState since it came from encoded data.
func (h *Hll) fresh(p uint) (*Hll, error) {
	decoded, err := NewHllWithHasher(p, h.hash)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	return decoded, nil
}

func (r *registers) MarshalJSON() ([]byte, error) {
	compressed, err := snappyB64(*r)
	if err != nil {
		return nil, err
	}

	// Wrap the base64 in quotes so it's a valid JSON string.
	buf := make([]byte, len(compressed)+2)
	buf[0] = '"'
	copy(buf[1:], compressed)
	buf[len(buf)-1] = '"'

	return buf, nil
}

func (r *registers) UnmarshalJSON(buf []byte) error {
	if len(buf) < 2 {
		return fmt.Errorf("%w: marshaled registers should be at least two bytes, including quotes",
			ErrCorruptState)
	}
	buf = buf[1 : len(buf)-1] // Remove the quotes from the JSON string

	uncompressed, err := unsnappyB64(buf)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptState, err)
	}

	*r = uncompressed
	return nil
}

// Compress the input using snappy and encode the result using URL-safe base64.
func snappyB64(in []byte) ([]byte, error) {
	compressed := snappy.Encode(nil, in)
	outBuf := make([]byte, base64.URLEncoding.EncodedLen(len(compressed)))
	base64.URLEncoding.Encode(outBuf, compressed)
	return outBuf, nil
}

// The inverse of snappyB64.
func unsnappyB64(in []byte) ([]byte, error) {
	unBase64ed := make([]byte, base64.URLEncoding.DecodedLen(len(in)))
	n, err := base64.URLEncoding.Decode(unBase64ed, in)
	if err != nil {
		return nil, err
	}

	uncompressed, err := snappy.Decode(nil, unBase64ed[:n])
	if err != nil {
		return nil, err
	}

	// The snappy library returns nil when the output length is zero.
	if uncompressed == nil {
		uncompressed = []byte{}
	}
	return uncompressed, nil
}
