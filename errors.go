package hll

import "errors"

var (
	// ErrInvalidPrecision is returned when a sketch is requested with p outside [MinPrecision,
	// MaxPrecision].
	ErrInvalidPrecision = errors.New("hll: invalid precision")

	// ErrIncompatiblePrecision is returned by Merge when the two sketches have different p.
	ErrIncompatiblePrecision = errors.New("hll: incompatible precision")

	// ErrCorruptState is returned when a serialized sketch can't be decoded.
	ErrCorruptState = errors.New("hll: corrupt state")

	// ErrUnknownHasher is returned by HasherByName.
	ErrUnknownHasher = errors.New("hll: unknown hasher")
)
