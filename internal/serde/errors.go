package serde

import "errors"

// Common errors.
var (
	// ErrBufferTooSmall is returned by Encode when the target buffer's
	// remaining capacity is below SizeFor(t).
	ErrBufferTooSmall = errors.New("target buffer too small for encoded tensor")

	// ErrCorrupt is returned by the decoder when the rank field is negative.
	// A non-negative rank is the format's only self-consistency check; it is
	// necessary but not sufficient evidence of a valid frame. There is no
	// frame length field and no checksum, so framing integrity is the
	// transport's problem.
	ErrCorrupt = errors.New("negative rank: corrupt tensor frame")

	// ErrUnknownDataType is returned when a frame's data type ordinal is
	// outside the pinned enum table.
	ErrUnknownDataType = errors.New("unknown data type ordinal")

	// ErrShortBuffer is returned when the source buffer holds fewer bytes
	// than the frame's declared lengths imply.
	ErrShortBuffer = errors.New("buffer ends before declared frame length")

	// ErrNotContiguous is returned by Encode for views. Materializing a view
	// is the tensor component's job (Dup); the encoder never copies silently.
	ErrNotContiguous = errors.New("tensor is a view; materialize with Dup before encoding")
)
