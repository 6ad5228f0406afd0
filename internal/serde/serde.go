// Package serde implements the tensor wire codec: a flat, self-describing
// binary layout for shipping tensors between processes.
//
// Frame layout, little-endian throughout:
//
//	[4 bytes]  rank, signed, must be >= 0
//	[4 bytes]  data type ordinal
//	[4*N bytes] shape descriptor, N = tensor.ShapeInfoLength(rank)
//	[32 bytes] compression descriptor        (compressed frames only)
//	[...]      element data: raw native elements, or compressed bytes
//
// The header carries no magic, no version and no checksum; the negative-rank
// check in Decode is the only built-in corruption signal. Frames are packed
// back-to-back: every decode returns the offset of the next frame.
package serde

import (
	"fmt"

	"github.com/born-ml/tensorwire/internal/tensor"
)

// headerSize covers the two leading int32s: rank and data type ordinal.
const headerSize = 8

// SizeFor returns the exact number of bytes Encode will write for t.
// It never mutates the tensor. Callers allocate with this before encoding;
// Encode fails rather than truncates when given less.
func SizeFor(t *tensor.RawTensor) int {
	size := headerSize + tensor.ShapeInfoLength(t.Rank())*4 + t.ByteSize()
	if t.IsCompressed() {
		size += tensor.DescriptorByteLength
	}
	return size
}

// Encode writes t as one frame into buf starting at the buffer's cursor.
//
// The tensor must own contiguous storage; views are rejected with
// ErrNotContiguous rather than copied behind the caller's back. If
// rewindAfter is true the cursor is reset to the start of the frame so the
// transport can send it immediately; otherwise it is left past the frame so
// further tensors can be packed behind it.
func Encode(t *tensor.RawTensor, buf *Buffer, rewindAfter bool) error {
	if t.IsView() {
		return ErrNotContiguous
	}
	if need := SizeFor(t); buf.Remaining() < need {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrBufferTooSmall, need, buf.Remaining())
	}

	start := buf.Position()
	if err := buf.PutInt32(int32(t.Rank())); err != nil {
		return err
	}
	// Data type ordinal next so the frame is self-describing.
	if err := buf.PutInt32(int32(t.DType())); err != nil {
		return err
	}
	if err := buf.PutBytes(t.ShapeDescriptor().Bytes()); err != nil {
		return err
	}
	if t.IsCompressed() {
		if err := buf.PutBytes(t.Descriptor().Bytes()); err != nil {
			return err
		}
	}
	if err := buf.PutBytes(t.Data()); err != nil {
		return err
	}

	if rewindAfter {
		return buf.SetPosition(start)
	}
	return nil
}

// ToBuffer materializes t if it is a view, allocates a buffer of exactly
// SizeFor, encodes into it and rewinds so it is ready to hand to the
// transport.
func ToBuffer(t *tensor.RawTensor) (*Buffer, error) {
	if t.IsView() {
		t = t.Dup()
	}
	buf := NewBuffer(SizeFor(t))
	if err := Encode(t, buf, true); err != nil {
		return nil, err
	}
	return buf, nil
}

// DecodeNext reads one tensor frame from src starting at offset.
//
// It returns the reconstructed tensor and the offset immediately past the
// consumed frame, so a caller can decode the next frame without re-scanning.
// The tensor owns freshly allocated storage: src may be reused or
// overwritten by the transport as soon as DecodeNext returns.
func DecodeNext(src []byte, offset int) (*tensor.RawTensor, int, error) {
	buf := Wrap(src)
	if err := buf.SetPosition(offset); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrShortBuffer, err)
	}

	rank, err := buf.ReadInt32()
	if err != nil {
		return nil, 0, err
	}
	if rank < 0 {
		return nil, 0, fmt.Errorf("%w: rank %d at offset %d", ErrCorrupt, rank, offset)
	}

	ordinal, err := buf.ReadInt32()
	if err != nil {
		return nil, 0, err
	}
	dtype, ok := tensor.DataTypeFromOrdinal(ordinal)
	if !ok {
		return nil, 0, fmt.Errorf("%w: %d", ErrUnknownDataType, ordinal)
	}

	shapeLen := tensor.ShapeInfoLength(int(rank))
	shapeBytes, err := buf.ReadBytes(shapeLen * 4)
	if err != nil {
		return nil, 0, err
	}
	// Defensive copy: the descriptor must outlive the transport buffer.
	desc, err := tensor.ShapeDescriptorFromBytes(shapeBytes, shapeLen)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrShortBuffer, err)
	}
	// The descriptor carries its own rank field; Validate pins it to the
	// descriptor length, which the header rank sized. A mismatch means every
	// derived accessor would index past the slice.
	if err := desc.Validate(); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	if dtype != tensor.Compressed {
		elemBytes := int(desc.ElementCount()) * dtype.Size()
		// Zero-copy slice of the element region, duplicated into owned
		// storage by the tensor constructor before we return.
		slice, err := buf.ReadBytes(elemBytes)
		if err != nil {
			return nil, 0, err
		}
		t, err := tensor.NewRawFromDescriptor(desc, dtype, slice)
		if err != nil {
			return nil, 0, fmt.Errorf("decoding tensor frame: %w", err)
		}
		return t, buf.Position(), nil
	}

	// Compressed branch: a fixed-size codec descriptor sits between the
	// shape descriptor and the payload.
	cdBytes, err := buf.ReadBytes(tensor.DescriptorByteLength)
	if err != nil {
		return nil, 0, err
	}
	cd, err := tensor.DescriptorFromBytes(cdBytes)
	if err != nil {
		return nil, 0, fmt.Errorf("decoding compression descriptor: %w", err)
	}

	// Payload length comes from the descriptor, not re-derived.
	payload, err := buf.ReadBytes(int(cd.CompressedByteLength))
	if err != nil {
		return nil, 0, err
	}
	t, err := tensor.NewCompressed(desc.Dims(), payload, cd)
	if err != nil {
		return nil, 0, fmt.Errorf("decoding compressed tensor frame: %w", err)
	}
	return t, buf.Position(), nil
}

// DecodeAt reads one tensor frame at offset, discarding the next-frame
// offset. Convenience for single-frame buffers.
func DecodeAt(src []byte, offset int) (*tensor.RawTensor, error) {
	t, _, err := DecodeNext(src, offset)
	return t, err
}

// Decode reads one tensor frame from the start of src.
func Decode(src []byte) (*tensor.RawTensor, error) {
	return DecodeAt(src, 0)
}
