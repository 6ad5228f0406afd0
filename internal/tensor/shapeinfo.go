package tensor

import (
	"encoding/binary"
	"fmt"
)

// The shape descriptor is the fixed-length int32 sequence that travels on the
// wire ahead of a tensor's element data. Its layout is a pinned convention:
//
//	[rank, dims[0..rank), strides[0..rank), offset, elementWiseStride, order]
//
// so a descriptor always holds ShapeInfoLength(rank) = 2*rank + 4 integers.
// The order slot carries the layout character ('c' row-major, 'f'
// column-major) as an int32. Every peer must reproduce this layout
// bit-for-bit; there is no version field to negotiate around a mismatch.

// Memory order flags stored in the descriptor's order slot.
const (
	OrderC = int32('c') // row-major
	OrderF = int32('f') // column-major
)

// ShapeInfoLength returns the number of int32 values in the shape descriptor
// of a tensor with the given rank. It is a function of rank alone.
func ShapeInfoLength(rank int) int {
	return 2*rank + 4
}

// ShapeDescriptor is a decoded shape descriptor.
type ShapeDescriptor []int32

// NewShapeDescriptor builds a descriptor for a row-major tensor with the
// given shape, strides and element offset.
func NewShapeDescriptor(shape Shape, strides []int, offset int) ShapeDescriptor {
	rank := len(shape)
	desc := make(ShapeDescriptor, ShapeInfoLength(rank))
	desc[0] = int32(rank)
	for i, dim := range shape {
		desc[1+i] = int32(dim)
	}
	for i, st := range strides {
		desc[1+rank+i] = int32(st)
	}
	desc[1+2*rank] = int32(offset)
	desc[2+2*rank] = elementWiseStride(shape, strides)
	desc[3+2*rank] = OrderC
	return desc
}

// elementWiseStride is 1 when the strides describe dense row-major storage
// and 0 when no single element-wise stride exists.
func elementWiseStride(shape Shape, strides []int) int32 {
	expected := shape.ComputeStrides()
	for i := range strides {
		if strides[i] != expected[i] {
			return 0
		}
	}
	return 1
}

// Rank returns the rank recorded in the descriptor.
func (d ShapeDescriptor) Rank() int {
	return int(d[0])
}

// Dims returns the per-dimension extents as a Shape.
func (d ShapeDescriptor) Dims() Shape {
	rank := d.Rank()
	shape := make(Shape, rank)
	for i := 0; i < rank; i++ {
		shape[i] = int(d[1+i])
	}
	return shape
}

// Strides returns the per-dimension strides.
func (d ShapeDescriptor) Strides() []int {
	rank := d.Rank()
	strides := make([]int, rank)
	for i := 0; i < rank; i++ {
		strides[i] = int(d[1+rank+i])
	}
	return strides
}

// Offset returns the element offset recorded in the descriptor.
func (d ShapeDescriptor) Offset() int {
	return int(d[1+2*d.Rank()])
}

// Order returns the memory order flag (OrderC or OrderF).
func (d ShapeDescriptor) Order() int32 {
	return d[3+2*d.Rank()]
}

// ElementCount returns the number of elements described by the dims.
func (d ShapeDescriptor) ElementCount() int64 {
	n := int64(1)
	rank := d.Rank()
	for i := 0; i < rank; i++ {
		n *= int64(d[1+i])
	}
	return n
}

// Validate checks internal consistency of the descriptor.
func (d ShapeDescriptor) Validate() error {
	if len(d) < 4 {
		return fmt.Errorf("shape descriptor too short: %d ints", len(d))
	}
	rank := d.Rank()
	if rank < 0 {
		return fmt.Errorf("shape descriptor has negative rank %d", rank)
	}
	if len(d) != ShapeInfoLength(rank) {
		return fmt.Errorf("shape descriptor length %d does not match rank %d (want %d)",
			len(d), rank, ShapeInfoLength(rank))
	}
	return d.Dims().Validate()
}

// ByteLength returns the encoded byte length of the descriptor.
func (d ShapeDescriptor) ByteLength() int {
	return len(d) * 4
}

// AppendBytes appends the descriptor's little-endian wire form to dst.
func (d ShapeDescriptor) AppendBytes(dst []byte) []byte {
	for _, v := range d {
		dst = binary.LittleEndian.AppendUint32(dst, uint32(v))
	}
	return dst
}

// Bytes returns the descriptor's little-endian wire form.
func (d ShapeDescriptor) Bytes() []byte {
	return d.AppendBytes(make([]byte, 0, d.ByteLength()))
}

// ShapeDescriptorFromBytes decodes n int32 values from src into a freshly
// allocated descriptor. The result never aliases src.
func ShapeDescriptorFromBytes(src []byte, n int) (ShapeDescriptor, error) {
	if len(src) < n*4 {
		return nil, fmt.Errorf("shape descriptor needs %d bytes, have %d", n*4, len(src))
	}
	desc := make(ShapeDescriptor, n)
	for i := 0; i < n; i++ {
		desc[i] = int32(binary.LittleEndian.Uint32(src[i*4:]))
	}
	return desc, nil
}
