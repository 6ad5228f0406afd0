// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for the tensors carried by the
// tensorwire codec.
//
// The package defines the host-memory tensor representation and the two
// pinned wire conventions the codec depends on:
//   - RawTensor: owned contiguous storage, or a strided view of another tensor
//   - DataType: runtime type information whose values double as wire ordinals
//   - ShapeDescriptor / ShapeInfoLength: the fixed-length shape encoding
//   - CompressionDescriptor: metadata for compressed element buffers
//
// Example:
//
//	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	v, _ := x.Transpose(0, 1) // a view; materialize before encoding
//	owned := v.Dup()
package tensor

import (
	"github.com/born-ml/tensorwire/internal/tensor"
)

// Type aliases for public API

// DType is a constraint for tensor element types.
// Supported types: float32, float64, int32, int64, uint8, bool.
type DType = tensor.DType

// DataType represents the underlying data type of a tensor.
// Its values are pinned wire ordinals.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32    DataType = tensor.Float32
	Float64    DataType = tensor.Float64
	Int32      DataType = tensor.Int32
	Int64      DataType = tensor.Int64
	Uint8      DataType = tensor.Uint8
	Bool       DataType = tensor.Bool
	Compressed DataType = tensor.Compressed
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// ShapeDescriptor is the fixed-length int32 encoding of a tensor's
// dimensions, strides, offset and memory order.
type ShapeDescriptor = tensor.ShapeDescriptor

// RawTensor is the low-level tensor the codec encodes and decodes.
type RawTensor = tensor.RawTensor

// CompressionAlgorithm identifies a tensor compression codec on the wire.
type CompressionAlgorithm = tensor.CompressionAlgorithm

// Compression algorithm constants.
const (
	NoOp   CompressionAlgorithm = tensor.NoOp
	Gzip   CompressionAlgorithm = tensor.Gzip
	Zstd   CompressionAlgorithm = tensor.Zstd
	Snappy CompressionAlgorithm = tensor.Snappy
)

// CompressionDescriptor describes a compressed element buffer.
type CompressionDescriptor = tensor.CompressionDescriptor

// DescriptorByteLength is the fixed wire size of a CompressionDescriptor.
const DescriptorByteLength = tensor.DescriptorByteLength

// ShapeInfoLength returns the number of int32 values in the shape descriptor
// of a tensor with the given rank.
func ShapeInfoLength(rank int) int {
	return tensor.ShapeInfoLength(rank)
}

// Creation functions

// NewRaw creates a zeroed tensor with the given shape and type.
//
// Example:
//
//	x, err := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32)
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype)
}

// FromSlice creates an owned contiguous tensor holding a copy of data.
//
// Example:
//
//	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
func FromSlice[T DType](data []T, shape Shape) (*RawTensor, error) {
	return tensor.FromSlice(data, shape)
}

// NewCompressed creates a compressed tensor from a payload and its
// descriptor. Most users should use the compress package instead.
func NewCompressed(shape Shape, payload []byte, desc *CompressionDescriptor) (*RawTensor, error) {
	return tensor.NewCompressed(shape, payload, desc)
}
