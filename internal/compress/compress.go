// Package compress implements the tensor compression codecs.
//
// A Compressor turns a raw tensor into a compressed one (dtype Compressed,
// payload plus descriptor) and back. The codec layer only ever touches the
// descriptor; the algorithms live here so the wire format stays independent
// of them.
package compress

import (
	"fmt"

	"github.com/born-ml/tensorwire/internal/tensor"
)

// Compressor compresses and decompresses tensor element buffers.
type Compressor interface {
	// Algorithm returns the wire identifier written into descriptors.
	Algorithm() tensor.CompressionAlgorithm

	// Compress returns a compressed tensor carrying t's elements.
	// Views are materialized first; t itself is never mutated.
	Compress(t *tensor.RawTensor) (*tensor.RawTensor, error)

	// Decompress reconstructs the original raw tensor.
	Decompress(t *tensor.RawTensor) (*tensor.RawTensor, error)
}

// compressWith wraps an algorithm's byte-level compress function with the
// descriptor bookkeeping shared by all compressors.
func compressWith(algo tensor.CompressionAlgorithm, t *tensor.RawTensor, fn func(src []byte) ([]byte, error)) (*tensor.RawTensor, error) {
	if t.IsCompressed() {
		return nil, fmt.Errorf("tensor is already compressed (%s)", t.Descriptor().Algorithm)
	}
	if t.IsView() {
		t = t.Dup()
	}

	payload, err := fn(t.Data())
	if err != nil {
		return nil, fmt.Errorf("%s compress: %w", algo, err)
	}

	desc := &tensor.CompressionDescriptor{
		Algorithm:            algo,
		OriginalType:         t.DType(),
		OriginalElementCount: int64(t.NumElements()),
		OriginalByteLength:   int64(t.ByteSize()),
		CompressedByteLength: int64(len(payload)),
	}
	return tensor.NewCompressed(t.Shape(), payload, desc)
}

// decompressWith wraps an algorithm's byte-level decompress function.
// fn receives the payload and the expected original byte length.
func decompressWith(algo tensor.CompressionAlgorithm, t *tensor.RawTensor, fn func(src []byte, originalLen int) ([]byte, error)) (*tensor.RawTensor, error) {
	if !t.IsCompressed() {
		return nil, fmt.Errorf("tensor is not compressed")
	}
	desc := t.Descriptor()
	if desc.Algorithm != algo {
		return nil, fmt.Errorf("tensor was compressed with %s, not %s", desc.Algorithm, algo)
	}

	data, err := fn(t.Data(), int(desc.OriginalByteLength))
	if err != nil {
		return nil, fmt.Errorf("%s decompress: %w", algo, err)
	}
	if int64(len(data)) != desc.OriginalByteLength {
		return nil, fmt.Errorf("%s decompress: got %d bytes, descriptor says %d",
			algo, len(data), desc.OriginalByteLength)
	}

	shapeDesc := tensor.NewShapeDescriptor(t.Shape(), t.Shape().ComputeStrides(), 0)
	return tensor.NewRawFromDescriptor(shapeDesc, desc.OriginalType, data)
}

// ForAlgorithm returns the compressor registered for the given wire id.
func ForAlgorithm(algo tensor.CompressionAlgorithm) (Compressor, bool) {
	c, ok := registry[algo]
	return c, ok
}

// ByName returns the compressor with the given name ("gzip", "zstd", ...).
func ByName(name string) (Compressor, bool) {
	for _, c := range registry {
		if c.Algorithm().String() == name {
			return c, true
		}
	}
	return nil, false
}

// Decompress routes a compressed tensor to the compressor named by its
// descriptor.
func Decompress(t *tensor.RawTensor) (*tensor.RawTensor, error) {
	if !t.IsCompressed() {
		return nil, fmt.Errorf("tensor is not compressed")
	}
	c, ok := ForAlgorithm(t.Descriptor().Algorithm)
	if !ok {
		return nil, fmt.Errorf("no compressor registered for algorithm %d", t.Descriptor().Algorithm)
	}
	return c.Decompress(t)
}

var registry = map[tensor.CompressionAlgorithm]Compressor{
	tensor.NoOp:   noopCompressor{},
	tensor.Gzip:   gzipCompressor{},
	tensor.Zstd:   zstdCompressor{},
	tensor.Snappy: snappyCompressor{},
}
