// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package compress provides tensor compression for the wire codec.
//
// Example:
//
//	c, _ := compress.ByName("zstd")
//	packed, err := c.Compress(t)     // dtype Compressed, descriptor attached
//	back, err := compress.Decompress(packed)
package compress

import (
	"github.com/born-ml/tensorwire/internal/compress"
	"github.com/born-ml/tensorwire/tensor"
)

// Compressor compresses and decompresses tensor element buffers.
type Compressor = compress.Compressor

// ForAlgorithm returns the compressor registered for the given wire id.
func ForAlgorithm(algo tensor.CompressionAlgorithm) (Compressor, bool) {
	return compress.ForAlgorithm(algo)
}

// ByName returns the compressor with the given name ("gzip", "zstd",
// "snappy", "noop").
func ByName(name string) (Compressor, bool) {
	return compress.ByName(name)
}

// Decompress routes a compressed tensor to the compressor named by its
// descriptor.
func Decompress(t *tensor.RawTensor) (*tensor.RawTensor, error) {
	return compress.Decompress(t)
}
