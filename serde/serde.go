// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package serde provides the public API for the tensor wire codec.
//
// The codec converts in-memory tensors into flat, self-describing byte
// frames and back. Frames carry no version field and no checksum; every peer
// in a deployment must share the pinned data type ordinals and shape
// descriptor layout from the tensor package.
//
// Example:
//
//	t, _ := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{3})
//	buf := serde.NewBuffer(serde.SizeFor(t))
//	if err := serde.Encode(t, buf, true); err != nil {
//	    log.Fatal(err)
//	}
//	back, err := serde.Decode(buf.Bytes())
package serde

import (
	"github.com/born-ml/tensorwire/internal/serde"
	"github.com/born-ml/tensorwire/internal/tensor"
)

// Buffer is a fixed-capacity byte region with a cursor.
type Buffer = serde.Buffer

// Codec errors.
var (
	ErrBufferTooSmall  = serde.ErrBufferTooSmall
	ErrCorrupt         = serde.ErrCorrupt
	ErrUnknownDataType = serde.ErrUnknownDataType
	ErrShortBuffer     = serde.ErrShortBuffer
	ErrNotContiguous   = serde.ErrNotContiguous
)

// NewBuffer allocates a buffer with the given capacity.
func NewBuffer(capacity int) *Buffer {
	return serde.NewBuffer(capacity)
}

// Wrap wraps an existing byte region without copying.
func Wrap(data []byte) *Buffer {
	return serde.Wrap(data)
}

// SizeFor returns the exact number of bytes Encode will write for t.
func SizeFor(t *tensor.RawTensor) int {
	return serde.SizeFor(t)
}

// Encode writes t as one frame into buf at the buffer's cursor. If
// rewindAfter is true the cursor is reset to the frame start afterwards.
func Encode(t *tensor.RawTensor, buf *Buffer, rewindAfter bool) error {
	return serde.Encode(t, buf, rewindAfter)
}

// ToBuffer encodes t into a freshly allocated, exactly sized, rewound buffer.
// Views are materialized first.
func ToBuffer(t *tensor.RawTensor) (*Buffer, error) {
	return serde.ToBuffer(t)
}

// DecodeNext reads one frame at offset and returns the tensor together with
// the offset of the next frame.
func DecodeNext(src []byte, offset int) (*tensor.RawTensor, int, error) {
	return serde.DecodeNext(src, offset)
}

// DecodeAt reads one frame at offset.
func DecodeAt(src []byte, offset int) (*tensor.RawTensor, error) {
	return serde.DecodeAt(src, offset)
}

// Decode reads one frame from the start of src.
func Decode(src []byte) (*tensor.RawTensor, error) {
	return serde.Decode(src)
}
