// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package serde_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/tensorwire/compress"
	"github.com/born-ml/tensorwire/serde"
	"github.com/born-ml/tensorwire/tensor"
)

// TestPublicRoundTrip exercises the documented public API end to end.
func TestPublicRoundTrip(t *testing.T) {
	orig, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	require.NoError(t, err)

	buf := serde.NewBuffer(serde.SizeFor(orig))
	require.NoError(t, serde.Encode(orig, buf, true))

	decoded, err := serde.Decode(buf.Bytes())
	require.NoError(t, err)
	assert.True(t, decoded.Shape().Equal(orig.Shape()))
	assert.Equal(t, orig.AsFloat32(), decoded.AsFloat32())
}

// TestPublicCompressedRoundTrip exercises compression through the public API.
func TestPublicCompressedRoundTrip(t *testing.T) {
	data := make([]float64, 128)
	for i := range data {
		data[i] = float64(i % 4)
	}
	orig, err := tensor.FromSlice(data, tensor.Shape{128})
	require.NoError(t, err)

	c, ok := compress.ByName("zstd")
	require.True(t, ok)
	packed, err := c.Compress(orig)
	require.NoError(t, err)

	buf, err := serde.ToBuffer(packed)
	require.NoError(t, err)

	decoded, err := serde.Decode(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, tensor.Compressed, decoded.DType())

	back, err := compress.Decompress(decoded)
	require.NoError(t, err)
	assert.Equal(t, orig.AsFloat64(), back.AsFloat64())
}
