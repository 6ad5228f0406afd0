package compress

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/tensorwire/internal/serde"
	"github.com/born-ml/tensorwire/internal/tensor"
)

func testTensor(t *testing.T) *tensor.RawTensor {
	t.Helper()
	// Repetitive data so the real codecs actually shrink it.
	data := make([]float32, 256)
	for i := range data {
		data[i] = float32(i % 8)
	}
	raw, err := tensor.FromSlice(data, tensor.Shape{16, 16})
	require.NoError(t, err)
	return raw
}

func TestCompressRoundTripAllAlgorithms(t *testing.T) {
	for _, algo := range []tensor.CompressionAlgorithm{tensor.NoOp, tensor.Gzip, tensor.Zstd, tensor.Snappy} {
		t.Run(algo.String(), func(t *testing.T) {
			c, ok := ForAlgorithm(algo)
			require.True(t, ok)

			orig := testTensor(t)
			packed, err := c.Compress(orig)
			require.NoError(t, err)

			assert.True(t, packed.IsCompressed())
			desc := packed.Descriptor()
			require.NotNil(t, desc)
			assert.Equal(t, algo, desc.Algorithm)
			assert.Equal(t, tensor.Float32, desc.OriginalType)
			assert.Equal(t, int64(256), desc.OriginalElementCount)
			assert.Equal(t, int64(1024), desc.OriginalByteLength)
			assert.Equal(t, int64(packed.ByteSize()), desc.CompressedByteLength)

			back, err := c.Decompress(packed)
			require.NoError(t, err)
			assert.Equal(t, tensor.Float32, back.DType())
			assert.True(t, back.Shape().Equal(orig.Shape()))
			assert.Equal(t, orig.Data(), back.Data())
		})
	}
}

func TestCompressLeavesSourceUntouched(t *testing.T) {
	orig := testTensor(t)
	before := append([]byte(nil), orig.Data()...)

	c, _ := ForAlgorithm(tensor.Zstd)
	_, err := c.Compress(orig)
	require.NoError(t, err)

	assert.Equal(t, before, orig.Data())
	assert.Equal(t, tensor.Float32, orig.DType())
}

func TestCompressView(t *testing.T) {
	orig := testTensor(t)
	view, err := orig.Transpose(0, 1)
	require.NoError(t, err)

	c, _ := ForAlgorithm(tensor.Gzip)
	packed, err := c.Compress(view)
	require.NoError(t, err)

	back, err := c.Decompress(packed)
	require.NoError(t, err)
	assert.Equal(t, view.Dup().Data(), back.Data())
}

func TestDecompressRouting(t *testing.T) {
	orig := testTensor(t)
	c, _ := ForAlgorithm(tensor.Snappy)
	packed, err := c.Compress(orig)
	require.NoError(t, err)

	back, err := Decompress(packed)
	require.NoError(t, err)
	assert.Equal(t, orig.Data(), back.Data())

	_, err = Decompress(orig)
	assert.Error(t, err, "raw tensors cannot be decompressed")
}

func TestDecompressWrongAlgorithm(t *testing.T) {
	orig := testTensor(t)
	gz, _ := ForAlgorithm(tensor.Gzip)
	packed, err := gz.Compress(orig)
	require.NoError(t, err)

	zs, _ := ForAlgorithm(tensor.Zstd)
	_, err = zs.Decompress(packed)
	assert.Error(t, err)
}

// TestDecompressGzipOverlongStream hands gzip a payload that inflates far
// past the descriptor's declared original length. Decompression must stop at
// the declared length and fail, not inflate the whole stream first.
func TestDecompressGzipOverlongStream(t *testing.T) {
	var compressed bytes.Buffer
	w := gzip.NewWriter(&compressed)
	_, err := w.Write(make([]byte, 1<<16))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	desc := &tensor.CompressionDescriptor{
		Algorithm:            tensor.Gzip,
		OriginalType:         tensor.Float32,
		OriginalElementCount: 2,
		OriginalByteLength:   8, // lies: the stream inflates to 64 KiB
		CompressedByteLength: int64(compressed.Len()),
	}
	packed, err := tensor.NewCompressed(tensor.Shape{2}, compressed.Bytes(), desc)
	require.NoError(t, err)

	gz, _ := ForAlgorithm(tensor.Gzip)
	_, err = gz.Decompress(packed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds declared length")
}

func TestCompressAlreadyCompressed(t *testing.T) {
	orig := testTensor(t)
	c, _ := ForAlgorithm(tensor.Zstd)
	packed, err := c.Compress(orig)
	require.NoError(t, err)

	_, err = c.Compress(packed)
	assert.Error(t, err)
}

func TestByName(t *testing.T) {
	for _, name := range []string{"noop", "gzip", "zstd", "snappy"} {
		c, ok := ByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, c.Algorithm().String())
	}
	_, ok := ByName("lz77")
	assert.False(t, ok)
}

// TestCompressedWireRoundTrip runs a compressed tensor through the full
// encode/decode/decompress pipeline.
func TestCompressedWireRoundTrip(t *testing.T) {
	orig := testTensor(t)
	c, _ := ForAlgorithm(tensor.Zstd)
	packed, err := c.Compress(orig)
	require.NoError(t, err)

	buf, err := serde.ToBuffer(packed)
	require.NoError(t, err)
	assert.Equal(t, serde.SizeFor(packed), buf.Len())

	decoded, err := serde.Decode(buf.Bytes())
	require.NoError(t, err)
	require.True(t, decoded.IsCompressed())

	back, err := Decompress(decoded)
	require.NoError(t, err)
	assert.True(t, back.Shape().Equal(orig.Shape()))
	assert.Equal(t, orig.Data(), back.Data())
}
