package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"

	"github.com/born-ml/tensorwire/internal/tensor"
)

// noopCompressor stores the payload verbatim. Useful for forcing the
// compressed frame layout without paying for an algorithm.
type noopCompressor struct{}

func (noopCompressor) Algorithm() tensor.CompressionAlgorithm { return tensor.NoOp }

func (noopCompressor) Compress(t *tensor.RawTensor) (*tensor.RawTensor, error) {
	return compressWith(tensor.NoOp, t, func(src []byte) ([]byte, error) {
		out := make([]byte, len(src))
		copy(out, src)
		return out, nil
	})
}

func (noopCompressor) Decompress(t *tensor.RawTensor) (*tensor.RawTensor, error) {
	return decompressWith(tensor.NoOp, t, func(src []byte, _ int) ([]byte, error) {
		out := make([]byte, len(src))
		copy(out, src)
		return out, nil
	})
}

// gzipCompressor uses klauspost's gzip at the default level.
type gzipCompressor struct{}

func (gzipCompressor) Algorithm() tensor.CompressionAlgorithm { return tensor.Gzip }

func (gzipCompressor) Compress(t *tensor.RawTensor) (*tensor.RawTensor, error) {
	return compressWith(tensor.Gzip, t, func(src []byte) ([]byte, error) {
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(src); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})
}

func (gzipCompressor) Decompress(t *tensor.RawTensor) (*tensor.RawTensor, error) {
	return decompressWith(tensor.Gzip, t, func(src []byte, originalLen int) ([]byte, error) {
		r, err := gzip.NewReader(bytes.NewReader(src))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		// Stop inflating one byte past the declared length; anything beyond
		// it is a length mismatch, so there is no point decompressing it.
		buf := bytes.NewBuffer(make([]byte, 0, originalLen))
		n, err := io.Copy(buf, io.LimitReader(r, int64(originalLen)+1))
		if err != nil {
			return nil, err
		}
		if n > int64(originalLen) {
			return nil, fmt.Errorf("gzip stream exceeds declared length %d", originalLen)
		}
		return buf.Bytes(), nil
	})
}

// zstdCompressor shares one encoder/decoder pair; both are safe for
// concurrent use via EncodeAll/DecodeAll.
type zstdCompressor struct{}

var (
	zstdEncoder, _ = zstd.NewWriter(nil)
	zstdDecoder, _ = zstd.NewReader(nil)
)

func (zstdCompressor) Algorithm() tensor.CompressionAlgorithm { return tensor.Zstd }

func (zstdCompressor) Compress(t *tensor.RawTensor) (*tensor.RawTensor, error) {
	return compressWith(tensor.Zstd, t, func(src []byte) ([]byte, error) {
		return zstdEncoder.EncodeAll(src, nil), nil
	})
}

func (zstdCompressor) Decompress(t *tensor.RawTensor) (*tensor.RawTensor, error) {
	return decompressWith(tensor.Zstd, t, func(src []byte, originalLen int) ([]byte, error) {
		return zstdDecoder.DecodeAll(src, make([]byte, 0, originalLen))
	})
}

// snappyCompressor uses the S2 snappy-compatible block format.
type snappyCompressor struct{}

func (snappyCompressor) Algorithm() tensor.CompressionAlgorithm { return tensor.Snappy }

func (snappyCompressor) Compress(t *tensor.RawTensor) (*tensor.RawTensor, error) {
	return compressWith(tensor.Snappy, t, func(src []byte) ([]byte, error) {
		return s2.EncodeSnappy(nil, src), nil
	})
}

func (snappyCompressor) Decompress(t *tensor.RawTensor) (*tensor.RawTensor, error) {
	return decompressWith(tensor.Snappy, t, func(src []byte, originalLen int) ([]byte, error) {
		decoded, err := s2.Decode(make([]byte, 0, originalLen), src)
		if err != nil {
			return nil, fmt.Errorf("snappy block: %w", err)
		}
		return decoded, nil
	})
}
