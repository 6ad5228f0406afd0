package tensor

import (
	"encoding/binary"
	"fmt"
)

// CompressionAlgorithm identifies the codec used to compress a tensor's
// element buffer. Like DataType ordinals, the values are wire constants
// shared by every peer; append only.
type CompressionAlgorithm int32

// Known compression algorithms.
const (
	NoOp   CompressionAlgorithm = 0
	Gzip   CompressionAlgorithm = 1
	Zstd   CompressionAlgorithm = 2
	Snappy CompressionAlgorithm = 3
)

// String returns the algorithm name.
func (a CompressionAlgorithm) String() string {
	switch a {
	case NoOp:
		return "noop"
	case Gzip:
		return "gzip"
	case Zstd:
		return "zstd"
	case Snappy:
		return "snappy"
	default:
		return "unknown"
	}
}

// DescriptorByteLength is the fixed wire size of a CompressionDescriptor.
// It does not depend on the payload length.
const DescriptorByteLength = 32

// CompressionDescriptor describes how a tensor's element buffer was
// compressed: which algorithm, what the original elements looked like, and
// how many compressed bytes follow it on the wire.
//
// It lives in this package rather than next to the compressor
// implementations so that RawTensor can carry one without an import cycle.
type CompressionDescriptor struct {
	Algorithm            CompressionAlgorithm
	OriginalType         DataType // element type before compression
	OriginalElementCount int64
	OriginalByteLength   int64
	CompressedByteLength int64
}

// ByteLength returns the encoded byte length of the descriptor.
func (d *CompressionDescriptor) ByteLength() int {
	return DescriptorByteLength
}

// AppendBytes appends the descriptor's little-endian wire form to dst.
func (d *CompressionDescriptor) AppendBytes(dst []byte) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(d.Algorithm))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(d.OriginalType))
	dst = binary.LittleEndian.AppendUint64(dst, uint64(d.OriginalElementCount))
	dst = binary.LittleEndian.AppendUint64(dst, uint64(d.OriginalByteLength))
	dst = binary.LittleEndian.AppendUint64(dst, uint64(d.CompressedByteLength))
	return dst
}

// Bytes returns the descriptor's little-endian wire form.
func (d *CompressionDescriptor) Bytes() []byte {
	return d.AppendBytes(make([]byte, 0, DescriptorByteLength))
}

// DescriptorFromBytes decodes a CompressionDescriptor from the first
// DescriptorByteLength bytes of src.
func DescriptorFromBytes(src []byte) (*CompressionDescriptor, error) {
	if len(src) < DescriptorByteLength {
		return nil, fmt.Errorf("compression descriptor needs %d bytes, have %d",
			DescriptorByteLength, len(src))
	}
	origType, ok := DataTypeFromOrdinal(int32(binary.LittleEndian.Uint32(src[4:8])))
	if !ok {
		return nil, fmt.Errorf("compression descriptor has unknown original type ordinal %d",
			int32(binary.LittleEndian.Uint32(src[4:8])))
	}
	return &CompressionDescriptor{
		Algorithm:            CompressionAlgorithm(binary.LittleEndian.Uint32(src[0:4])),
		OriginalType:         origType,
		OriginalElementCount: int64(binary.LittleEndian.Uint64(src[8:16])),
		OriginalByteLength:   int64(binary.LittleEndian.Uint64(src[16:24])),
		CompressedByteLength: int64(binary.LittleEndian.Uint64(src[24:32])),
	}, nil
}
