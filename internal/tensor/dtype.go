// Package tensor provides the host-memory tensor types the wire codec operates on.
package tensor

// DType is a constraint for supported tensor element types.
type DType interface {
	~float32 | ~float64 | ~int32 | ~int64 | ~uint8 | ~bool
}

// DataType represents runtime type information for tensors.
//
// The numeric values double as wire ordinals: the encoder writes them into
// the frame header and a decoder on the other side of the pipe maps them
// back. They are a pinned convention shared by every peer in a deployment.
// Never reorder or renumber; append only.
type DataType int32

// Supported data types and their wire ordinals.
const (
	Float32 DataType = 0
	Float64 DataType = 1
	Int32   DataType = 2
	Int64   DataType = 3
	Uint8   DataType = 4
	Bool    DataType = 5
	// Compressed marks a tensor whose element buffer holds compressed bytes
	// described by an attached CompressionDescriptor.
	Compressed DataType = 6

	numDataTypes = 7
)

// Size returns the byte size of one element of the data type.
// For Compressed the element unit is a single byte.
func (dt DataType) Size() int {
	switch dt {
	case Float32, Int32:
		return 4
	case Float64, Int64:
		return 8
	case Uint8, Bool, Compressed:
		return 1
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	case Bool:
		return "bool"
	case Compressed:
		return "compressed"
	default:
		return "unknown"
	}
}

// DataTypeFromOrdinal maps a wire ordinal back to a DataType.
// The second result is false for ordinals outside the pinned table.
func DataTypeFromOrdinal(ordinal int32) (DataType, bool) {
	if ordinal < 0 || ordinal >= numDataTypes {
		return 0, false
	}
	return DataType(ordinal), true
}

// inferDataType infers DataType from a generic type T.
func inferDataType[T DType](dummy T) DataType {
	switch any(dummy).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	case int32:
		return Int32
	case int64:
		return Int64
	case uint8:
		return Uint8
	case bool:
		return Bool
	default:
		panic("unsupported type")
	}
}
