package tensor

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/born-ml/tensorwire/internal/parallel"
)

// tensorBuffer is a reference-counted shared buffer for Copy-on-Write semantics.
// This enables cheap cloning and view creation without duplicating storage.
type tensorBuffer struct {
	data     []byte
	refCount atomic.Int32
	mu       sync.Mutex // For safe deallocation
}

// newTensorBuffer creates a new reference-counted buffer with refCount = 1.
func newTensorBuffer(size int) *tensorBuffer {
	buf := &tensorBuffer{
		data: make([]byte, size),
	}
	buf.refCount.Store(1)
	return buf
}

// addRef increments the reference count (for Clone and view operations).
func (tb *tensorBuffer) addRef() {
	tb.refCount.Add(1)
}

// release decrements the reference count and deallocates if it reaches 0.
func (tb *tensorBuffer) release() {
	if tb.refCount.Add(-1) == 0 {
		tb.mu.Lock()
		defer tb.mu.Unlock()
		tb.data = nil
	}
}

// RawTensor is the low-level tensor representation the codec operates on.
//
// A RawTensor either owns dense row-major storage or is a view: a tensor that
// aliases another tensor's buffer through strides and an element offset.
// Views are cheap to create but are not accepted by the encoder; call Dup to
// materialize one into owned contiguous storage first.
//
// A tensor with dtype Compressed carries its compressed payload in the data
// buffer and a CompressionDescriptor describing the original elements.
type RawTensor struct {
	buffer *tensorBuffer
	shape  Shape
	stride []int    // strides in elements
	dtype  DataType // Runtime type information
	offset int      // element offset into the buffer, non-zero only for views
	desc   *CompressionDescriptor
}

// NewRaw creates a new RawTensor with the given shape and type.
// Memory is allocated and zeroed.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if dtype == Compressed {
		return nil, fmt.Errorf("compressed tensors are created via NewCompressed")
	}

	byteSize := shape.NumElements() * dtype.Size()
	return &RawTensor{
		buffer: newTensorBuffer(byteSize),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
	}, nil
}

// FromSlice creates an owned contiguous RawTensor holding a copy of data.
func FromSlice[T DType](data []T, shape Shape) (*RawTensor, error) {
	var dummy T
	dtype := inferDataType(dummy)

	raw, err := NewRaw(shape, dtype)
	if err != nil {
		return nil, err
	}
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("data length %d does not match shape %v (%d elements)",
			len(data), shape, shape.NumElements())
	}
	if len(data) > 0 {
		src := unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*dtype.Size())
		copy(raw.buffer.data, src)
	}
	return raw, nil
}

// NewCompressed creates a compressed RawTensor from a payload and its
// descriptor. The payload is copied into owned storage.
func NewCompressed(shape Shape, payload []byte, desc *CompressionDescriptor) (*RawTensor, error) {
	if desc == nil {
		return nil, fmt.Errorf("compressed tensor requires a descriptor")
	}
	if int64(len(payload)) != desc.CompressedByteLength {
		return nil, fmt.Errorf("payload length %d does not match descriptor compressed length %d",
			len(payload), desc.CompressedByteLength)
	}
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	buf := newTensorBuffer(len(payload))
	copy(buf.data, payload)
	d := *desc
	return &RawTensor{
		buffer: buf,
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  Compressed,
		desc:   &d,
	}, nil
}

// NewRawFromDescriptor reconstructs an owned contiguous tensor from a wire
// shape descriptor and its element bytes. The data is copied, never aliased:
// the source buffer may belong to the transport and be reused immediately.
func NewRawFromDescriptor(desc ShapeDescriptor, dtype DataType, data []byte) (*RawTensor, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	raw, err := NewRaw(desc.Dims(), dtype)
	if err != nil {
		return nil, err
	}
	if len(data) != len(raw.buffer.data) {
		return nil, fmt.Errorf("element data length %d does not match shape %v of %s (%d bytes)",
			len(data), raw.shape, dtype, len(raw.buffer.data))
	}
	copy(raw.buffer.data, data)
	return raw, nil
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the tensor's memory strides in elements.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// Rank returns the number of dimensions.
func (r *RawTensor) Rank() int {
	return len(r.shape)
}

// NumElements returns the total number of logical elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the byte length of the element data: the compressed
// payload length for compressed tensors, elementSize*elementCount otherwise.
func (r *RawTensor) ByteSize() int {
	if r.dtype == Compressed {
		return int(r.desc.CompressedByteLength)
	}
	return r.NumElements() * r.dtype.Size()
}

// Descriptor returns the compression descriptor, nil for raw tensors.
func (r *RawTensor) Descriptor() *CompressionDescriptor {
	return r.desc
}

// IsCompressed reports whether the element buffer holds compressed bytes.
func (r *RawTensor) IsCompressed() bool {
	return r.dtype == Compressed
}

// IsView reports whether the tensor aliases shared storage non-contiguously.
// The codec rejects views; materialize with Dup first.
func (r *RawTensor) IsView() bool {
	if r.offset != 0 {
		return true
	}
	expected := r.shape.ComputeStrides()
	for i := range r.stride {
		if r.stride[i] != expected[i] {
			return true
		}
	}
	return false
}

// Data returns the raw element bytes.
// For views the returned slice starts at the view's offset and is not a
// faithful contiguous rendering of the logical elements; use Dup first.
func (r *RawTensor) Data() []byte {
	start := r.offset * r.dtype.Size()
	end := start + r.ByteSize()
	if end > len(r.buffer.data) {
		end = len(r.buffer.data)
	}
	return r.buffer.data[start:end]
}

// ShapeDescriptor returns the wire shape descriptor for this tensor.
func (r *RawTensor) ShapeDescriptor() ShapeDescriptor {
	return NewShapeDescriptor(r.shape, r.stride, r.offset)
}

// AsFloat32 interprets the data as []float32.
// Panics if the tensor's dtype is not Float32.
func (r *RawTensor) AsFloat32() []float32 {
	if r.dtype != Float32 {
		panic(fmt.Sprintf("tensor dtype is %s, not float32", r.dtype))
	}
	data := r.Data()
	return unsafe.Slice((*float32)(unsafe.Pointer(&data[0])), r.NumElements())
}

// AsFloat64 interprets the data as []float64.
// Panics if the tensor's dtype is not Float64.
func (r *RawTensor) AsFloat64() []float64 {
	if r.dtype != Float64 {
		panic(fmt.Sprintf("tensor dtype is %s, not float64", r.dtype))
	}
	data := r.Data()
	return unsafe.Slice((*float64)(unsafe.Pointer(&data[0])), r.NumElements())
}

// AsInt32 interprets the data as []int32.
// Panics if the tensor's dtype is not Int32.
func (r *RawTensor) AsInt32() []int32 {
	if r.dtype != Int32 {
		panic(fmt.Sprintf("tensor dtype is %s, not int32", r.dtype))
	}
	data := r.Data()
	return unsafe.Slice((*int32)(unsafe.Pointer(&data[0])), r.NumElements())
}

// AsInt64 interprets the data as []int64.
// Panics if the tensor's dtype is not Int64.
func (r *RawTensor) AsInt64() []int64 {
	if r.dtype != Int64 {
		panic(fmt.Sprintf("tensor dtype is %s, not int64", r.dtype))
	}
	data := r.Data()
	return unsafe.Slice((*int64)(unsafe.Pointer(&data[0])), r.NumElements())
}

// AsUint8 interprets the data as []uint8.
// Panics if the tensor's dtype is not Uint8.
func (r *RawTensor) AsUint8() []uint8 {
	if r.dtype != Uint8 {
		panic(fmt.Sprintf("tensor dtype is %s, not uint8", r.dtype))
	}
	return r.Data()
}

// AsBool interprets the data as []bool.
// Panics if the tensor's dtype is not Bool.
func (r *RawTensor) AsBool() []bool {
	if r.dtype != Bool {
		panic(fmt.Sprintf("tensor dtype is %s, not bool", r.dtype))
	}
	data := r.Data()
	return unsafe.Slice((*bool)(unsafe.Pointer(&data[0])), r.NumElements())
}

// Clone creates a shallow copy sharing the underlying buffer (refcounted).
func (r *RawTensor) Clone() *RawTensor {
	r.buffer.addRef()
	return &RawTensor{
		buffer: r.buffer,
		shape:  r.shape.Clone(),
		stride: append([]int(nil), r.stride...),
		dtype:  r.dtype,
		offset: r.offset,
		desc:   r.desc,
	}
}

// Release decrements the buffer reference count and deallocates at zero.
func (r *RawTensor) Release() {
	r.buffer.release()
}

// Narrow returns a view selecting [start, start+length) along dim.
// The view shares the receiver's buffer.
func (r *RawTensor) Narrow(dim, start, length int) (*RawTensor, error) {
	if r.dtype == Compressed {
		return nil, fmt.Errorf("cannot take a view of a compressed tensor")
	}
	if dim < 0 || dim >= len(r.shape) {
		return nil, fmt.Errorf("dimension %d out of range for rank %d", dim, len(r.shape))
	}
	if start < 0 || length <= 0 || start+length > r.shape[dim] {
		return nil, fmt.Errorf("narrow [%d, %d) out of range for dimension of size %d",
			start, start+length, r.shape[dim])
	}

	r.buffer.addRef()
	shape := r.shape.Clone()
	shape[dim] = length
	return &RawTensor{
		buffer: r.buffer,
		shape:  shape,
		stride: append([]int(nil), r.stride...),
		dtype:  r.dtype,
		offset: r.offset + start*r.stride[dim],
	}, nil
}

// Transpose returns a view with the two given dimensions swapped.
func (r *RawTensor) Transpose(dim0, dim1 int) (*RawTensor, error) {
	if r.dtype == Compressed {
		return nil, fmt.Errorf("cannot take a view of a compressed tensor")
	}
	if dim0 < 0 || dim0 >= len(r.shape) || dim1 < 0 || dim1 >= len(r.shape) {
		return nil, fmt.Errorf("dimensions (%d, %d) out of range for rank %d", dim0, dim1, len(r.shape))
	}

	r.buffer.addRef()
	shape := r.shape.Clone()
	stride := append([]int(nil), r.stride...)
	shape[dim0], shape[dim1] = shape[dim1], shape[dim0]
	stride[dim0], stride[dim1] = stride[dim1], stride[dim0]
	return &RawTensor{
		buffer: r.buffer,
		shape:  shape,
		stride: stride,
		dtype:  r.dtype,
		offset: r.offset,
	}, nil
}

// Dup materializes the tensor into freshly allocated, owned, contiguous
// row-major storage. For views this gathers the strided elements; for
// tensors already contiguous it is a plain deep copy.
func (r *RawTensor) Dup() *RawTensor {
	if r.dtype == Compressed {
		dup, err := NewCompressed(r.shape, r.Data(), r.desc)
		if err != nil {
			panic(fmt.Sprintf("dup of compressed tensor: %v", err))
		}
		return dup
	}

	dst, err := NewRaw(r.shape, r.dtype)
	if err != nil {
		panic(fmt.Sprintf("dup: %v", err))
	}

	if !r.IsView() {
		copy(dst.buffer.data, r.Data())
		return dst
	}

	es := r.dtype.Size()
	rank := len(r.shape)
	src := r.buffer.data
	dstData := dst.buffer.data
	dstStride := r.shape.ComputeStrides()

	// Gather element by element: each logical row-major index maps through
	// the view's strides and offset.
	parallel.For(r.NumElements(), func(i int) {
		srcElem := r.offset
		for d := 0; d < rank; d++ {
			srcElem += (i / dstStride[d] % r.shape[d]) * r.stride[d]
		}
		copy(dstData[i*es:(i+1)*es], src[srcElem*es:(srcElem+1)*es])
	}, parallel.DefaultConfig())

	return dst
}
