package tensor

import (
	"testing"
)

func TestShapeInfoLength(t *testing.T) {
	cases := []struct{ rank, want int }{
		{0, 4},
		{1, 6},
		{2, 8},
		{3, 10},
		{6, 16},
	}
	for _, c := range cases {
		if got := ShapeInfoLength(c.rank); got != c.want {
			t.Errorf("ShapeInfoLength(%d) = %d, want %d", c.rank, got, c.want)
		}
	}
}

func TestShapeDescriptorLayout(t *testing.T) {
	shape := Shape{2, 3}
	desc := NewShapeDescriptor(shape, shape.ComputeStrides(), 0)

	if len(desc) != ShapeInfoLength(2) {
		t.Fatalf("descriptor length = %d, want %d", len(desc), ShapeInfoLength(2))
	}
	if desc.Rank() != 2 {
		t.Errorf("Rank() = %d, want 2", desc.Rank())
	}
	if !desc.Dims().Equal(shape) {
		t.Errorf("Dims() = %v, want %v", desc.Dims(), shape)
	}
	if got := desc.Strides(); got[0] != 3 || got[1] != 1 {
		t.Errorf("Strides() = %v, want [3 1]", got)
	}
	if desc.Offset() != 0 {
		t.Errorf("Offset() = %d, want 0", desc.Offset())
	}
	if desc.Order() != OrderC {
		t.Errorf("Order() = %d, want %d", desc.Order(), OrderC)
	}
	if desc.ElementCount() != 6 {
		t.Errorf("ElementCount() = %d, want 6", desc.ElementCount())
	}
}

func TestShapeDescriptorScalar(t *testing.T) {
	desc := NewShapeDescriptor(Shape{}, nil, 0)
	if len(desc) != 4 {
		t.Fatalf("scalar descriptor length = %d, want 4", len(desc))
	}
	if desc.Rank() != 0 {
		t.Errorf("Rank() = %d, want 0", desc.Rank())
	}
	if desc.ElementCount() != 1 {
		t.Errorf("ElementCount() = %d, want 1", desc.ElementCount())
	}
	if err := desc.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestShapeDescriptorBytesRoundTrip(t *testing.T) {
	shape := Shape{4, 2, 5}
	orig := NewShapeDescriptor(shape, shape.ComputeStrides(), 0)

	raw := orig.Bytes()
	if len(raw) != orig.ByteLength() {
		t.Fatalf("Bytes() length = %d, want %d", len(raw), orig.ByteLength())
	}

	decoded, err := ShapeDescriptorFromBytes(raw, len(orig))
	if err != nil {
		t.Fatalf("ShapeDescriptorFromBytes: %v", err)
	}
	for i := range orig {
		if decoded[i] != orig[i] {
			t.Errorf("decoded[%d] = %d, want %d", i, decoded[i], orig[i])
		}
	}

	// The decode must copy, never alias.
	raw[0] = 0xFF
	if decoded[0] != orig[0] {
		t.Error("decoded descriptor aliases the source bytes")
	}
}

func TestShapeDescriptorFromBytesShort(t *testing.T) {
	if _, err := ShapeDescriptorFromBytes(make([]byte, 7), 2); err == nil {
		t.Error("expected error for short input")
	}
}

func TestShapeDescriptorValidate(t *testing.T) {
	shape := Shape{2, 2}
	desc := NewShapeDescriptor(shape, shape.ComputeStrides(), 0)
	if err := desc.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	// Truncated descriptor.
	if err := desc[:5].Validate(); err == nil {
		t.Error("expected error for truncated descriptor")
	}

	// Zero dimension.
	bad := NewShapeDescriptor(Shape{2, 0}, []int{1, 1}, 0)
	if err := bad.Validate(); err == nil {
		t.Error("expected error for zero dimension")
	}
}

func TestElementWiseStrideView(t *testing.T) {
	// Transposed strides are not row-major dense, so the descriptor must
	// record elementWiseStride 0.
	desc := NewShapeDescriptor(Shape{3, 2}, []int{1, 3}, 0)
	if desc[2+2*2] != 0 {
		t.Errorf("elementWiseStride = %d, want 0", desc[2+2*2])
	}
}
