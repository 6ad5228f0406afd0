// Package ipc moves encoded tensors between processes over TCP.
//
// The codec itself imposes no message boundaries; this layer does. A message
// is one transport buffer holding a small header followed by any number of
// tensor frames packed back-to-back.
package ipc

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"

	"github.com/born-ml/tensorwire/internal/serde"
	"github.com/born-ml/tensorwire/internal/tensor"
)

// Message header: 16-byte id, then an int32 tensor count.
const messageHeaderSize = 20

// Message is a batch of tensors shipped as one transport buffer.
type Message struct {
	ID      uuid.UUID
	Tensors []*tensor.RawTensor
}

// NewMessage builds a message with a fresh id.
func NewMessage(tensors ...*tensor.RawTensor) Message {
	return Message{ID: uuid.New(), Tensors: tensors}
}

// Pack encodes the message into a single buffer, frames back-to-back,
// cursor rewound and ready to send. Views are materialized first.
func (m Message) Pack() (*serde.Buffer, error) {
	ts := make([]*tensor.RawTensor, len(m.Tensors))
	size := messageHeaderSize
	for i, t := range m.Tensors {
		if t.IsView() {
			t = t.Dup()
		}
		ts[i] = t
		size += serde.SizeFor(t)
	}

	buf := serde.NewBuffer(size)
	if err := buf.PutBytes(m.ID[:]); err != nil {
		return nil, err
	}
	if err := buf.PutInt32(int32(len(ts))); err != nil {
		return nil, err
	}
	for i, t := range ts {
		if err := serde.Encode(t, buf, false); err != nil {
			return nil, fmt.Errorf("packing tensor %d of %d: %w", i, len(ts), err)
		}
	}
	buf.Rewind()
	return buf, nil
}

// Unpack decodes a message from a received buffer. Every tensor owns its own
// storage; src may be reused as soon as Unpack returns.
func Unpack(src []byte) (Message, error) {
	if len(src) < messageHeaderSize {
		return Message{}, fmt.Errorf("message too short: %d bytes", len(src))
	}

	var m Message
	copy(m.ID[:], src[:16])
	count := int32(binary.LittleEndian.Uint32(src[16:20]))
	if count < 0 {
		return Message{}, fmt.Errorf("message declares negative tensor count %d", count)
	}

	// Cap the preallocation: count is attacker-controlled until the frames
	// actually decode.
	m.Tensors = make([]*tensor.RawTensor, 0, min(int(count), 1024))
	offset := messageHeaderSize
	for i := int32(0); i < count; i++ {
		t, next, err := serde.DecodeNext(src, offset)
		if err != nil {
			return Message{}, fmt.Errorf("unpacking tensor %d of %d: %w", i, count, err)
		}
		m.Tensors = append(m.Tensors, t)
		offset = next
	}
	return m, nil
}
