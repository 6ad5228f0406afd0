package serde

import (
	"encoding/binary"
	"fmt"
)

// Buffer is a fixed-capacity byte region with a cursor, the unit the
// transport hands to and receives from the codec. Writes and reads move the
// cursor; Rewind resets it so a freshly encoded frame can be consumed from
// the start. One buffer may hold several tensor frames packed back-to-back.
//
// A Buffer is not safe for concurrent use; the owner must not share it
// between an encoder and another writer during a call.
type Buffer struct {
	data []byte
	pos  int
}

// NewBuffer allocates a buffer with the given capacity and cursor at 0.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{data: make([]byte, capacity)}
}

// Wrap wraps an existing byte region without copying. The cursor starts at 0.
func Wrap(data []byte) *Buffer {
	return &Buffer{data: data}
}

// Bytes returns the full backing byte region regardless of cursor position.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Len returns the buffer's capacity in bytes.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Position returns the cursor position.
func (b *Buffer) Position() int {
	return b.pos
}

// SetPosition moves the cursor.
func (b *Buffer) SetPosition(pos int) error {
	if pos < 0 || pos > len(b.data) {
		return fmt.Errorf("position %d out of range [0, %d]", pos, len(b.data))
	}
	b.pos = pos
	return nil
}

// Rewind resets the cursor to the start of the buffer.
func (b *Buffer) Rewind() {
	b.pos = 0
}

// Remaining returns the number of bytes between the cursor and capacity.
func (b *Buffer) Remaining() int {
	return len(b.data) - b.pos
}

// PutInt32 writes a little-endian int32 at the cursor and advances it.
func (b *Buffer) PutInt32(v int32) error {
	if b.Remaining() < 4 {
		return fmt.Errorf("%w: writing int32 at position %d of %d", ErrBufferTooSmall, b.pos, len(b.data))
	}
	binary.LittleEndian.PutUint32(b.data[b.pos:], uint32(v))
	b.pos += 4
	return nil
}

// PutBytes writes p at the cursor and advances it.
func (b *Buffer) PutBytes(p []byte) error {
	if b.Remaining() < len(p) {
		return fmt.Errorf("%w: writing %d bytes at position %d of %d", ErrBufferTooSmall, len(p), b.pos, len(b.data))
	}
	copy(b.data[b.pos:], p)
	b.pos += len(p)
	return nil
}

// ReadInt32 reads a little-endian int32 at the cursor and advances it.
func (b *Buffer) ReadInt32() (int32, error) {
	if b.Remaining() < 4 {
		return 0, fmt.Errorf("%w: reading int32 at position %d of %d", ErrShortBuffer, b.pos, len(b.data))
	}
	v := int32(binary.LittleEndian.Uint32(b.data[b.pos:]))
	b.pos += 4
	return v, nil
}

// ReadBytes returns the next n bytes as a slice of the backing region
// (zero-copy, valid only while the buffer is) and advances the cursor.
func (b *Buffer) ReadBytes(n int) ([]byte, error) {
	if n < 0 || b.Remaining() < n {
		return nil, fmt.Errorf("%w: reading %d bytes at position %d of %d", ErrShortBuffer, n, b.pos, len(b.data))
	}
	p := b.data[b.pos : b.pos+n]
	b.pos += n
	return p, nil
}
