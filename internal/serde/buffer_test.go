package serde

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferCursor(t *testing.T) {
	buf := NewBuffer(16)
	assert.Equal(t, 0, buf.Position())
	assert.Equal(t, 16, buf.Remaining())

	require.NoError(t, buf.PutInt32(7))
	require.NoError(t, buf.PutInt32(-3))
	assert.Equal(t, 8, buf.Position())
	assert.Equal(t, 8, buf.Remaining())

	buf.Rewind()
	v, err := buf.ReadInt32()
	require.NoError(t, err)
	assert.Equal(t, int32(7), v)
	v, err = buf.ReadInt32()
	require.NoError(t, err)
	assert.Equal(t, int32(-3), v)
}

func TestBufferBoundsChecked(t *testing.T) {
	buf := NewBuffer(6)
	require.NoError(t, buf.PutInt32(1))

	err := buf.PutInt32(2)
	assert.ErrorIs(t, err, ErrBufferTooSmall)

	err = buf.PutBytes([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrBufferTooSmall)

	buf.Rewind()
	_, err = buf.ReadBytes(7)
	assert.ErrorIs(t, err, ErrShortBuffer)
}

func TestBufferSetPosition(t *testing.T) {
	buf := NewBuffer(8)
	require.NoError(t, buf.SetPosition(8))
	assert.Equal(t, 0, buf.Remaining())
	assert.Error(t, buf.SetPosition(9))
	assert.Error(t, buf.SetPosition(-1))
}

func TestWrapIsZeroCopy(t *testing.T) {
	backing := []byte{1, 2, 3, 4}
	buf := Wrap(backing)

	p, err := buf.ReadBytes(2)
	require.NoError(t, err)
	backing[0] = 9
	assert.Equal(t, byte(9), p[0], "ReadBytes must alias the backing region")
	assert.Equal(t, 2, buf.Position())
}
