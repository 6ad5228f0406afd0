package ipc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/born-ml/tensorwire/internal/tensor"
)

func TestClientServerRoundTrip(t *testing.T) {
	log := zaptest.NewLogger(t)
	received := make(chan Message, 4)

	srv, err := NewServer("127.0.0.1:0", 4, func(m Message) {
		received <- m
	}, log)
	require.NoError(t, err)
	go func() { _ = srv.Serve() }()
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := Dial(ctx, srv.Addr().String(), log)
	require.NoError(t, err)
	defer client.Close()

	raw, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	require.NoError(t, err)
	sent := NewMessage(raw)
	require.NoError(t, client.Send(sent))

	select {
	case got := <-received:
		assert.Equal(t, sent.ID, got.ID)
		require.Len(t, got.Tensors, 1)
		assert.True(t, got.Tensors[0].Shape().Equal(tensor.Shape{2, 3}))
		assert.Equal(t, raw.Data(), got.Tensors[0].Data())
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestClientServerMultipleMessages(t *testing.T) {
	log := zaptest.NewLogger(t)
	received := make(chan Message, 8)

	srv, err := NewServer("127.0.0.1:0", 2, func(m Message) {
		received <- m
	}, log)
	require.NoError(t, err)
	go func() { _ = srv.Serve() }()
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := Dial(ctx, srv.Addr().String(), log)
	require.NoError(t, err)
	defer client.Close()

	const n = 5
	for i := 0; i < n; i++ {
		raw, err := tensor.FromSlice([]int32{int32(i), int32(i + 1)}, tensor.Shape{2})
		require.NoError(t, err)
		require.NoError(t, client.Send(NewMessage(raw)))
	}

	for i := 0; i < n; i++ {
		select {
		case got := <-received:
			require.Len(t, got.Tensors, 1)
		case <-time.After(10 * time.Second):
			t.Fatalf("timed out waiting for message %d", i)
		}
	}
}

func TestDialFailsWhenNoListener(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := Dial(ctx, "127.0.0.1:1", zaptest.NewLogger(t))
	assert.Error(t, err)
}
