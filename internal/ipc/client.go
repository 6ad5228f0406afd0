package ipc

import (
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Client writes messages to a peer over TCP. Each message is sent as a
// 4-byte little-endian length prefix followed by the packed buffer.
//
// A Client is not safe for concurrent use.
type Client struct {
	addr string
	conn net.Conn
	log  *zap.Logger
}

// Dial connects to a peer, retrying with exponential backoff until the
// context is cancelled or the backoff gives up.
func Dial(ctx context.Context, addr string, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var conn net.Conn
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second

	err := backoff.Retry(func() error {
		var err error
		conn, err = (&net.Dialer{}).DialContext(ctx, "tcp", addr)
		if err != nil {
			log.Debug("dial failed, retrying", zap.String("addr", addr), zap.Error(err))
		}
		return err
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", addr, err)
	}

	log.Info("connected", zap.String("addr", addr))
	return &Client{addr: addr, conn: conn, log: log}, nil
}

// Send packs and writes one message.
func (c *Client) Send(m Message) error {
	buf, err := m.Pack()
	if err != nil {
		return fmt.Errorf("packing message %s: %w", m.ID, err)
	}

	payload := buf.Bytes()
	var prefix [4]byte
	binary.LittleEndian.PutUint32(prefix[:], uint32(len(payload)))
	if _, err := c.conn.Write(prefix[:]); err != nil {
		return fmt.Errorf("writing length prefix: %w", err)
	}
	if _, err := c.conn.Write(payload); err != nil {
		return fmt.Errorf("writing message %s: %w", m.ID, err)
	}

	messagesSent.Inc()
	bytesSent.Add(float64(len(payload)))
	c.log.Debug("message sent",
		zap.Stringer("id", m.ID),
		zap.Int("tensors", len(m.Tensors)),
		zap.Int("bytes", len(payload)))
	return nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
