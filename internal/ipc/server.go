package ipc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// maxMessageSize bounds how much a single length prefix may ask us to
// allocate before the message is decoded.
const maxMessageSize = 1 << 30

// Handler receives every successfully decoded message.
// It runs on the server's worker pool and must not retain the message's
// tensors beyond its own lifetime unless it clones them.
type Handler func(m Message)

// Server accepts connections and decodes length-prefixed messages onto a
// worker pool.
type Server struct {
	ln      net.Listener
	pool    *ants.Pool
	handler Handler
	log     *zap.Logger
	wg      sync.WaitGroup
	closed  atomic.Bool
}

// NewServer listens on addr. Pass workers <= 0 for the ants default.
func NewServer(addr string, workers int, handler Handler, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if workers <= 0 {
		workers = ants.DefaultAntsPoolSize
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		_ = ln.Close()
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}

	return &Server{ln: ln, pool: pool, handler: handler, log: log}, nil
}

// Addr returns the listener's address, useful when listening on port 0.
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Serve accepts connections until Close. It blocks.
func (s *Server) Serve() error {
	s.log.Info("serving", zap.Stringer("addr", s.ln.Addr()))
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if s.closed.Load() {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		s.wg.Add(1)
		go s.serveConn(conn)
	}
}

func (s *Server) serveConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	remote := conn.RemoteAddr()
	s.log.Debug("connection opened", zap.Stringer("remote", remote))

	for {
		var prefix [4]byte
		if _, err := io.ReadFull(conn, prefix[:]); err != nil {
			if !errors.Is(err, io.EOF) && !s.closed.Load() {
				s.log.Warn("reading length prefix", zap.Stringer("remote", remote), zap.Error(err))
			}
			return
		}
		length := binary.LittleEndian.Uint32(prefix[:])
		if length > maxMessageSize {
			s.log.Warn("message exceeds size limit, dropping connection",
				zap.Stringer("remote", remote), zap.Uint32("length", length))
			return
		}

		payload := make([]byte, length)
		if _, err := io.ReadFull(conn, payload); err != nil {
			s.log.Warn("reading message body", zap.Stringer("remote", remote), zap.Error(err))
			return
		}
		bytesReceived.Add(float64(length))

		if err := s.pool.Submit(func() { s.dispatch(payload, remote) }); err != nil {
			s.log.Warn("submitting to worker pool", zap.Error(err))
			return
		}
	}
}

func (s *Server) dispatch(payload []byte, remote net.Addr) {
	m, err := Unpack(payload)
	if err != nil {
		// A corrupt or truncated frame fails the whole message; there is no
		// resynchronization within a buffer.
		decodeErrors.Inc()
		s.log.Warn("dropping undecodable message", zap.Stringer("remote", remote), zap.Error(err))
		return
	}

	messagesReceived.Inc()
	framesDecoded.Add(float64(len(m.Tensors)))
	s.log.Debug("message received",
		zap.Stringer("id", m.ID),
		zap.Stringer("remote", remote),
		zap.Int("tensors", len(m.Tensors)))

	if s.handler != nil {
		s.handler(m)
	}
}

// Close stops accepting, waits for open connections and releases the pool.
func (s *Server) Close() error {
	s.closed.Store(true)
	err := s.ln.Close()
	s.wg.Wait()
	s.pool.Release()
	return err
}
