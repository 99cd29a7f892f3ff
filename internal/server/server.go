package server

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/KilimcininKorOglu/dirlite/internal/directory"
	"github.com/KilimcininKorOglu/dirlite/internal/logging"
	"github.com/puzpuzpuz/xsync/v3"
)

// Server errors
var (
	// ErrServerClosed is returned by Serve and Shutdown after Shutdown has been called.
	ErrServerClosed = errors.New("server: closed")
	// ErrNoStore is returned by NewServer when no record store is given.
	ErrNoStore = errors.New("server: record store is required")
)

// DefaultMaxMessageSize bounds a single request PDU when Config leaves it unset.
const DefaultMaxMessageSize = 32 * 1024

// Config holds the runtime settings of a Server.
type Config struct {
	// Address is the TCP listen address used by ListenAndServe.
	Address string
	// ReadTimeout bounds the wait for the next request PDU. Zero disables it.
	ReadTimeout time.Duration
	// WriteTimeout bounds the write of a single response PDU. Zero disables it.
	WriteTimeout time.Duration
	// MaxMessageSize is the largest accepted request PDU in bytes.
	MaxMessageSize int
	// MaxConnections caps concurrent connections. Zero means unlimited.
	MaxConnections int
	// BaseDN is appended to "uid=<uid>" when naming result entries.
	BaseDN string
	// MaxSizeLimit caps the entries returned per search. Zero means no cap.
	MaxSizeLimit int
	// MaxTimeLimit caps the seconds spent per search. Zero means no cap.
	MaxTimeLimit int
}

// Server accepts client connections and answers Bind, Search and Unbind
// requests from a read-only record store.
type Server struct {
	config  Config
	store   directory.Store
	logger  logging.Logger
	metrics *Metrics

	// conns holds every live connection keyed by its request ID.
	conns *xsync.MapOf[string, *Connection]
	wg    sync.WaitGroup

	mu       sync.Mutex
	listener net.Listener
	closed   bool

	// now is the clock used for search time limits.
	now func() time.Time
}

// NewServer creates a Server over store. A nil logger disables logging.
func NewServer(config Config, store directory.Store, logger logging.Logger) (*Server, error) {
	if store == nil {
		return nil, ErrNoStore
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if config.MaxMessageSize <= 0 {
		config.MaxMessageSize = DefaultMaxMessageSize
	}

	s := &Server{
		config: config,
		store:  store,
		logger: logger,
		conns:  xsync.NewMapOf[string, *Connection](),
		now:    time.Now,
	}
	s.metrics = newMetrics(s.ActiveConnections)
	return s, nil
}

// Metrics returns the server's metric set.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// ListenAndServe listens on the configured address and serves connections
// until Shutdown is called.
func (s *Server) ListenAndServe() error {
	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(listener)
}

// Serve accepts connections on listener, handling each on its own
// goroutine. It returns ErrServerClosed once Shutdown has been called.
func (s *Server) Serve(listener net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		listener.Close()
		return ErrServerClosed
	}
	s.listener = listener
	s.mu.Unlock()

	s.logger.Info("server listening", "address", listener.Addr().String())

	for {
		conn, err := listener.Accept()
		if err != nil {
			if s.isClosed() || errors.Is(err, net.ErrClosed) {
				return ErrServerClosed
			}
			s.logger.Warn("accept error", "error", err.Error())
			continue
		}

		if limit := s.config.MaxConnections; limit > 0 && s.conns.Size() >= limit {
			s.metrics.connectionsRejected.Inc()
			s.logger.Warn("connection limit reached",
				"client", conn.RemoteAddr().String(),
				"max_connections", limit)
			conn.Close()
			continue
		}

		c := s.track(conn)
		if c == nil {
			return ErrServerClosed
		}
		go s.run(c)
	}
}

// ServeConn handles a single connection on the calling goroutine and
// returns when the connection is closed.
func (s *Server) ServeConn(conn net.Conn) {
	c := s.track(conn)
	if c == nil {
		return
	}
	s.run(c)
}

// track registers a new connection. It returns nil and closes conn when
// the server is shutting down.
func (s *Server) track(conn net.Conn) *Connection {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		conn.Close()
		return nil
	}

	c := NewConnection(conn, s)
	s.conns.Store(c.requestID, c)
	s.wg.Add(1)
	s.metrics.connectionsTotal.Inc()
	return c
}

// run handles c and unregisters it afterwards.
func (s *Server) run(c *Connection) {
	defer s.wg.Done()
	defer s.conns.Delete(c.requestID)
	c.Handle()
}

// Addr returns the listener address, or nil before Serve is called.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// ActiveConnections returns the number of live connections.
func (s *Server) ActiveConnections() int {
	return s.conns.Size()
}

// Shutdown closes the listener and every live connection, then waits for
// the connection goroutines to finish or ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrServerClosed
	}
	s.closed = true
	listener := s.listener
	s.mu.Unlock()

	if listener != nil {
		listener.Close()
	}

	s.conns.Range(func(_ string, c *Connection) bool {
		c.Close()
		return true
	})

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("server stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("server shutdown timed out",
			"active_connections", s.conns.Size())
		return ctx.Err()
	}
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
