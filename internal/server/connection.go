package server

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/KilimcininKorOglu/dirlite/internal/ldap"
	"github.com/KilimcininKorOglu/dirlite/internal/logging"
)

// ErrConnectionClosed is returned when writing to a closed connection.
var ErrConnectionClosed = errors.New("server: connection closed")

// Connection represents an individual client connection. It reads one
// request PDU at a time, answers it and repeats until the client unbinds,
// the connection fails, or the server shuts down.
type Connection struct {
	// conn is the underlying network connection
	conn net.Conn
	// server is the parent server instance
	server *Server
	// mu protects closed
	mu sync.Mutex
	// closed indicates whether the connection has been closed
	closed bool
	// logger carries the connection's request ID
	logger logging.Logger
	// requestID is the unique identifier for this connection
	requestID string
	// startTime is when the connection was established
	startTime time.Time
}

// NewConnection creates a Connection for conn served by server.
func NewConnection(conn net.Conn, server *Server) *Connection {
	requestID := logging.GenerateRequestID()

	return &Connection{
		conn:      conn,
		server:    server,
		logger:    server.logger.WithRequestID(requestID),
		requestID: requestID,
		startTime: time.Now(),
	}
}

// RequestID returns the connection's unique identifier.
func (c *Connection) RequestID() string {
	return c.requestID
}

// Handle is the main message loop for the connection. It blocks until the
// connection is closed.
func (c *Connection) Handle() {
	client := c.conn.RemoteAddr().String()
	c.logger.Info("connection established", "client", client)

	defer func() {
		c.logger.Info("connection closed",
			"client", client,
			"duration_ms", time.Since(c.startTime).Milliseconds())
		c.Close()
	}()

	for {
		packet, err := c.readPacket()
		if err != nil {
			c.logReadError(err)
			return
		}

		msg, err := ldap.DecodeMessage(packet)
		if err != nil {
			c.handleDecodeError(msg, err)
			return
		}

		c.server.metrics.observeRequest(msg.Request)

		switch req := msg.Request.(type) {
		case *ldap.BindRequest:
			err = c.handleBind(msg.MessageID, req)
		case *ldap.SearchRequest:
			err = c.handleSearch(msg.MessageID, req)
		case *ldap.UnbindRequest:
			c.logger.Debug("unbind request received", "message_id", msg.MessageID)
			return
		}

		if err != nil {
			c.logger.Warn("write error",
				"error", err.Error(),
				"client", client)
			return
		}
	}
}

// readPacket reads the next request PDU, applying the read timeout.
func (c *Connection) readPacket() ([]byte, error) {
	if timeout := c.server.config.ReadTimeout; timeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return nil, err
		}
	}
	return ldap.ReadPacket(c.conn, c.server.config.MaxMessageSize)
}

// logReadError logs why reading stopped. A clean close by either side is
// not an error.
func (c *Connection) logReadError(err error) {
	client := c.conn.RemoteAddr().String()

	switch {
	case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed), c.isClosed():
		return
	case errors.Is(err, ldap.ErrInvalidPacket), errors.Is(err, ldap.ErrPacketTooLarge):
		c.server.metrics.protocolErrors.Inc()
		c.logger.Warn("protocol error",
			"error", err.Error(),
			"client", client)
	case errors.Is(err, os.ErrDeadlineExceeded):
		c.logger.Info("read timeout", "client", client)
	default:
		c.logger.Warn("network error",
			"error", err.Error(),
			"client", client)
	}
}

// handleDecodeError answers a recognized but malformed Bind or Search with
// a protocolError result. Malformed envelopes and unsupported operations
// get no response. The caller closes the connection in every case.
func (c *Connection) handleDecodeError(msg *ldap.Message, err error) {
	c.server.metrics.protocolErrors.Inc()

	if msg == nil || errors.Is(err, ldap.ErrUnsupportedOperation) {
		fields := []interface{}{
			"error", err.Error(),
			"client", c.conn.RemoteAddr().String(),
		}
		if msg != nil {
			fields = append(fields, "message_id", msg.MessageID, "operation", ldap.OperationName(msg.OpTag))
		}
		c.logger.Warn("protocol error", fields...)
		return
	}

	c.logger.Warn("malformed request",
		"error", err.Error(),
		"message_id", msg.MessageID,
		"operation", ldap.OperationName(msg.OpTag))

	result := ldap.Result{
		Code:              ldap.ResultProtocolError,
		DiagnosticMessage: "malformed " + ldap.OperationName(msg.OpTag),
	}

	var (
		data   []byte
		encErr error
	)
	switch msg.OpTag {
	case ldap.TagBindRequest:
		data, encErr = ldap.EncodeBindResponse(msg.MessageID, result)
	case ldap.TagSearchRequest:
		data, encErr = ldap.EncodeSearchResultDone(msg.MessageID, result)
	default:
		return
	}
	if encErr == nil {
		encErr = c.write(data)
	}
	if encErr != nil {
		c.logger.Warn("write error", "error", encErr.Error())
	}
}

// handleBind accepts every bind. Credentials are not checked.
func (c *Connection) handleBind(messageID int, req *ldap.BindRequest) error {
	c.logger.Debug("bind request",
		"dn", req.Name,
		"version", req.Version,
		"message_id", messageID)

	data, err := ldap.EncodeBindResponse(messageID, ldap.Result{Code: ldap.ResultSuccess})
	if err != nil {
		return err
	}
	return c.write(data)
}

// handleSearch streams matching entries followed by SearchResultDone.
func (c *Connection) handleSearch(messageID int, req *ldap.SearchRequest) error {
	start := time.Now()

	c.logger.Debug("search request",
		"base_dn", req.BaseObject,
		"scope", req.Scope.String(),
		"size_limit", req.SizeLimit,
		"time_limit", req.TimeLimit,
		"types_only", req.TypesOnly,
		"filter", req.Filter,
		"attributes", req.Attributes,
		"message_id", messageID)

	result, err := c.server.search(context.Background(), req, func(entry *ldap.SearchResultEntry) error {
		data, err := ldap.EncodeSearchResultEntry(messageID, entry)
		if err != nil {
			return err
		}
		if err := c.write(data); err != nil {
			return err
		}
		c.server.metrics.searchEntries.Inc()
		return nil
	})
	c.server.metrics.searchDuration.UpdateDuration(start)

	done := ldap.Result{Code: result.Code}
	switch {
	case errors.Is(err, ErrStoreUnavailable):
		c.server.metrics.searchStoreFailures.Inc()
		c.logger.Error("search failed",
			"base_dn", req.BaseObject,
			"error", err.Error(),
			"duration_ms", time.Since(start).Milliseconds())
		done = ldap.Result{Code: ldap.ResultOther, DiagnosticMessage: "record store unavailable"}
	case err != nil:
		return err
	default:
		c.server.metrics.observeSearchResult(result.Code)
		c.logger.Info("search completed",
			"base_dn", req.BaseObject,
			"results", result.Entries,
			"truncated", result.Truncated(),
			"result_code", result.Code.String(),
			"duration_ms", time.Since(start).Milliseconds())
	}

	data, err := ldap.EncodeSearchResultDone(messageID, done)
	if err != nil {
		return err
	}
	return c.write(data)
}

// write sends one response PDU, applying the write timeout.
func (c *Connection) write(data []byte) error {
	if c.isClosed() {
		return ErrConnectionClosed
	}
	if timeout := c.server.config.WriteTimeout; timeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
			return err
		}
	}
	_, err := c.conn.Write(data)
	return err
}

// Close closes the connection. It is safe to call more than once.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

func (c *Connection) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
