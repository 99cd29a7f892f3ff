// Package logging provides structured logging for the dirlite server.
//
// # Overview
//
// Logger is a small key/value interface backed by zap's SugaredLogger. It
// supports:
//
//   - Multiple log levels (debug, info, warn, error)
//   - Text (zap console encoder) and JSON output formats
//   - Per-connection request IDs
//   - Field-based contextual logging
//
// # Creating a Logger
//
//	logger := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	    Output: "/var/log/dirlite/dirlite.log",
//	})
//	defer logger.Sync()
//
// For testing, use a no-op logger or wrap a zap observer core:
//
//	logger := logging.NewNop()
//	core, logs := observer.New(zapcore.DebugLevel)
//	logger = logging.NewFromCore(core)
//
// # Structured Fields
//
// Key/value pairs follow the message:
//
//	logger.Info("search completed", "base_dn", base, "results", n)
//
// Values implementing zapcore.ObjectMarshaler are logged as nested objects.
package logging
