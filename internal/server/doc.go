// Package server provides the dirlite network server: connection handling,
// request dispatching and search execution over a read-only record store.
//
// # Overview
//
// A Server accepts TCP connections and serves each on its own goroutine.
// Every connection reads one request PDU, answers it and repeats:
//
//   - BindRequest is always answered with success. Credentials are not checked.
//   - SearchRequest streams one SearchResultEntry per matching record,
//     then a SearchResultDone.
//   - UnbindRequest closes the connection without a response.
//
// An unsupported operation or a malformed envelope closes the connection.
// A recognized but malformed Bind or Search is answered with a
// protocolError result before the connection is closed.
//
// # Starting a Server
//
//	store, err := directory.NewFileStore("/var/lib/dirlite/users.txt")
//	if err != nil {
//	    return err
//	}
//
//	srv, err := server.NewServer(server.Config{
//	    Address:        ":389",
//	    ReadTimeout:    30 * time.Second,
//	    WriteTimeout:   30 * time.Second,
//	    MaxConnections: 1000,
//	    BaseDN:         "ou=people,dc=example,dc=com",
//	}, store, logger)
//	if err != nil {
//	    return err
//	}
//
//	go srv.ListenAndServe()
//	defer srv.Shutdown(ctx)
//
// # Search Limits
//
// The effective size and time limits are the smaller of the client's
// request and the server's MaxSizeLimit and MaxTimeLimit, with zero meaning
// "no limit" on either side. A search that stops at the size limit ends
// with sizeLimitExceeded; one that runs out of time ends with
// timeLimitExceeded.
//
// Entries are named "uid=<uid>" followed by ",<BaseDN>" when a base DN is
// configured, and expose the cn and mail attributes.
//
// # Metrics
//
// Each Server keeps a VictoriaMetrics set of connection, request and search
// counters. NewMetricsServer exposes it in Prometheus text format:
//
//	metricsSrv := server.NewMetricsServer(":9389", srv.Metrics())
//	go metricsSrv.ListenAndServe()
package server
