package server

import (
	"io"
	"net/http"
	"time"

	"github.com/KilimcininKorOglu/dirlite/internal/ldap"
	"github.com/VictoriaMetrics/metrics"
)

// Metrics holds the counters a Server exports in Prometheus text format.
// Each Server owns its own set so several servers can live in one process.
type Metrics struct {
	set *metrics.Set

	connectionsTotal    *metrics.Counter
	connectionsRejected *metrics.Counter

	bindRequests   *metrics.Counter
	searchRequests *metrics.Counter
	unbindRequests *metrics.Counter
	protocolErrors *metrics.Counter

	searchEntries       *metrics.Counter
	searchSizeExceeded  *metrics.Counter
	searchTimeExceeded  *metrics.Counter
	searchStoreFailures *metrics.Counter
	searchDuration      *metrics.Histogram
}

func newMetrics(active func() int) *Metrics {
	set := metrics.NewSet()
	m := &Metrics{
		set:                 set,
		connectionsTotal:    set.NewCounter("dirlite_connections_total"),
		connectionsRejected: set.NewCounter("dirlite_connections_rejected_total"),
		bindRequests:        set.NewCounter(`dirlite_requests_total{operation="bind"}`),
		searchRequests:      set.NewCounter(`dirlite_requests_total{operation="search"}`),
		unbindRequests:      set.NewCounter(`dirlite_requests_total{operation="unbind"}`),
		protocolErrors:      set.NewCounter("dirlite_protocol_errors_total"),
		searchEntries:       set.NewCounter("dirlite_search_entries_total"),
		searchSizeExceeded:  set.NewCounter(`dirlite_search_truncated_total{reason="size_limit"}`),
		searchTimeExceeded:  set.NewCounter(`dirlite_search_truncated_total{reason="time_limit"}`),
		searchStoreFailures: set.NewCounter("dirlite_search_store_errors_total"),
		searchDuration:      set.NewHistogram("dirlite_search_duration_seconds"),
	}
	set.NewGauge("dirlite_connections_active", func() float64 {
		return float64(active())
	})
	return m
}

// observeRequest counts a decoded request by operation.
func (m *Metrics) observeRequest(req ldap.Request) {
	switch req.(type) {
	case *ldap.BindRequest:
		m.bindRequests.Inc()
	case *ldap.SearchRequest:
		m.searchRequests.Inc()
	case *ldap.UnbindRequest:
		m.unbindRequests.Inc()
	}
}

// observeSearchResult counts the outcome of a completed search.
func (m *Metrics) observeSearchResult(code ldap.ResultCode) {
	switch code {
	case ldap.ResultSizeLimitExceeded:
		m.searchSizeExceeded.Inc()
	case ldap.ResultTimeLimitExceeded:
		m.searchTimeExceeded.Inc()
	}
}

// WritePrometheus writes the server metrics followed by process metrics.
func (m *Metrics) WritePrometheus(w io.Writer) {
	m.set.WritePrometheus(w)
	metrics.WriteProcessMetrics(w)
}

// Handler returns an http.Handler serving WritePrometheus output.
func (m *Metrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		m.WritePrometheus(w)
	})
}

// NewMetricsServer returns an HTTP server exposing m at /metrics on address.
func NewMetricsServer(address string, m *Metrics) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
