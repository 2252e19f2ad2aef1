package ioredir

import (
	"net/http"

	vm "github.com/VictoriaMetrics/metrics"
)

// Metrics is the set of counters ioredird exposes. They are cheap
// no-op-by-construction: when metrics are disabled (Listen is never
// started), incrementing them just updates in-memory counters that are
// never scraped.
type Metrics struct {
	AcceptsTotal           *vm.Counter
	HandshakeFailuresTotal *vm.Counter
	PoolExhaustedTotal     *vm.Counter
	BytesRelayedTx         *vm.Counter
	BytesRelayedRx         *vm.Counter
}

// NewMetrics registers a fresh, independent set of counters in their
// own registry, so multiple Listeners (e.g. in tests) don't collide on
// global metric names.
func NewMetrics() (Metrics, *vm.Set) {
	set := vm.NewSet()
	return Metrics{
		AcceptsTotal:           set.NewCounter("ioredir_accepts_total"),
		HandshakeFailuresTotal: set.NewCounter("ioredir_handshake_failures_total"),
		PoolExhaustedTotal:     set.NewCounter("ioredir_pool_exhausted_total"),
		BytesRelayedTx:         set.GetOrCreateCounter("ioredir_bytes_relayed_total{direction=\"tx\"}"),
		BytesRelayedRx:         set.GetOrCreateCounter("ioredir_bytes_relayed_total{direction=\"rx\"}"),
	}, set
}

// ServeMetrics exposes set on addr until the listener fails or is
// closed by the caller shutting down the process.
func ServeMetrics(addr string, set *vm.Set) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		set.WritePrometheus(w)
	})
	return http.ListenAndServe(addr, mux)
}
