// Package metrics holds the service's Prometheus collectors: access-code
// lifecycle counters (codes.go), membership gauges (memberships.go), HTTP
// request metrics (http.go) and database pool stats (db.go). Each file
// enqueues its collectors via register() at init time; cmd/app activates
// them once with MustRegister before the first request is served.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once       sync.Once
	collectors []prometheus.Collector
)

func register(cs ...prometheus.Collector) {
	collectors = append(collectors, cs...)
}

// MustRegister registers every enqueued collector exactly once. Safe to call
// from multiple entrypoints; only the first call does the work.
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(collectors...)
		collectors = nil
	})
}
