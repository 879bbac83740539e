package metrics

import "github.com/prometheus/client_golang/prometheus"

// Index and notification metrics are registered explicitly (no init())
// so tests importing this package don't pollute the default registry.
var (
	// IndexKeysTotal counts trie key mutations by operation
	// (insert, remove).
	IndexKeysTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "frontdesk",
			Name:      "index_keys_total",
			Help:      "Total trie key mutations by operation",
		},
		[]string{"op"},
	)

	// IndexedRecords tracks how many records the trie currently
	// covers. Diverges from the store count while the index is
	// degraded.
	IndexedRecords = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "frontdesk",
			Name:      "indexed_records",
			Help:      "Records currently covered by the prefix index",
		},
	)

	// IndexSearchesTotal counts trie-backed search requests.
	IndexSearchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "frontdesk",
			Name:      "index_searches_total",
			Help:      "Total prefix searches resolved against the trie",
		},
	)

	// EventsPublishedTotal counts notification publish attempts by
	// event type and outcome (ok, error).
	EventsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "frontdesk",
			Name:      "events_published_total",
			Help:      "Total notification events published by type and outcome",
		},
		[]string{"type", "outcome"},
	)
)

// RegisterIndexMetrics registers trie and search collectors.
func RegisterIndexMetrics() {
	prometheus.MustRegister(IndexKeysTotal)
	prometheus.MustRegister(IndexedRecords)
	prometheus.MustRegister(IndexSearchesTotal)
}

// RegisterNotifyMetrics registers notification collectors.
func RegisterNotifyMetrics() {
	prometheus.MustRegister(EventsPublishedTotal)
}
