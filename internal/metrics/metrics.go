package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// EventsDispatched counts events handled by the tracker, by event kind
	EventsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "topiclogger_events_total",
			Help: "Total number of network events dispatched",
		},
		[]string{"kind"},
	)

	// RecordsAppended counts log records written, by record kind
	RecordsAppended = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "topiclogger_records_total",
			Help: "Total number of log records appended",
		},
		[]string{"kind"},
	)

	// StoreErrors counts failed store calls, by operation
	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "topiclogger_store_errors_total",
			Help: "Total number of failed log store operations",
		},
		[]string{"op"},
	)

	// RoomsTracked is the number of channels currently occupied
	RoomsTracked = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "topiclogger_rooms",
			Help: "Number of channels the bot currently occupies",
		},
	)
)

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
