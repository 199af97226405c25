package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "chat",
		Name:      "connections_active",
		Help:      "Currently open websocket connections.",
	})
	MessagesPosted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "chat",
		Name:      "messages_posted_total",
		Help:      "Messages (including replies) persisted and broadcast.",
	})
	MessagesDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "chat",
		Name:      "messages_deleted_total",
		Help:      "Messages deleted by their author.",
	})
	ReactionsAdded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "chat",
		Name:      "reactions_added_total",
		Help:      "Reactions stored (insert or replace).",
	})
	SendsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "chat",
		Name:      "sends_dropped_total",
		Help:      "Outbound events dropped because a client buffer was full.",
	})
	StoreErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "chat",
		Name:      "store_errors_total",
		Help:      "Store operations that failed and were swallowed.",
	})
)

// Handler returns an http.Handler for Prometheus scraping
func Handler() http.Handler {
	return promhttp.Handler()
}
