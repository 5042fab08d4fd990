package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics aggregates the event-core counters and gauges. One instance is
// built at startup and passed by reference to every component that reports;
// nothing registers against a global registry.
type Metrics struct {
	registry *prometheus.Registry

	EventsIngested    *prometheus.CounterVec
	EventsDropped     prometheus.Counter
	EventsPublished   prometheus.Counter
	EventsUnrouted    prometheus.Counter
	EventsLagged      prometheus.Counter
	ActiveSubscribers prometheus.Gauge
	KnownUsers        prometheus.Gauge
	ProcessRSSBytes   prometheus.Gauge
	ProcessCPUPercent prometheus.Gauge
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		EventsIngested: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "notify_events_ingested_total",
			Help: "Notifications decoded into domain events, by kind.",
		}, []string{"kind"}),
		EventsDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "notify_events_dropped_total",
			Help: "Malformed notifications dropped by the ingester.",
		}),
		EventsPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "notify_events_published_total",
			Help: "Per-recipient publishes that found a registry entry.",
		}),
		EventsUnrouted: factory.NewCounter(prometheus.CounterOpts{
			Name: "notify_events_unrouted_total",
			Help: "Per-recipient publishes dropped because nobody ever subscribed.",
		}),
		EventsLagged: factory.NewCounter(prometheus.CounterOpts{
			Name: "notify_events_lagged_total",
			Help: "Events lost to subscribers that fell behind their buffer.",
		}),
		ActiveSubscribers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "notify_active_subscribers",
			Help: "Currently open event streams.",
		}),
		KnownUsers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "notify_known_users",
			Help: "Registry entries, i.e. users seen since process start.",
		}),
		ProcessRSSBytes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "notify_process_resident_bytes",
			Help: "Resident memory of the notify process.",
		}),
		ProcessCPUPercent: factory.NewGauge(prometheus.GaugeOpts{
			Name: "notify_process_cpu_percent",
			Help: "CPU usage of the notify process.",
		}),
	}
}

// Handler exposes the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
