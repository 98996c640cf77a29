package metrics

import (
	"booknotify/config"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	LabelAction = "action"
	LabelResult = "result"
	LabelKind   = "kind"

	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics holds the pipeline counters.
type Metrics struct {
	registry *prometheus.Registry

	BookingsCreated       prometheus.Counter
	BookingsRejected      *prometheus.CounterVec
	NotificationDecisions *prometheus.CounterVec
	EmailDeliveries       *prometheus.CounterVec
	PendingNotifications  prometheus.Gauge
}

func New(config *config.Config) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return NewWithRegistry(config.App.Name, registry)
}

func NewWithRegistry(namespace string, registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		BookingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "Bookings persisted.",
		}),
		BookingsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_rejected_total",
			Help:      "Booking submissions that were not persisted, by failure kind.",
		}, []string{LabelKind}),
		NotificationDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_decisions_total",
			Help:      "Scheduler decisions, by action.",
		}, []string{LabelAction}),
		EmailDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "email_deliveries_total",
			Help:      "Emails handed to the mail transport, by result.",
		}, []string{LabelResult}),
		PendingNotifications: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "notifications_pending",
			Help:      "Deferred notifications currently registered with the timer.",
		}),
	}

	registry.MustRegister(
		m.BookingsCreated,
		m.BookingsRejected,
		m.NotificationDecisions,
		m.EmailDeliveries,
		m.PendingNotifications,
	)

	return m
}

// Delivery records one send attempt.
func (m *Metrics) Delivery(err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}

	m.EmailDeliveries.WithLabelValues(result).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
