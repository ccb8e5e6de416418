package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type BusinessMetrics struct {
	CustomersTotal        prometheus.Gauge
	CustomerEventsTotal   *prometheus.CounterVec
	SnapshotFailuresTotal prometheus.Counter
}

var Business = BusinessMetrics{
	CustomersTotal: promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "customer_service_customers_total",
			Help: "Current number of customer records.",
		},
	),
	CustomerEventsTotal: promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "customer_service_customer_events_total",
			Help: "Total number of customer lifecycle events published.",
		},
		[]string{"action"},
	),
	SnapshotFailuresTotal: promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "customer_service_snapshot_failures_total",
			Help: "Total number of failed customer count snapshots.",
		},
	),
}
