// Package metrics holds the prometheus collectors of the dashboard.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Import outcomes.
const (
	ResultOK          = "ok"
	ResultRejected    = "rejected"
	ResultUnreadable  = "unreadable"
	ResultStoreFailed = "store_failed"
)

// Metrics is a set of collectors bound to their own registry.
type Metrics struct {
	registry *prometheus.Registry

	Imports          *prometheus.CounterVec
	RecordsImported  prometheus.Counter
	DocumentsDeleted prometheus.Counter
	Reports          *prometheus.CounterVec
	StoredRows       prometheus.Gauge
}

// New registers all collectors plus the go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attendance",
			Name:      "imports_total",
			Help:      "Spreadsheet imports by result.",
		}, []string{"result"}),
		RecordsImported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "attendance",
			Name:      "records_imported_total",
			Help:      "Swipe records accepted from uploads.",
		}),
		DocumentsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "attendance",
			Name:      "documents_deleted_total",
			Help:      "Documents removed from the table.",
		}),
		Reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attendance",
			Name:      "reports_total",
			Help:      "Monthly reports by outcome.",
		}, []string{"outcome"}),
		StoredRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "attendance",
			Name:      "stored_rows",
			Help:      "Rows in the persisted table.",
		}),
	}

	m.registry.MustRegister(
		m.Imports,
		m.RecordsImported,
		m.DocumentsDeleted,
		m.Reports,
		m.StoredRows,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
