// Package metrics records per-run pipeline counters and can snapshot them to
// a Prometheus textfile for the node exporter's textfile collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Document outcome labels.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Exclusion reason labels.
const (
	ReasonNoName  = "no_name"
	ReasonNoPrice = "no_effective_price"
)

// Recorder owns a private registry so that runs (and tests) never share
// counters.
type Recorder struct {
	registry *prometheus.Registry

	DocumentsTotal      *prometheus.CounterVec
	LineItemsExtracted  prometheus.Counter
	ServiceCallDuration prometheus.Histogram
	RowsReconciled      prometheus.Counter
	RowsExcluded        *prometheus.CounterVec
	CheapestItems       prometheus.Gauge
}

// NewRecorder creates a Recorder with all series registered.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,

		DocumentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "invoice_documents_total",
				Help: "Invoice documents processed by the extraction stage",
			},
			[]string{"status"},
		),
		LineItemsExtracted: factory.NewCounter(prometheus.CounterOpts{
			Name: "invoice_line_items_extracted_total",
			Help: "Line items extracted from all documents",
		}),
		ServiceCallDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "invoice_service_call_duration_seconds",
			Help:    "Duration of document-understanding calls",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		}),
		RowsReconciled: factory.NewCounter(prometheus.CounterOpts{
			Name: "invoice_rows_reconciled_total",
			Help: "Combined line rows loaded by the reconciliation stage",
		}),
		RowsExcluded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "invoice_rows_excluded_total",
				Help: "Rows left out of cheapest selection",
			},
			[]string{"reason"},
		),
		CheapestItems: factory.NewGauge(prometheus.GaugeOpts{
			Name: "invoice_cheapest_items",
			Help: "Canonical items in the last cheapest-by-item snapshot",
		}),
	}
}

// ObserveServiceCall records the duration of one service call.
func (r *Recorder) ObserveServiceCall(start time.Time) {
	r.ServiceCallDuration.Observe(time.Since(start).Seconds())
}

// Gatherer exposes the registry for inspection.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile snapshots the registry to path. An empty path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.Gatherer()); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
