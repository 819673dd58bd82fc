package ranker

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricItemsBuilt     = "benchrank_items_built_total"
	MetricItemsSkipped   = "benchrank_items_skipped_total"
	MetricPairsSampled   = "benchrank_pairs_sampled_total"
	MetricRowsExported   = "benchrank_rows_exported_total"
	MetricRowsSkipped    = "benchrank_rows_skipped_total"
	MetricExportDuration = "benchrank_export_duration_seconds"
)

// Metrics contains Prometheus metrics for the ranking pipeline.
// All operations are thread-safe. A nil *Metrics is valid and records nothing,
// so components never need to guard their instrumentation calls.
type Metrics struct {
	itemsBuilt     prometheus.Counter
	itemsSkipped   prometheus.Counter
	pairsSampled   prometheus.Counter
	rowsExported   prometheus.Counter
	rowsSkipped    prometheus.Counter
	exportDuration prometheus.Histogram
}

// NewMetrics creates and returns a new Metrics instance with all collectors
// initialized. The metrics are not registered; call Register to register them
// with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		itemsBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricItemsBuilt,
			Help: "Total number of rank items created by the item builder",
		}),
		itemsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricItemsSkipped,
			Help: "Total number of sections skipped by the item builder (duplicates or unreadable records)",
		}),
		pairsSampled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricPairsSampled,
			Help: "Total number of preference pairs created by the pair sampler",
		}),
		rowsExported: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricRowsExported,
			Help: "Total number of dataset rows written by the exporter",
		}),
		rowsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricRowsSkipped,
			Help: "Total number of dataset rows skipped because a referenced item was unresolvable",
		}),
		exportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricExportDuration,
			Help:    "Histogram of dataset export duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0},
		}),
	}
}

// Register registers all metrics with the given registry.
// Returns an error if registration fails.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.itemsBuilt,
		m.itemsSkipped,
		m.pairsSampled,
		m.rowsExported,
		m.rowsSkipped,
		m.exportDuration,
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// AddItemsBuilt adds to the items-built counter.
func (m *Metrics) AddItemsBuilt(n int) {
	if m == nil {
		return
	}
	m.itemsBuilt.Add(float64(n))
}

// IncItemsSkipped increments the items-skipped counter.
func (m *Metrics) IncItemsSkipped() {
	if m == nil {
		return
	}
	m.itemsSkipped.Inc()
}

// AddPairsSampled adds to the pairs-sampled counter.
func (m *Metrics) AddPairsSampled(n int) {
	if m == nil {
		return
	}
	m.pairsSampled.Add(float64(n))
}

// AddRowsExported adds to the rows-exported counter.
func (m *Metrics) AddRowsExported(n int) {
	if m == nil {
		return
	}
	m.rowsExported.Add(float64(n))
}

// AddRowsSkipped adds to the rows-skipped counter.
func (m *Metrics) AddRowsSkipped(n int) {
	if m == nil {
		return
	}
	m.rowsSkipped.Add(float64(n))
}

// ObserveExportDuration records an export duration sample in seconds.
func (m *Metrics) ObserveExportDuration(seconds float64) {
	if m == nil {
		return
	}
	m.exportDuration.Observe(seconds)
}
