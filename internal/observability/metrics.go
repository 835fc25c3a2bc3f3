package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the cast
// conversion and QC pipelines.
type Metrics struct {
	CastsConverted prometheus.Counter
	RowsDecoded    prometheus.Counter
	ConvertErrors  prometheus.Counter

	UnmappedColumns prometheus.Counter
	Diagnostics     *prometheus.CounterVec // labels: kind

	ConvertDuration prometheus.Histogram

	// QC metrics.
	ChecksEvaluated prometheus.Counter
	FlagsAssigned   *prometheus.CounterVec // labels: outcome={good,not_evaluated,suspect,fail,missing}
	QCDuration      prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.CastsConverted,
		m.RowsDecoded,
		m.ConvertErrors,
		m.UnmappedColumns,
		m.Diagnostics,
		m.ConvertDuration,
		m.ChecksEvaluated,
		m.FlagsAssigned,
		m.QCDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		CastsConverted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cast_etl",
			Name:      "casts_converted_total",
			Help:      "Total cast files successfully converted.",
		}),
		RowsDecoded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cast_etl",
			Name:      "rows_decoded_total",
			Help:      "Total data rows decoded from cast files.",
		}),
		ConvertErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cast_etl",
			Name:      "convert_errors_total",
			Help:      "Total conversion failures.",
		}),
		UnmappedColumns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cast_etl",
			Name:      "unmapped_columns_total",
			Help:      "Columns carried through without a standard name.",
		}),
		Diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cast_etl",
			Name:      "diagnostics_total",
			Help:      "Non-fatal diagnostics by kind.",
		}, []string{"kind"}),
		ConvertDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cast_etl",
			Name:      "convert_duration_seconds",
			Help:      "Duration of a complete parse-map-assemble-write cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		ChecksEvaluated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cast_etl",
			Name:      "checks_evaluated_total",
			Help:      "Total quality checks evaluated.",
		}),
		FlagsAssigned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cast_etl",
			Name:      "flags_assigned_total",
			Help:      "Aggregate flags assigned by outcome.",
		}, []string{"outcome"}),
		QCDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cast_etl",
			Name:      "qc_duration_seconds",
			Help:      "Duration of a complete read-check-attach-write cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
	}
}
