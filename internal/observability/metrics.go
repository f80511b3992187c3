package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "secchi_etl"

// Metrics holds the Prometheus counters and gauges for one pipeline run. The
// job is a one-shot batch, so metrics live on a private registry and are
// exported through the node_exporter textfile collector instead of a scrape
// endpoint.
type Metrics struct {
	registry *prometheus.Registry

	RowsRead         prometheus.Counter
	RowsDropped      *prometheus.CounterVec // labels: reason={missing_region,duplicate}
	RowsFilteredOut  prometheus.Counter
	MonthlyGroups    prometheus.Gauge
	OutputRows       prometheus.Gauge
	NullMeans        prometheus.Gauge
	ResultsPublished prometheus.Counter

	RunDuration prometheus.Gauge
	LastSuccess prometheus.Gauge
}

// NewMetrics creates pipeline metrics registered on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_read_total",
			Help:      "Data rows read from the input file.",
		}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_dropped_total",
			Help:      "Rows removed during cleaning, by reason.",
		}, []string{"reason"}),
		RowsFilteredOut: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_filtered_out_total",
			Help:      "Clean rows outside the month set or year range.",
		}),
		MonthlyGroups: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "monthly_groups",
			Help:      "Distinct (region, year, month) groups in the last run.",
		}),
		OutputRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "output_rows",
			Help:      "Rows written to the layer file in the last run.",
		}),
		NullMeans: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "null_means",
			Help:      "Output rows whose mean is null because every value was missing.",
		}),
		ResultsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_published_total",
			Help:      "Result rows published to Kafka.",
		}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last successful run.",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
	}

	m.registry.MustRegister(
		m.RowsRead,
		m.RowsDropped,
		m.RowsFilteredOut,
		m.MonthlyGroups,
		m.OutputRows,
		m.NullMeans,
		m.ResultsPublished,
		m.RunDuration,
		m.LastSuccess,
	)

	return m
}

// Registry exposes the registry for tests and ad-hoc gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the current metric values in the Prometheus text
// format, atomically replacing path.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
