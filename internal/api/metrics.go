package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the service metrics.
type Collector struct {
	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
	APIErrorsTotal     *prometheus.CounterVec

	ImportRowsTotal *prometheus.CounterVec
	SyncRunsTotal   *prometheus.CounterVec
	ComposeDuration prometheus.Histogram
	ComposedPanels  prometheus.Histogram
	DatasetsInStore prometheus.Gauge
}

// NewCollector registers the metrics on reg. A nil reg leaves them
// unregistered.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		APIRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total number of API requests by endpoint, method, and status",
			},
			[]string{"endpoint", "method", "status"},
		),
		APIRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0},
			},
			[]string{"endpoint"},
		),
		APIErrorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_errors_total",
				Help:      "Total number of API errors by type",
			},
			[]string{"error_type", "endpoint"},
		),
		ImportRowsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "import_rows_total",
				Help:      "Canonical rows written to the store by dataset",
			},
			[]string{"dataset"},
		),
		SyncRunsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sync_runs_total",
				Help:      "Scheduled CSV sync runs by dataset and result",
			},
			[]string{"dataset", "result"},
		),
		ComposeDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "compose_duration_seconds",
				Help:      "Time spent composing a multi-year calendar",
				Buckets:   prometheus.DefBuckets,
			},
		),
		ComposedPanels: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "composed_panels",
				Help:      "Number of year panels per composed calendar",
				Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
			},
		),
		DatasetsInStore: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "datasets",
				Help:      "Datasets held by the store at the last listing",
			},
		),
	}
}

func (c *Collector) RecordAPIRequest(endpoint, method, status string) {
	c.APIRequestsTotal.WithLabelValues(endpoint, method, status).Inc()
}

func (c *Collector) RecordAPIDuration(endpoint string, d time.Duration) {
	c.APIRequestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

func (c *Collector) RecordAPIError(errorType, endpoint string) {
	c.APIErrorsTotal.WithLabelValues(errorType, endpoint).Inc()
}

func (c *Collector) RecordImport(dataset string, rows int) {
	c.ImportRowsTotal.WithLabelValues(dataset).Add(float64(rows))
}

func (c *Collector) RecordSync(dataset string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.SyncRunsTotal.WithLabelValues(dataset, result).Inc()
}

func (c *Collector) RecordCompose(panels int, d time.Duration) {
	c.ComposeDuration.Observe(d.Seconds())
	c.ComposedPanels.Observe(float64(panels))
}
