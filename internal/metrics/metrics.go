// Package metrics exposes Prometheus collectors for normalization runs.
package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/JonMunkholm/contacts/internal/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "contacts"

// Run outcomes recorded by ObserveRun.
const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid" // header without eid
	OutcomeFailed  = "failed"
)

// Metrics holds the normalizer collectors.
type Metrics struct {
	rows     prometheus.Counter
	blank    prometheus.Counter
	records  prometheus.Counter
	rejected *prometheus.CounterVec
	runs     *prometheus.CounterVec
	duration prometheus.Histogram

	gatherer prometheus.Gatherer
}

func registerCollector(reg prometheus.Registerer, c prometheus.Collector) error {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return nil
		}
		return fmt.Errorf("register collector: %w", err)
	}
	return nil
}

// New registers the normalizer collectors, plus the process and Go runtime
// collectors, on reg.
//
// Metrics registered:
//   - contacts_rows_processed_total - data rows merged
//   - contacts_blank_lines_total - empty data lines skipped
//   - contacts_records_emitted_total - records produced
//   - contacts_values_rejected_total{kind} - phone/email candidates that failed validation
//   - contacts_runs_total{outcome} - runs by outcome (success/invalid/failed)
//   - contacts_run_duration_seconds - histogram of run duration
func New(reg *prometheus.Registry) (*Metrics, error) {
	if reg == nil {
		return nil, errors.New("prometheus registry is nil")
	}

	m := &Metrics{
		rows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_processed_total",
			Help:      "Data rows merged into records",
		}),
		blank: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blank_lines_total",
			Help:      "Empty data lines skipped",
		}),
		records: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_emitted_total",
			Help:      "Normalized records produced",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "values_rejected_total",
			Help:      "Address candidates rejected by kind",
		}, []string{"kind"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Normalization runs by outcome",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a normalization run",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}),
		gatherer: reg,
	}

	collectors := []prometheus.Collector{
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
		m.rows, m.blank, m.records, m.rejected, m.runs, m.duration,
	}
	for _, c := range collectors {
		if err := registerCollector(reg, c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// ObserveRun records one normalization run. res may be nil when the run failed.
func (m *Metrics) ObserveRun(res *core.Result, err error, elapsed time.Duration) {
	m.duration.Observe(elapsed.Seconds())
	m.runs.WithLabelValues(outcome(err)).Inc()
	if res == nil {
		return
	}

	m.rows.Add(float64(res.Stats.Rows))
	m.blank.Add(float64(res.Stats.BlankLines))
	m.records.Add(float64(res.Stats.Records))
	for _, rej := range res.Rejections {
		m.rejected.WithLabelValues(string(rej.Kind)).Inc()
	}
}

func outcome(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	var cfgErr *core.ConfigurationError
	if errors.As(err, &cfgErr) {
		return OutcomeInvalid
	}
	return OutcomeFailed
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
