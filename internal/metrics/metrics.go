package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Result label values for Operations.
const (
	ResultOK      = "ok"
	ResultInvalid = "invalid"
	ResultCorrupt = "corrupt"
	ResultError   = "error"
)

// Metrics holds the Prometheus collectors for AIF operations.
type Metrics struct {
	Operations *prometheus.CounterVec
	BytesIn    *prometheus.CounterVec
	BytesOut   *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
}

// NewMetrics creates and registers all collectors with the provided registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aif_operations_total",
		Help: "AIF operations processed, by operation and result",
	}, []string{"operation", "result"})

	bytesIn := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aif_input_bytes_total",
		Help: "Bytes of AIF input read",
	}, []string{"operation"})

	bytesOut := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aif_output_bytes_total",
		Help: "Bytes of AIF output written",
	}, []string{"operation"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aif_operation_duration_seconds",
		Help:    "Time spent per AIF operation",
		Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
	}, []string{"operation"})

	reg.MustRegister(operations, bytesIn, bytesOut, duration)

	return &Metrics{
		Operations: operations,
		BytesIn:    bytesIn,
		BytesOut:   bytesOut,
		Duration:   duration,
	}
}

// Observe records one finished operation. A nil *Metrics is a no-op so
// callers can run without a registry.
func (m *Metrics) Observe(op, result string, in, out int64, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(op, result).Inc()
	if in > 0 {
		m.BytesIn.WithLabelValues(op).Add(float64(in))
	}
	if out > 0 {
		m.BytesOut.WithLabelValues(op).Add(float64(out))
	}
	m.Duration.WithLabelValues(op).Observe(elapsed.Seconds())
}
