// Package metrics exposes server-side Prometheus instruments for applied
// client operations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fieldsync"

// Outcomes of an applied operation.
const (
	OutcomeApplied   = "applied"
	OutcomeDuplicate = "duplicate"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

// Recorder receives one observation per handled operation.
type Recorder interface {
	Observe(kind, outcome string, took time.Duration)
}

// Prometheus records operations into a counter and a latency histogram.
type Prometheus struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewPrometheus registers the instruments on reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	f := promauto.With(reg)
	return &Prometheus{
		operations: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Client operations handled, by kind and outcome.",
			},
			[]string{"kind", "outcome"},
		),
		duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Time spent applying a client operation.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
	}
}

func (p *Prometheus) Observe(kind, outcome string, took time.Duration) {
	p.operations.WithLabelValues(kind, outcome).Inc()
	p.duration.WithLabelValues(kind).Observe(took.Seconds())
}

type nop struct{}

func (nop) Observe(string, string, time.Duration) {}

// Nop discards observations.
func Nop() Recorder { return nop{} }
