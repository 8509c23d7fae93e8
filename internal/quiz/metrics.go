package quiz

import "github.com/prometheus/client_golang/prometheus"

// Generation call outcomes.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Metrics exports generation counters. A nil *Metrics is a no-op.
type Metrics struct {
	calls     *prometheus.CounterVec
	rejected  *prometheus.CounterVec
	assembled prometheus.Histogram
}

// NewMetrics creates the collectors and registers them when reg is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lessonquiz",
			Name:      "generation_calls_total",
			Help:      "Generation calls per chunk, by outcome.",
		}, []string{"outcome"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lessonquiz",
			Name:      "rejected_responses_total",
			Help:      "Model responses dropped, by rejection reason.",
		}, []string{"reason"}),
		assembled: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "lessonquiz",
			Name:      "assembled_questions",
			Help:      "Questions in each successfully assembled quiz.",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.calls, m.rejected, m.assembled)
	}
	return m
}

func (m *Metrics) observeCall(outcome string) {
	if m == nil {
		return
	}
	m.calls.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeRejection(reason RejectReason) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(string(reason)).Inc()
}

func (m *Metrics) observeAssembled(n int) {
	if m == nil {
		return
	}
	m.assembled.Observe(float64(n))
}
