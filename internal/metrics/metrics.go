package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeConfirmed = "confirmed"
	OutcomeNotFound  = "not_found"
	OutcomeSkipped   = "skipped"
	OutcomeError     = "error"
)

// Drop holds the claim lifecycle metrics. A nil *Drop records nothing.
type Drop struct {
	claims        *prometheus.CounterVec
	confirmations *prometheus.CounterVec
	sweepDuration prometheus.Histogram
}

func NewDrop(reg prometheus.Registerer) *Drop {
	f := promauto.With(reg)
	return &Drop{
		claims: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "drop_claims_total",
				Help: "Drop claim attempts by result code",
			},
			[]string{"result"},
		),
		confirmations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "drop_claim_confirmations_total",
				Help: "Pending claims examined by the confirmation sweeper by outcome",
			},
			[]string{"outcome"},
		),
		sweepDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "drop_confirm_sweep_duration_seconds",
			Help:    "Duration of confirmation sweeps",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// ClaimResult counts a claim attempt. result is "ok" or a claim error code.
func (m *Drop) ClaimResult(result string) {
	if m == nil {
		return
	}
	m.claims.WithLabelValues(result).Inc()
}

func (m *Drop) Confirmation(outcome string) {
	if m == nil {
		return
	}
	m.confirmations.WithLabelValues(outcome).Inc()
}

func (m *Drop) ObserveSweep(d time.Duration) {
	if m == nil {
		return
	}
	m.sweepDuration.Observe(d.Seconds())
}
