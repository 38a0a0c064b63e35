package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestDropMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewDrop(reg)

	m.ClaimResult("ok")
	m.ClaimResult("ok")
	m.ClaimResult("DROP_SOLD_OUT")
	m.Confirmation(OutcomeConfirmed)
	m.ObserveSweep(120 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.claims.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.claims.WithLabelValues("DROP_SOLD_OUT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.confirmations.WithLabelValues(OutcomeConfirmed)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.sweepDuration))
}

func TestNilDropMetrics(t *testing.T) {
	var m *Drop
	m.ClaimResult("ok")
	m.Confirmation(OutcomeError)
	m.ObserveSweep(time.Second)
}
