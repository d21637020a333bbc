package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_RegistersWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("careline", "worker", reg)

	m.OutboxEventsProcessed.Inc()
	m.NotificationsSent.WithLabelValues("case.created", "sent").Inc()

	assert.Equal(t, float64(1), testutil.ToFloat64(m.OutboxEventsProcessed))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
