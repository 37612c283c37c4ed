package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRegeneration(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRegeneration(6, 0, 5*time.Millisecond)
	m.ObserveRegeneration(0, 2, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Regenerations))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.RoutesChanged.WithLabelValues("inserted")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RoutesChanged.WithLabelValues("deleted")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RegenerationSeconds))
}

func TestRejectedAndDeleted(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Rejected("cycle")
	m.Rejected("cycle")
	m.Rejected("routes_in_use")
	m.Deleted("relationship", "cascade", 3, 0)
	m.Deleted("relationship", "replace", 0, 2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Rejections.WithLabelValues("cycle")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejections.WithLabelValues("routes_in_use")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Deletions.WithLabelValues("relationship", "cascade")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.AttachmentsChanged.WithLabelValues("deleted")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.AttachmentsChanged.WithLabelValues("moved")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRegeneration(1, 1, time.Second)
		m.Rejected("cycle")
		m.Deleted("label", "force", 0, 0)
	})
}

func TestRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.Rejected("self_reference")

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "labelgraph_guard_rejections_total")
	assert.Contains(t, names, "labelgraph_regenerations_total")

	// Unregistered collectors still work.
	assert.NotPanics(t, func() { New(nil).Rejected("cycle") })
}
