package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettlementMetricsNilSafe(t *testing.T) {
	var m *SettlementMetrics
	assert.NotPanics(t, func() {
		m.IncSettled("with_offer")
		m.ObservePayout("dealer_incentive", 125.50)
		m.IncSlabMiss()
		m.IncTargetAchieved()
	})

	empty := NewSettlementMetrics(nil)
	assert.NotPanics(t, func() {
		empty.IncSettled("failed")
		empty.ObservePayout("customer_discount", 10)
	})
}

func TestSettlementMetricsRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSettlementMetrics(reg)
	require.NotNil(t, m)

	m.IncSettled("with_offer")
	m.IncSettled("With Offer")
	m.ObservePayout("dealer_incentive", 500)
	m.IncSlabMiss()
	m.IncTargetAchieved()

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, fam := range families {
		names[fam.GetName()] = true
	}
	assert.True(t, names["sales_settled_total"])
	assert.True(t, names["sale_payout_amount"])
	assert.True(t, names["slab_misses_total"])
	assert.True(t, names["targets_achieved_total"])
}

func TestNormalizeLabel(t *testing.T) {
	assert.Equal(t, "with_offer", normalizeLabel("  With Offer "))
	assert.Equal(t, "unknown", normalizeLabel(""))
}
