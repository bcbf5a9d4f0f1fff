package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// SettlementMetrics records outcomes of sale settlements.
type SettlementMetrics struct {
	settled   *prometheus.CounterVec
	payout    *prometheus.HistogramVec
	slabMiss  prometheus.Counter
	targetHit prometheus.Counter
}

// NewSettlementMetrics registers the settlement metrics on the provided registerer.
func NewSettlementMetrics(reg prometheus.Registerer) *SettlementMetrics {
	if reg == nil {
		return &SettlementMetrics{}
	}
	settled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_settled_total",
		Help: "Settled sales by outcome (with_offer, no_offer, failed).",
	}, []string{"outcome"})
	payout := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sale_payout_amount",
		Help:    "Computed payout totals per settled sale.",
		Buckets: prometheus.ExponentialBuckets(100, 4, 8),
	}, []string{"leg"})
	slabMiss := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "slab_misses_total",
		Help: "Slab-based settlements where no quantity band matched.",
	})
	targetHit := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "targets_achieved_total",
		Help: "Dealer targets flipped to achieved.",
	})
	reg.MustRegister(settled, payout, slabMiss, targetHit)
	return &SettlementMetrics{
		settled:   settled,
		payout:    payout,
		slabMiss:  slabMiss,
		targetHit: targetHit,
	}
}

// IncSettled increments the settled counter for the given outcome.
func (m *SettlementMetrics) IncSettled(outcome string) {
	if m == nil || m.settled == nil {
		return
	}
	m.settled.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObservePayout records a payout amount for the given leg
// ("dealer_incentive" or "customer_discount").
func (m *SettlementMetrics) ObservePayout(leg string, amount float64) {
	if m == nil || m.payout == nil {
		return
	}
	m.payout.WithLabelValues(normalizeLabel(leg)).Observe(amount)
}

// IncSlabMiss increments the no-matching-slab counter.
func (m *SettlementMetrics) IncSlabMiss() {
	if m == nil || m.slabMiss == nil {
		return
	}
	m.slabMiss.Inc()
}

// IncTargetAchieved increments the achieved-targets counter.
func (m *SettlementMetrics) IncTargetAchieved() {
	if m == nil || m.targetHit == nil {
		return
	}
	m.targetHit.Inc()
}

func normalizeLabel(value string) string {
	trimmed := strings.TrimSpace(strings.ToLower(value))
	if trimmed == "" {
		return "unknown"
	}
	return strings.ReplaceAll(trimmed, " ", "_")
}
