package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SalesMetrics records register activity: completed checkouts, bill totals,
// and refund decisions.
type SalesMetrics struct {
	registry  *prometheus.Registry
	checkouts *prometheus.CounterVec
	billTotal prometheus.Histogram
	refunds   *prometheus.CounterVec
}

// NewSalesMetrics registers the sales metrics on a fresh registry.
func NewSalesMetrics() *SalesMetrics {
	registry := prometheus.NewRegistry()

	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_completed_total",
		Help: "Completed checkouts by payment method.",
	}, []string{"payment_method"})
	billTotal := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "bill_total_amount",
		Help:    "Bill totals in major currency units.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})
	refunds := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "refund_decisions_total",
		Help: "Refund requests by final status.",
	}, []string{"status"})

	registry.MustRegister(checkouts, billTotal, refunds)
	return &SalesMetrics{
		registry:  registry,
		checkouts: checkouts,
		billTotal: billTotal,
		refunds:   refunds,
	}
}

// IncCheckout counts a completed checkout for the given payment method.
func (m *SalesMetrics) IncCheckout(paymentMethod string) {
	if m == nil || m.checkouts == nil {
		return
	}
	m.checkouts.WithLabelValues(normalizeLabel(paymentMethod)).Inc()
}

// ObserveBillTotal records the total of a completed bill.
func (m *SalesMetrics) ObserveBillTotal(amount float64) {
	if m == nil || m.billTotal == nil {
		return
	}
	m.billTotal.Observe(amount)
}

// IncRefund counts a refund reaching the given status.
func (m *SalesMetrics) IncRefund(status string) {
	if m == nil || m.refunds == nil {
		return
	}
	m.refunds.WithLabelValues(normalizeLabel(status)).Inc()
}

// Handler exposes the registry for the /metrics endpoint.
func (m *SalesMetrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
