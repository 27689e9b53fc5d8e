package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records checkout and payment settlement outcomes.
type CheckoutMetrics struct {
	checkoutDuration *prometheus.HistogramVec
	checkoutTotal    *prometheus.CounterVec
	oversellRejected prometheus.Counter
	callbackTotal    *prometheus.CounterVec
	callbackReplays  prometheus.Counter
	versionConflicts *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	checkoutDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	checkoutTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_total",
		Help: "Checkout attempts by outcome.",
	}, []string{"outcome"})
	oversellRejected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_oversell_rejected_total",
		Help: "Checkouts rejected because stock ran out at commit.",
	})
	callbackTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_callback_total",
		Help: "Gateway callbacks by transaction status.",
	}, []string{"tx_status"})
	callbackReplays := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payment_callback_replay_total",
		Help: "Gateway callbacks short-circuited as already processed.",
	})
	versionConflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aggregate_version_conflict_total",
		Help: "Optimistic concurrency retries by aggregate.",
	}, []string{"aggregate"})
	reg.MustRegister(checkoutDuration, checkoutTotal, oversellRejected, callbackTotal, callbackReplays, versionConflicts)
	return &CheckoutMetrics{
		checkoutDuration: checkoutDuration,
		checkoutTotal:    checkoutTotal,
		oversellRejected: oversellRejected,
		callbackTotal:    callbackTotal,
		callbackReplays:  callbackReplays,
		versionConflicts: versionConflicts,
	}
}

// ObserveCheckout records a checkout attempt with its outcome label.
func (m *CheckoutMetrics) ObserveCheckout(outcome string, duration time.Duration) {
	if m == nil || m.checkoutTotal == nil {
		return
	}
	label := normalizeLabel(outcome)
	m.checkoutTotal.WithLabelValues(label).Inc()
	m.checkoutDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// IncOversellRejected counts a checkout rejected by the conditional stock decrement.
func (m *CheckoutMetrics) IncOversellRejected() {
	if m == nil || m.oversellRejected == nil {
		return
	}
	m.oversellRejected.Inc()
}

// IncCallback counts a gateway callback by reported status.
func (m *CheckoutMetrics) IncCallback(txStatus string) {
	if m == nil || m.callbackTotal == nil {
		return
	}
	m.callbackTotal.WithLabelValues(normalizeLabel(txStatus)).Inc()
}

// IncCallbackReplay counts a callback dropped by the processed-marker guard.
func (m *CheckoutMetrics) IncCallbackReplay() {
	if m == nil || m.callbackReplays == nil {
		return
	}
	m.callbackReplays.Inc()
}

// IncVersionConflict counts an optimistic concurrency retry for the aggregate.
func (m *CheckoutMetrics) IncVersionConflict(aggregate string) {
	if m == nil || m.versionConflicts == nil {
		return
	}
	m.versionConflicts.WithLabelValues(normalizeLabel(aggregate)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
