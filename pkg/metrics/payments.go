package metrics

import "github.com/prometheus/client_golang/prometheus"

// PaymentMetrics tracks payment reconciliation outcomes.
type PaymentMetrics struct {
	reconciled *prometheus.CounterVec
	webhooks   *prometheus.CounterVec
}

// NewPaymentMetrics registers the payment metrics on the provided registerer.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	reconciled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_reconciled_total",
		Help: "Payment transactions reconciled against the provider, by resulting status.",
	}, []string{"status"})
	webhooks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_webhook_events_total",
		Help: "Provider webhook events received, by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(reconciled, webhooks)
	return &PaymentMetrics{
		reconciled: reconciled,
		webhooks:   webhooks,
	}
}

// IncReconciled increments the reconciliation counter for the given status.
func (p *PaymentMetrics) IncReconciled(status string) {
	if p == nil || p.reconciled == nil {
		return
	}
	p.reconciled.WithLabelValues(normalizeLabel(status)).Inc()
}

// IncWebhook increments the webhook counter for the given outcome.
func (p *PaymentMetrics) IncWebhook(outcome string) {
	if p == nil || p.webhooks == nil {
		return
	}
	p.webhooks.WithLabelValues(normalizeLabel(outcome)).Inc()
}
