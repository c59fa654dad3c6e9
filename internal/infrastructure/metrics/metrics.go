package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the app's Prometheus collectors.
type Metrics struct {
	WebhooksReceived     prometheus.Counter
	WebhooksRejected     prometheus.Counter
	WebhooksDuplicate    prometheus.Counter
	UsageChargesCreated  prometheus.Counter
	UsageChargesFailed   prometheus.Counter
	InventoryAdjustments prometheus.Counter
}

// New registers the app collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		WebhooksReceived: factory.NewCounter(prometheus.CounterOpts{
			Name: "giftbasket_webhooks_received_total",
			Help: "Order webhooks accepted after signature verification.",
		}),
		WebhooksRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "giftbasket_webhooks_rejected_total",
			Help: "Order webhooks rejected for a bad signature or unknown shop.",
		}),
		WebhooksDuplicate: factory.NewCounter(prometheus.CounterOpts{
			Name: "giftbasket_webhooks_duplicate_total",
			Help: "Redelivered webhooks skipped by delivery-id dedup.",
		}),
		UsageChargesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "giftbasket_usage_charges_created_total",
			Help: "Usage charges successfully attached to a recurring charge.",
		}),
		UsageChargesFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "giftbasket_usage_charges_failed_total",
			Help: "Usage charge attempts that failed and were skipped.",
		}),
		InventoryAdjustments: factory.NewCounter(prometheus.CounterOpts{
			Name: "giftbasket_inventory_adjustments_total",
			Help: "Inventory decrements applied to gift basket ingredients.",
		}),
	}
}
