package ports

import "context"

// DeliveryDedup remembers webhook delivery ids so a redelivered webhook does
// not repeat billing or inventory side effects.
type DeliveryDedup interface {
	// Claim marks the delivery id as seen. It returns true exactly once per
	// id: the first caller wins and should process the delivery, later
	// callers get false.
	Claim(ctx context.Context, deliveryID string) (bool, error)
}
