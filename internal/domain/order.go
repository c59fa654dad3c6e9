package domain

// LineItem is the slice of an order webhook payload the app cares about.
type LineItem struct {
	VariantID uint64 `json:"variant_id"`
}

// OrderEvent is the parsed body of an orders/create webhook delivery.
// Transient; it lives for the duration of one request.
type OrderEvent struct {
	Shop      string     `json:"-"`
	LineItems []LineItem `json:"line_items"`
}

// Variant is the app's view of a Shopify product variant: enough to follow
// the ingredients metafield and adjust stock.
type Variant struct {
	ID                uint64 `json:"id"`
	InventoryItemID   uint64 `json:"inventory_item_id"`
	InventoryQuantity int    `json:"inventory_quantity"`
}

// Webhook is a registered webhook subscription on the shop.
type Webhook struct {
	ID      uint64 `json:"id"`
	Topic   string `json:"topic"`
	Address string `json:"address"`
}
