package domain

// WebhookEvent is a verified inbound webhook delivery, kept for the audit
// log and the in-process pub/sub.
type WebhookEvent struct {
	Topic      string `json:"topic" bson:"topic"`
	Shop       string `json:"shop" bson:"shop"`
	DeliveryID string `json:"delivery_id" bson:"delivery_id"`
	Payload    []byte `json:"payload" bson:"payload"`
	Verified   bool   `json:"verified" bson:"verified"`
}
