package entity

import (
	"time"

	"giftbasket/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoShopDoc represents a connected shop in MongoDB
type MongoShopDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Domain      string             `bson:"domain"`
	AccessToken string             `bson:"accessToken"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoShopDoc) ToDomain() *domain.ShopSession {
	return &domain.ShopSession{
		Shop:        d.Domain,
		AccessToken: d.AccessToken,
	}
}

// MongoShopDocFromDomain converts a domain entity to a MongoDB document
func MongoShopDocFromDomain(session *domain.ShopSession) *MongoShopDoc {
	return &MongoShopDoc{
		Domain:      session.Shop,
		AccessToken: session.AccessToken,
	}
}

// MongoWebhookDoc represents a logged webhook delivery in MongoDB
type MongoWebhookDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Topic      string             `bson:"topic"`
	Shop       string             `bson:"shop"`
	DeliveryID string             `bson:"deliveryId"`
	Payload    []byte             `bson:"payload"`
	Verified   bool               `bson:"verified"`
	CreatedAt  time.Time          `bson:"createdAt"`
}

// MongoWebhookDocFromDomain converts a domain event to a MongoDB document
func MongoWebhookDocFromDomain(event *domain.WebhookEvent) *MongoWebhookDoc {
	return &MongoWebhookDoc{
		Topic:      event.Topic,
		Shop:       event.Shop,
		DeliveryID: event.DeliveryID,
		Payload:    event.Payload,
		Verified:   event.Verified,
	}
}
