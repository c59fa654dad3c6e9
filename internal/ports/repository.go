package ports

import (
	"context"

	"giftbasket/internal/domain"
)

// Repository persists the audit trail: connected shops and the webhook
// deliveries the app accepted. The authoritative session lookup is the
// SessionStore; this archive survives restarts for debugging and support.
type Repository interface {
	SaveShop(ctx context.Context, session *domain.ShopSession) error
	GetShop(ctx context.Context, shop string) (*domain.ShopSession, error)
	LogWebhook(ctx context.Context, event *domain.WebhookEvent) error
}
