package ports

import (
	"context"

	"giftbasket/internal/domain"
)

// PlatformGateway is the remote-call boundary to the Shopify Admin API.
// Every operation takes the explicit shop session it acts on behalf of;
// there is no ambient "current session".
type PlatformGateway interface {
	// ExchangeToken trades the install callback's authorization code for an
	// access token.
	ExchangeToken(ctx context.Context, shop string, code string) (string, error)

	// Billing
	CurrentRecurringCharge(ctx context.Context, session domain.ShopSession) (*domain.RecurringCharge, error)
	CreateRecurringCharge(ctx context.Context, session domain.ShopSession, charge domain.RecurringCharge) (*domain.RecurringCharge, error)
	GetRecurringCharge(ctx context.Context, session domain.ShopSession, chargeID uint64) (*domain.RecurringCharge, error)
	ActivateRecurringCharge(ctx context.Context, session domain.ShopSession, chargeID uint64) (*domain.RecurringCharge, error)
	LatestRecurringCharge(ctx context.Context, session domain.ShopSession) (*domain.RecurringCharge, error)
	CreateUsageCharge(ctx context.Context, session domain.ShopSession, recurringChargeID uint64, charge domain.UsageCharge) error

	// Webhook subscriptions
	ListWebhooks(ctx context.Context, session domain.ShopSession, topic string) ([]domain.Webhook, error)
	CreateWebhook(ctx context.Context, session domain.ShopSession, topic string, address string) (*domain.Webhook, error)

	// Variants and inventory
	GetVariant(ctx context.Context, session domain.ShopSession, variantID uint64) (*domain.Variant, error)
	// VariantIngredients reads the variant's "ingredients" metafield: a
	// comma-separated list of linked variant ids. A variant without the
	// metafield yields an empty slice, not an error.
	VariantIngredients(ctx context.Context, session domain.ShopSession, variantID uint64) ([]uint64, error)
	// AdjustVariantInventory applies a server-side atomic inventory
	// adjustment, so concurrent deliveries touching the same variant do not
	// lose updates.
	AdjustVariantInventory(ctx context.Context, session domain.ShopSession, variantID uint64, delta int) error
}
