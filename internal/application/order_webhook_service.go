package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"giftbasket/internal/domain"
	"giftbasket/internal/infrastructure/metrics"
	"giftbasket/internal/infrastructure/shopify"
	"giftbasket/internal/ports"

	"github.com/rs/zerolog"
)

// WebhookHeaders carries the request headers the processor authenticates
// with.
type WebhookHeaders struct {
	HMAC       string // X-Shopify-Hmac-Sha256, base64 body digest
	ShopDomain string // X-Shopify-Shop-Domain
	DeliveryID string // X-Shopify-Webhook-Id, may be empty
}

// WebhookResult reports how a delivery was handled.
type WebhookResult struct {
	Shop      string
	Duplicate bool
}

// OrderWebhookProcessor reacts to orders/create deliveries: authenticate the
// message, charge the per-order fee and decrement the inventory of every
// ingredient linked to the purchased variants.
type OrderWebhookProcessor struct {
	verifier *shopify.WebhookVerifier
	sessions ports.SessionStore
	billing  *BillingService
	gateway  ports.PlatformGateway
	dedup    ports.DeliveryDedup
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewOrderWebhookProcessor creates a new order webhook processor.
func NewOrderWebhookProcessor(
	verifier *shopify.WebhookVerifier,
	sessions ports.SessionStore,
	billing *BillingService,
	gateway ports.PlatformGateway,
	dedup ports.DeliveryDedup,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *OrderWebhookProcessor {
	return &OrderWebhookProcessor{
		verifier: verifier,
		sessions: sessions,
		billing:  billing,
		gateway:  gateway,
		dedup:    dedup,
		metrics:  m,
		logger:   logger,
	}
}

// Handle processes one webhook delivery. No billing or inventory side effect
// happens before the message is authenticated, deduplicated and its payload
// parsed.
func (p *OrderWebhookProcessor) Handle(ctx context.Context, body []byte, headers WebhookHeaders) (*WebhookResult, error) {
	if err := p.verifier.Verify(body, headers.HMAC); err != nil {
		p.metrics.WebhooksRejected.Inc()
		p.logger.Warn().Str("shop", headers.ShopDomain).Msg("Webhook signature verification failed")
		return nil, domain.ErrUnauthorized
	}

	shop := headers.ShopDomain
	token, err := p.sessions.Get(ctx, shop)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			p.metrics.WebhooksRejected.Inc()
			p.logger.Warn().Str("shop", shop).Msg("Webhook for a shop with no session")
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}
	session := domain.ShopSession{Shop: shop, AccessToken: token}

	// Dedup before any side effect: Shopify redelivers on timeouts.
	deliveryID := headers.DeliveryID
	if deliveryID == "" {
		// Fallback idempotency key when the webhook-id header isn't present.
		sum := sha256.Sum256(body)
		deliveryID = hex.EncodeToString(sum[:])
	}
	fresh, err := p.dedup.Claim(ctx, deliveryID)
	if err != nil {
		return nil, fmt.Errorf("failed to claim delivery id: %w", err)
	}
	if !fresh {
		p.metrics.WebhooksDuplicate.Inc()
		p.logger.Info().Str("shop", shop).Str("deliveryId", deliveryID).Msg("Duplicate webhook delivery, skipping")
		return &WebhookResult{Shop: shop, Duplicate: true}, nil
	}

	// Parse before charging so a malformed payload costs the merchant
	// nothing.
	var order domain.OrderEvent
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBadPayload, err)
	}
	order.Shop = shop

	p.metrics.WebhooksReceived.Inc()

	// Usage-charge failures are logged and skipped: losing a $1 charge is
	// lower severity than losing inventory accuracy.
	if err := p.billing.ChargeUsage(ctx, session, UsageChargePrice); err != nil {
		p.metrics.UsageChargesFailed.Inc()
		p.logger.Error().Err(err).Str("shop", shop).Msg("Usage charge failed, continuing")
	} else {
		p.metrics.UsageChargesCreated.Inc()
	}

	for _, item := range order.LineItems {
		p.decrementIngredients(ctx, session, item.VariantID)
	}

	return &WebhookResult{Shop: shop}, nil
}

// decrementIngredients reads the variant's ingredients metafield and takes
// one unit off every linked variant. Each decrement is an independent remote
// call; a failing ingredient does not stop the rest of the basket.
func (p *OrderWebhookProcessor) decrementIngredients(ctx context.Context, session domain.ShopSession, variantID uint64) {
	ingredients, err := p.gateway.VariantIngredients(ctx, session, variantID)
	if err != nil {
		p.logger.Error().Err(err).
			Str("shop", session.Shop).
			Uint64("variantId", variantID).
			Msg("Failed to read ingredients metafield")
		return
	}

	for _, ingredientID := range ingredients {
		if err := p.gateway.AdjustVariantInventory(ctx, session, ingredientID, -1); err != nil {
			p.logger.Error().Err(err).
				Str("shop", session.Shop).
				Uint64("variantId", ingredientID).
				Msg("Failed to decrement ingredient inventory")
			continue
		}
		p.metrics.InventoryAdjustments.Inc()
	}
}
