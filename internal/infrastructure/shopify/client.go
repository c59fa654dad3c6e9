package shopify

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"giftbasket/internal/domain"
	"giftbasket/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

type gateway struct {
	apiKey    string
	apiSecret string
	app       goshopify.App
	logger    zerolog.Logger

	// primary location per shop, resolved once and reused for inventory
	// adjustments
	locMu     sync.Mutex
	locations map[string]uint64
}

// NewGateway creates the Shopify-backed platform gateway.
func NewGateway(apiKey, apiSecret string, logger zerolog.Logger) ports.PlatformGateway {
	app := goshopify.App{
		ApiKey:    apiKey,
		ApiSecret: apiSecret,
	}
	return &gateway{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		app:       app,
		logger:    logger,
		locations: make(map[string]uint64),
	}
}

// createClient is a helper to create a goshopify client for a session
func (g *gateway) createClient(session domain.ShopSession) (*goshopify.Client, error) {
	client, err := goshopify.NewClient(g.app, session.Shop, session.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

func (g *gateway) ExchangeToken(ctx context.Context, shop string, code string) (string, error) {
	token, err := g.app.GetAccessToken(ctx, shop, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange token: %w", err)
	}
	return token, nil
}

// Billing API

func (g *gateway) CurrentRecurringCharge(ctx context.Context, session domain.ShopSession) (*domain.RecurringCharge, error) {
	client, err := g.createClient(session)
	if err != nil {
		return nil, err
	}
	charges, err := client.RecurringApplicationCharge.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurring charges: %w", err)
	}
	// A shop holds at most one non-declined charge at a time.
	for i := range charges {
		if charges[i].Status != string(domain.ChargeStatusDeclined) {
			return chargeFromRemote(&charges[i]), nil
		}
	}
	return nil, nil
}

func (g *gateway) CreateRecurringCharge(ctx context.Context, session domain.ShopSession, charge domain.RecurringCharge) (*domain.RecurringCharge, error) {
	client, err := g.createClient(session)
	if err != nil {
		return nil, err
	}
	price := charge.Price
	capped := charge.CappedAmount
	test := charge.Test
	created, err := client.RecurringApplicationCharge.Create(ctx, goshopify.RecurringApplicationCharge{
		Name:         charge.Name,
		Price:        &price,
		CappedAmount: &capped,
		Terms:        charge.Terms,
		ReturnURL:    charge.ReturnURL,
		Test:         &test,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create recurring charge: %w", err)
	}
	g.logger.Info().
		Str("shop", session.Shop).
		Uint64("chargeId", created.Id).
		Str("status", created.Status).
		Msg("Created recurring application charge")
	return chargeFromRemote(created), nil
}

func (g *gateway) GetRecurringCharge(ctx context.Context, session domain.ShopSession, chargeID uint64) (*domain.RecurringCharge, error) {
	client, err := g.createClient(session)
	if err != nil {
		return nil, err
	}
	charge, err := client.RecurringApplicationCharge.Get(ctx, chargeID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get recurring charge: %w", err)
	}
	return chargeFromRemote(charge), nil
}

func (g *gateway) ActivateRecurringCharge(ctx context.Context, session domain.ShopSession, chargeID uint64) (*domain.RecurringCharge, error) {
	client, err := g.createClient(session)
	if err != nil {
		return nil, err
	}
	activated, err := client.RecurringApplicationCharge.Activate(ctx, goshopify.RecurringApplicationCharge{Id: chargeID})
	if err != nil {
		return nil, fmt.Errorf("failed to activate recurring charge: %w", err)
	}
	return chargeFromRemote(activated), nil
}

func (g *gateway) LatestRecurringCharge(ctx context.Context, session domain.ShopSession) (*domain.RecurringCharge, error) {
	client, err := g.createClient(session)
	if err != nil {
		return nil, err
	}
	charges, err := client.RecurringApplicationCharge.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurring charges: %w", err)
	}
	if len(charges) == 0 {
		return nil, nil
	}
	latest := &charges[0]
	for i := range charges {
		if charges[i].Id > latest.Id {
			latest = &charges[i]
		}
	}
	return chargeFromRemote(latest), nil
}

func (g *gateway) CreateUsageCharge(ctx context.Context, session domain.ShopSession, recurringChargeID uint64, charge domain.UsageCharge) error {
	client, err := g.createClient(session)
	if err != nil {
		return err
	}
	price := charge.Price
	_, err = client.UsageCharge.Create(ctx, recurringChargeID, goshopify.UsageCharge{
		Description: charge.Description,
		Price:       &price,
	})
	if err != nil {
		return fmt.Errorf("failed to create usage charge: %w", err)
	}
	return nil
}

// Webhook API

func (g *gateway) ListWebhooks(ctx context.Context, session domain.ShopSession, topic string) ([]domain.Webhook, error) {
	client, err := g.createClient(session)
	if err != nil {
		return nil, err
	}
	webhooks, err := client.Webhook.List(ctx, goshopify.WebhookOptions{Topic: topic})
	if err != nil {
		return nil, fmt.Errorf("failed to list webhooks: %w", err)
	}
	out := make([]domain.Webhook, 0, len(webhooks))
	for _, w := range webhooks {
		out = append(out, domain.Webhook{ID: w.Id, Topic: w.Topic, Address: w.Address})
	}
	return out, nil
}

func (g *gateway) CreateWebhook(ctx context.Context, session domain.ShopSession, topic string, address string) (*domain.Webhook, error) {
	client, err := g.createClient(session)
	if err != nil {
		return nil, err
	}
	created, err := client.Webhook.Create(ctx, goshopify.Webhook{
		Topic:   topic,
		Address: address,
		Format:  "json",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook: %w", err)
	}
	g.logger.Info().
		Str("shop", session.Shop).
		Str("topic", topic).
		Str("address", address).
		Msg("Created webhook subscription")
	return &domain.Webhook{ID: created.Id, Topic: created.Topic, Address: created.Address}, nil
}

// Variant and inventory API

func (g *gateway) GetVariant(ctx context.Context, session domain.ShopSession, variantID uint64) (*domain.Variant, error) {
	client, err := g.createClient(session)
	if err != nil {
		return nil, err
	}
	variant, err := client.Variant.Get(ctx, variantID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get variant: %w", err)
	}
	return &domain.Variant{
		ID:                variant.Id,
		InventoryItemID:   variant.InventoryItemId,
		InventoryQuantity: variant.InventoryQuantity,
	}, nil
}

func (g *gateway) VariantIngredients(ctx context.Context, session domain.ShopSession, variantID uint64) ([]uint64, error) {
	client, err := g.createClient(session)
	if err != nil {
		return nil, err
	}
	metafields, err := client.Variant.ListMetafields(ctx, variantID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list variant metafields: %w", err)
	}
	for _, mf := range metafields {
		if mf.Key != "ingredients" {
			continue
		}
		return parseIngredientIDs(fmt.Sprintf("%v", mf.Value)), nil
	}
	return nil, nil
}

func (g *gateway) AdjustVariantInventory(ctx context.Context, session domain.ShopSession, variantID uint64, delta int) error {
	client, err := g.createClient(session)
	if err != nil {
		return err
	}
	variant, err := client.Variant.Get(ctx, variantID, nil)
	if err != nil {
		return fmt.Errorf("failed to get variant: %w", err)
	}
	locationID, err := g.primaryLocation(ctx, client, session.Shop)
	if err != nil {
		return err
	}
	// Server-side adjustment: no read-modify-write, so concurrent deliveries
	// touching the same variant do not lose updates.
	_, err = client.InventoryLevel.Adjust(ctx, goshopify.InventoryLevelAdjustOptions{
		InventoryItemId: variant.InventoryItemId,
		LocationId:      locationID,
		Adjust:          delta,
	})
	if err != nil {
		return fmt.Errorf("failed to adjust inventory: %w", err)
	}
	return nil
}

// primaryLocation resolves and caches the shop's first location, which is
// where inventory adjustments are applied.
func (g *gateway) primaryLocation(ctx context.Context, client *goshopify.Client, shop string) (uint64, error) {
	g.locMu.Lock()
	id, ok := g.locations[shop]
	g.locMu.Unlock()
	if ok {
		return id, nil
	}

	locations, err := client.Location.List(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to list locations: %w", err)
	}
	if len(locations) == 0 {
		return 0, fmt.Errorf("shop %s has no inventory locations", shop)
	}
	id = locations[0].Id

	g.locMu.Lock()
	g.locations[shop] = id
	g.locMu.Unlock()
	return id, nil
}

// chargeFromRemote maps the remote charge representation onto the domain
// type. Optional money fields default to zero.
func chargeFromRemote(c *goshopify.RecurringApplicationCharge) *domain.RecurringCharge {
	charge := &domain.RecurringCharge{
		ID:              c.Id,
		Name:            c.Name,
		Status:          domain.ChargeStatus(c.Status),
		Terms:           c.Terms,
		ReturnURL:       c.ReturnURL,
		ConfirmationURL: c.ConfirmationURL,
	}
	if c.Price != nil {
		charge.Price = *c.Price
	}
	if c.CappedAmount != nil {
		charge.CappedAmount = *c.CappedAmount
	}
	if c.Test != nil {
		charge.Test = *c.Test
	}
	return charge
}

// parseIngredientIDs splits the metafield's comma-separated variant id list.
// Blank or non-numeric entries are dropped rather than failing the order.
func parseIngredientIDs(value string) []uint64 {
	var ids []uint64
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
