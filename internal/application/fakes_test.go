package application

import (
	"context"
	"fmt"
	"sync"

	"giftbasket/internal/domain"
)

type inventoryAdjustment struct {
	variantID uint64
	delta     int
}

// fakeGateway is a scripted in-memory stand-in for the remote platform. All
// mutating calls are recorded so tests can assert on the exact side effects.
type fakeGateway struct {
	mu sync.Mutex

	exchangeToken string
	exchangeErr   error
	exchangeCalls []string

	currentCharge *domain.RecurringCharge
	currentErr    error

	createdCharge      *domain.RecurringCharge
	createChargeCalls  []domain.RecurringCharge
	createChargeErr    error

	charges        map[uint64]*domain.RecurringCharge
	activatedIDs   []uint64

	latestCharge *domain.RecurringCharge
	latestErr    error

	usageCharges []domain.UsageCharge
	usageErr     error

	webhooks        []domain.Webhook
	createdWebhooks []domain.Webhook

	ingredients map[uint64][]uint64
	inventory   map[uint64]int
	adjustments []inventoryAdjustment
	adjustErr   error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		charges:     make(map[uint64]*domain.RecurringCharge),
		ingredients: make(map[uint64][]uint64),
		inventory:   make(map[uint64]int),
	}
}

func (g *fakeGateway) ExchangeToken(ctx context.Context, shop string, code string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.exchangeCalls = append(g.exchangeCalls, code)
	if g.exchangeErr != nil {
		return "", g.exchangeErr
	}
	return g.exchangeToken, nil
}

func (g *fakeGateway) CurrentRecurringCharge(ctx context.Context, session domain.ShopSession) (*domain.RecurringCharge, error) {
	return g.currentCharge, g.currentErr
}

func (g *fakeGateway) CreateRecurringCharge(ctx context.Context, session domain.ShopSession, charge domain.RecurringCharge) (*domain.RecurringCharge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.createChargeCalls = append(g.createChargeCalls, charge)
	if g.createChargeErr != nil {
		return nil, g.createChargeErr
	}
	if g.createdCharge != nil {
		return g.createdCharge, nil
	}
	created := charge
	created.ID = 1
	created.Status = domain.ChargeStatusPending
	created.ConfirmationURL = "https://" + session.Shop + "/admin/charges/1/confirm"
	return &created, nil
}

func (g *fakeGateway) GetRecurringCharge(ctx context.Context, session domain.ShopSession, chargeID uint64) (*domain.RecurringCharge, error) {
	charge, ok := g.charges[chargeID]
	if !ok {
		return nil, fmt.Errorf("charge %d not found", chargeID)
	}
	return charge, nil
}

func (g *fakeGateway) ActivateRecurringCharge(ctx context.Context, session domain.ShopSession, chargeID uint64) (*domain.RecurringCharge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.activatedIDs = append(g.activatedIDs, chargeID)
	charge, ok := g.charges[chargeID]
	if !ok {
		return nil, fmt.Errorf("charge %d not found", chargeID)
	}
	activated := *charge
	activated.Status = domain.ChargeStatusActive
	return &activated, nil
}

func (g *fakeGateway) LatestRecurringCharge(ctx context.Context, session domain.ShopSession) (*domain.RecurringCharge, error) {
	return g.latestCharge, g.latestErr
}

func (g *fakeGateway) CreateUsageCharge(ctx context.Context, session domain.ShopSession, recurringChargeID uint64, charge domain.UsageCharge) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.usageErr != nil {
		return g.usageErr
	}
	g.usageCharges = append(g.usageCharges, charge)
	return nil
}

func (g *fakeGateway) ListWebhooks(ctx context.Context, session domain.ShopSession, topic string) ([]domain.Webhook, error) {
	return g.webhooks, nil
}

func (g *fakeGateway) CreateWebhook(ctx context.Context, session domain.ShopSession, topic string, address string) (*domain.Webhook, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	created := domain.Webhook{ID: uint64(len(g.createdWebhooks) + 1), Topic: topic, Address: address}
	g.createdWebhooks = append(g.createdWebhooks, created)
	return &created, nil
}

func (g *fakeGateway) GetVariant(ctx context.Context, session domain.ShopSession, variantID uint64) (*domain.Variant, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return &domain.Variant{ID: variantID, InventoryQuantity: g.inventory[variantID]}, nil
}

func (g *fakeGateway) VariantIngredients(ctx context.Context, session domain.ShopSession, variantID uint64) ([]uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ingredients[variantID], nil
}

func (g *fakeGateway) AdjustVariantInventory(ctx context.Context, session domain.ShopSession, variantID uint64, delta int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.adjustErr != nil {
		return g.adjustErr
	}
	g.adjustments = append(g.adjustments, inventoryAdjustment{variantID: variantID, delta: delta})
	g.inventory[variantID] += delta
	return nil
}

// fakeArchive records what would be written to the persistent audit trail.
type fakeArchive struct {
	mu     sync.Mutex
	shops  []*domain.ShopSession
	events []*domain.WebhookEvent
}

func (a *fakeArchive) SaveShop(ctx context.Context, session *domain.ShopSession) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.shops = append(a.shops, session)
	return nil
}

func (a *fakeArchive) GetShop(ctx context.Context, shop string) (*domain.ShopSession, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, s := range a.shops {
		if s.Shop == shop {
			return s, nil
		}
	}
	return nil, nil
}

func (a *fakeArchive) LogWebhook(ctx context.Context, event *domain.WebhookEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, event)
	return nil
}
