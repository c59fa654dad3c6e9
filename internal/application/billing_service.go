package application

import (
	"context"
	"fmt"
	"net/url"

	"giftbasket/internal/domain"
	"giftbasket/internal/ports"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Fixed plan terms from the app's pricing page.
const (
	chargeName       = "Gift Basket Plan"
	chargeTerms      = "$1 for every order created"
	usageDescription = "1 dollar per order plan"
)

var (
	chargePrice        = decimal.NewFromFloat(4.99)
	chargeCappedAmount = decimal.NewFromInt(100)

	// UsageChargePrice is the per-order fee attached on every processed
	// order webhook.
	UsageChargePrice = decimal.NewFromFloat(1.0)
)

// BillingService creates the recurring application charge on install and
// attaches per-order usage charges.
type BillingService struct {
	gateway ports.PlatformGateway
	logger  zerolog.Logger
	appURL  string
}

// NewBillingService creates a new billing service. appURL is the externally
// reachable base URL; the charge's return URL points back at it.
func NewBillingService(gateway ports.PlatformGateway, logger zerolog.Logger, appURL string) *BillingService {
	return &BillingService{
		gateway: gateway,
		logger:  logger,
		appURL:  appURL,
	}
}

// EnsureCharge checks for a current recurring charge and creates one with
// the fixed plan terms when none exists. It returns the confirmation URL the
// merchant must be redirected to when a charge was created, and "" when the
// shop already has one. Calling it again for a charged shop is a no-op.
func (s *BillingService) EnsureCharge(ctx context.Context, session domain.ShopSession) (string, error) {
	current, err := s.gateway.CurrentRecurringCharge(ctx, session)
	if err != nil {
		return "", &domain.BillingError{Op: "lookup recurring charge", Err: err}
	}
	if current != nil {
		return "", nil
	}

	// The return URL carries the shop so the activation redirect can resolve
	// the session explicitly.
	returnURL := fmt.Sprintf("%s/activatecharge?shop=%s", s.appURL, url.QueryEscape(session.Shop))

	created, err := s.gateway.CreateRecurringCharge(ctx, session, domain.RecurringCharge{
		Name:         chargeName,
		Price:        chargePrice,
		CappedAmount: chargeCappedAmount,
		Terms:        chargeTerms,
		ReturnURL:    returnURL,
		Test:         true,
	})
	if err != nil {
		return "", &domain.BillingError{Op: "create recurring charge", Err: err}
	}

	s.logger.Info().
		Str("shop", session.Shop).
		Uint64("chargeId", created.ID).
		Msg("Recurring charge created, awaiting merchant confirmation")

	return created.ConfirmationURL, nil
}

// ActivateCharge fetches the charge and activates it when the merchant has
// accepted it. Any other status is a no-op, not an error.
func (s *BillingService) ActivateCharge(ctx context.Context, session domain.ShopSession, chargeID uint64) error {
	charge, err := s.gateway.GetRecurringCharge(ctx, session, chargeID)
	if err != nil {
		return &domain.BillingError{Op: "get recurring charge", Err: err}
	}
	if charge.Status != domain.ChargeStatusAccepted {
		s.logger.Info().
			Str("shop", session.Shop).
			Uint64("chargeId", chargeID).
			Str("status", string(charge.Status)).
			Msg("Charge not accepted yet, skipping activation")
		return nil
	}

	if _, err := s.gateway.ActivateRecurringCharge(ctx, session, chargeID); err != nil {
		return &domain.BillingError{Op: "activate recurring charge", Err: err}
	}

	s.logger.Info().
		Str("shop", session.Shop).
		Uint64("chargeId", chargeID).
		Msg("Recurring charge activated")
	return nil
}

// ChargeUsage attaches a usage charge at the given price to the shop's most
// recent recurring charge.
func (s *BillingService) ChargeUsage(ctx context.Context, session domain.ShopSession, price decimal.Decimal) error {
	latest, err := s.gateway.LatestRecurringCharge(ctx, session)
	if err != nil {
		return &domain.BillingError{Op: "lookup recurring charge", Err: err}
	}
	if latest == nil {
		return &domain.BillingError{Op: "usage charge", Err: fmt.Errorf("shop %s has no recurring charge", session.Shop)}
	}

	err = s.gateway.CreateUsageCharge(ctx, session, latest.ID, domain.UsageCharge{
		Description: usageDescription,
		Price:       price,
	})
	if err != nil {
		return &domain.BillingError{Op: "create usage charge", Err: err}
	}

	s.logger.Info().
		Str("shop", session.Shop).
		Uint64("chargeId", latest.ID).
		Str("price", price.String()).
		Msg("Usage charge created")
	return nil
}
