package application

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"giftbasket/internal/domain"
	"giftbasket/internal/infrastructure/shopify"
	"giftbasket/internal/ports"

	"github.com/rs/zerolog"
)

const (
	// installScopes is the fixed scope set requested at install time.
	installScopes = "read_orders,read_products,write_products"

	orderCreateTopic = "orders/create"

	// bulkEditURL deep-links into the catalog bulk editor where the merchant
	// configures the ingredients metafield on their variants.
	bulkEditURL = "https://www.shopify.com/admin/bulk" +
		"?resource_name=ProductVariant" +
		"&edit=metafields.test.ingredients:string"
)

// OnboardingService drives the install flow: authorization redirect,
// callback verification, token exchange, session activation, billing
// hand-off and webhook registration.
type OnboardingService struct {
	apiKey    string
	apiSecret string
	appURL    string
	sessions  ports.SessionStore
	gateway   ports.PlatformGateway
	billing   *BillingService
	archive   ports.Repository
	logger    zerolog.Logger
}

// NewOnboardingService creates a new onboarding service.
func NewOnboardingService(
	apiKey string,
	apiSecret string,
	appURL string,
	sessions ports.SessionStore,
	gateway ports.PlatformGateway,
	billing *BillingService,
	archive ports.Repository,
	logger zerolog.Logger,
) *OnboardingService {
	return &OnboardingService{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		appURL:    appURL,
		sessions:  sessions,
		gateway:   gateway,
		billing:   billing,
		archive:   archive,
		logger:    logger,
	}
}

// InstallURL builds the authorization URL the merchant is redirected to when
// installation begins. Pure function, no state mutation.
func (s *OnboardingService) InstallURL(shop string) string {
	redirectURI := s.appURL + "/auth"
	return fmt.Sprintf(
		"https://%s/admin/oauth/authorize?client_id=%s&scope=%s&redirect_uri=%s",
		shop,
		s.apiKey,
		url.QueryEscape(installScopes),
		url.QueryEscape(redirectURI),
	)
}

// HandleCallback processes the install callback. It verifies the callback
// signature, exchanges the authorization code for an access token (skipped
// when the shop is already authenticated, so re-entry is idempotent), stores
// the session and hands off to billing. The returned URL is the charge
// confirmation page when a new charge was created, otherwise the bulk-edit
// destination.
func (s *OnboardingService) HandleCallback(ctx context.Context, params url.Values) (string, error) {
	shop := params.Get("shop")
	code := params.Get("code")

	if !shopify.VerifyInstall(params, params.Get("hmac"), s.apiSecret) {
		s.logger.Warn().Str("shop", shop).Msg("Install callback signature verification failed")
		return "", domain.ErrInvalidSignature
	}

	has, err := s.sessions.Has(ctx, shop)
	if err != nil {
		return "", fmt.Errorf("failed to check session: %w", err)
	}

	if !has {
		token, err := s.gateway.ExchangeToken(ctx, shop, code)
		if err != nil {
			s.logger.Error().Err(err).Str("shop", shop).Msg("Failed to exchange token")
			return "", fmt.Errorf("%w: %v", domain.ErrExchangeFailed, err)
		}
		if err := s.sessions.Put(ctx, shop, token); err != nil {
			return "", fmt.Errorf("failed to store session: %w", err)
		}

		// Archive the install; the session store stays authoritative.
		if err := s.archive.SaveShop(ctx, &domain.ShopSession{Shop: shop, AccessToken: token}); err != nil {
			s.logger.Error().Err(err).Str("shop", shop).Msg("Failed to archive shop")
		}

		s.logger.Info().Str("shop", shop).Msg("Shop installed, session activated")
	}

	session, err := s.session(ctx, shop)
	if err != nil {
		return "", err
	}

	confirmationURL, err := s.billing.EnsureCharge(ctx, session)
	if err != nil {
		// Fail-open: the install stands even when billing is unavailable.
		s.logger.Error().Err(err).Str("shop", shop).Msg("Failed to ensure recurring charge")
	}
	if confirmationURL != "" {
		return confirmationURL, nil
	}

	return bulkEditURL, nil
}

// ActivateCharge handles the merchant's return from the charge confirmation
// page: activate the charge if it was accepted (best effort), make sure the
// order webhook is registered, and send the merchant on to the bulk editor.
func (s *OnboardingService) ActivateCharge(ctx context.Context, shop string, chargeID uint64) (string, error) {
	session, err := s.session(ctx, shop)
	if err != nil {
		return "", err
	}

	if err := s.billing.ActivateCharge(ctx, session, chargeID); err != nil {
		s.logger.Error().Err(err).Str("shop", shop).Uint64("chargeId", chargeID).Msg("Charge activation failed")
	}

	if err := s.ensureWebhookSubscription(ctx, session); err != nil {
		s.logger.Error().Err(err).Str("shop", shop).Msg("Failed to ensure webhook subscription")
	}

	return bulkEditURL, nil
}

// ensureWebhookSubscription registers the orders/create webhook unless the
// shop already has one pointing at this app. Checked before creation, not
// enforced by a unique constraint.
func (s *OnboardingService) ensureWebhookSubscription(ctx context.Context, session domain.ShopSession) error {
	address := s.appURL + "/webhook/order_create"

	webhooks, err := s.gateway.ListWebhooks(ctx, session, orderCreateTopic)
	if err != nil {
		return fmt.Errorf("failed to list webhooks: %w", err)
	}
	for _, w := range webhooks {
		if w.Address == address {
			return nil
		}
	}

	if _, err := s.gateway.CreateWebhook(ctx, session, orderCreateTopic, address); err != nil {
		return fmt.Errorf("failed to create webhook: %w", err)
	}
	return nil
}

func (s *OnboardingService) session(ctx context.Context, shop string) (domain.ShopSession, error) {
	token, err := s.sessions.Get(ctx, shop)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return domain.ShopSession{}, err
		}
		return domain.ShopSession{}, fmt.Errorf("failed to get session: %w", err)
	}
	return domain.ShopSession{Shop: shop, AccessToken: token}, nil
}
