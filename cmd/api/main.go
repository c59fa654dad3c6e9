package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"giftbasket/internal/application"
	"giftbasket/internal/domain"
	"giftbasket/internal/infrastructure/dedup"
	"giftbasket/internal/infrastructure/metrics"
	"giftbasket/internal/infrastructure/pubsub"
	"giftbasket/internal/infrastructure/repository"
	"giftbasket/internal/infrastructure/sessionstore"
	shopifyinfra "giftbasket/internal/infrastructure/shopify"
	"giftbasket/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redislib "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// deliveryRetention is how long delivery ids are remembered for dedup.
// Shopify stops redelivering well inside this window.
const deliveryRetention = 48 * time.Hour

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("⚠️  Warning: .env file not found")
	}

	// Get configuration from environment
	apiKey := os.Getenv("SHOPIFY_API_KEY")
	apiSecret := os.Getenv("SHOPIFY_API_SECRET")
	if apiKey == "" || apiSecret == "" {
		logger.Fatal().Msg("SHOPIFY_API_KEY and SHOPIFY_API_SECRET environment variables are required")
	}

	appURL := os.Getenv("APP_URL")
	if appURL == "" {
		appURL = "http://localhost:8080"
	}

	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}

	// Connect to MongoDB
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(mongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())

	db := client.Database(os.Getenv("MONGODB_DATABASE"))
	repo := repository.NewMongoRepository(db)

	// Session store and delivery dedup: Redis when configured, in-process
	// otherwise (single replica).
	var sessions ports.SessionStore
	var deliveries ports.DeliveryDedup
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		redisClient := redislib.NewClient(&redislib.Options{Addr: redisAddr})
		sessions = sessionstore.NewRedisStore(redisClient)
		deliveries = dedup.NewRedisSeenSet(redisClient, deliveryRetention)
		logger.Info().Str("addr", redisAddr).Msg("Using Redis-backed session store")
	} else {
		sessions = sessionstore.NewMemoryStore()
		deliveries = dedup.NewMemorySeenSet(deliveryRetention)
		logger.Info().Msg("Using in-memory session store")
	}

	// Metrics
	registry := prometheus.NewRegistry()
	appMetrics := metrics.New(registry)

	// Initialize infrastructure and application services
	gateway := shopifyinfra.NewGateway(apiKey, apiSecret, logger)
	webhookVerifier := shopifyinfra.NewWebhookVerifier(apiSecret)

	billingService := application.NewBillingService(gateway, logger, appURL)
	onboardingService := application.NewOnboardingService(
		apiKey,
		apiSecret,
		appURL,
		sessions,
		gateway,
		billingService,
		repo,
		logger,
	)
	orderProcessor := application.NewOrderWebhookProcessor(
		webhookVerifier,
		sessions,
		billingService,
		gateway,
		deliveries,
		appMetrics,
		logger,
	)

	// Webhook pub/sub for in-process consumers
	webhookPubSub := pubsub.NewWebhookPubSub(logger)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	// Health check - must be public for monitoring
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	// Metrics
	r.Get("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}).ServeHTTP)

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, "./docs/swagger.json")
	})

	// Install and OAuth routes
	r.Get("/install", installHandler(onboardingService))
	r.Get("/auth", authCallbackHandler(onboardingService, logger))
	r.Get("/activatecharge", activateChargeHandler(onboardingService, logger))

	// Webhook endpoint
	r.Post("/webhook/order_create", orderWebhookHandler(orderProcessor, repo, webhookPubSub, logger))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info().Str("port", port).Str("appUrl", appURL).Msg("Starting API server")
	if err := http.ListenAndServe(":"+port, r); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}

// installHandler begins the install flow by redirecting the merchant to the
// authorization page.
func installHandler(onboarding *application.OnboardingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop := r.URL.Query().Get("shop")
		if shop == "" {
			http.Error(w, "shop parameter is required", http.StatusBadRequest)
			return
		}

		http.Redirect(w, r, onboarding.InstallURL(shop), http.StatusFound)
	}
}

// authCallbackHandler handles the signed install callback.
func authCallbackHandler(onboarding *application.OnboardingService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		redirectURL, err := onboarding.HandleCallback(r.Context(), r.URL.Query())
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidSignature):
				http.Error(w, "Authentication failed", http.StatusForbidden)
			case errors.Is(err, domain.ErrExchangeFailed):
				http.Error(w, "Failed to complete installation", http.StatusInternalServerError)
			default:
				logger.Error().Err(err).Msg("Install callback failed")
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		http.Redirect(w, r, redirectURL, http.StatusFound)
	}
}

// activateChargeHandler handles the merchant's return from the charge
// confirmation page.
func activateChargeHandler(onboarding *application.OnboardingService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop := r.URL.Query().Get("shop")
		chargeID, err := strconv.ParseUint(r.URL.Query().Get("charge_id"), 10, 64)
		if shop == "" || err != nil {
			http.Error(w, "shop and charge_id parameters are required", http.StatusBadRequest)
			return
		}

		redirectURL, err := onboarding.ActivateCharge(r.Context(), shop, chargeID)
		if err != nil {
			if errors.Is(err, domain.ErrSessionNotFound) {
				http.Error(w, "You're not authorized to perform this action", http.StatusForbidden)
				return
			}
			logger.Error().Err(err).Str("shop", shop).Msg("Charge activation failed")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, redirectURL, http.StatusFound)
	}
}

// orderWebhookHandler handles orders/create webhook deliveries.
func orderWebhookHandler(
	processor *application.OrderWebhookProcessor,
	repo ports.Repository,
	webhookPubSub *pubsub.WebhookPubSub,
	logger zerolog.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request body", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		headers := application.WebhookHeaders{
			HMAC:       r.Header.Get("X-Shopify-Hmac-Sha256"),
			ShopDomain: r.Header.Get("X-Shopify-Shop-Domain"),
			DeliveryID: r.Header.Get("X-Shopify-Webhook-Id"),
		}

		result, err := processor.Handle(ctx, body, headers)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrUnauthorized):
				http.Error(w, "You're not authorized to perform this action", http.StatusForbidden)
			case errors.Is(err, domain.ErrBadPayload):
				http.Error(w, "Malformed webhook payload", http.StatusBadRequest)
			default:
				logger.Error().Err(err).Msg("Failed to process webhook")
				http.Error(w, "Failed to process webhook event", http.StatusInternalServerError)
			}
			return
		}

		if !result.Duplicate {
			event := &domain.WebhookEvent{
				Topic:      "orders/create",
				Shop:       result.Shop,
				DeliveryID: headers.DeliveryID,
				Payload:    body,
				Verified:   true,
			}
			// Archive the event first; continue even if logging fails.
			if err := repo.LogWebhook(ctx, event); err != nil {
				logger.Error().Err(err).Str("shop", result.Shop).Msg("Failed to log webhook event")
			}
			webhookPubSub.Publish(event)
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"received": "true",
		})
	}
}
