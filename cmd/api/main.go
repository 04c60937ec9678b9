package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/learnloop/learnloop-backend/api/routes"
	"github.com/learnloop/learnloop-backend/internal/auth"
	"github.com/learnloop/learnloop-backend/internal/billing"
	"github.com/learnloop/learnloop-backend/internal/checkout"
	"github.com/learnloop/learnloop-backend/internal/communities"
	"github.com/learnloop/learnloop-backend/internal/memberships"
	"github.com/learnloop/learnloop-backend/internal/profiles"
	"github.com/learnloop/learnloop-backend/internal/users"
	stripewebhook "github.com/learnloop/learnloop-backend/internal/webhooks/stripe"
	"github.com/learnloop/learnloop-backend/pkg/config"
	"github.com/learnloop/learnloop-backend/pkg/db"
	"github.com/learnloop/learnloop-backend/pkg/logger"
	"github.com/learnloop/learnloop-backend/pkg/migrate"
	"github.com/learnloop/learnloop-backend/pkg/redis"
	"github.com/learnloop/learnloop-backend/pkg/stripe"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}

	communitiesRepo := communities.NewRepository(dbClient.DB())
	profilesRepo := profiles.NewRepository(dbClient.DB())
	usersRepo := users.NewRepository(dbClient.DB())
	membershipsRepo := memberships.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		ProfileRepo:    profilesRepo,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	routeResolver, err := billing.NewResolver(billing.ResolverParams{
		Communities: communitiesRepo,
		Profiles:    profilesRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create route resolver", err)
		os.Exit(1)
	}

	customerResolver, err := billing.NewCustomerResolver(billing.CustomerResolverParams{
		Profiles: profilesRepo,
		Users:    usersRepo,
		Stripe:   billing.NewStripeCustomerClient(stripeClient),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create customer resolver", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Routes:            routeResolver,
		Customers:         customerResolver,
		Prices:            billing.NewStripePriceClient(stripeClient),
		Sessions:          billing.NewStripeCheckoutClient(stripeClient),
		SiteBaseURL:       cfg.Site.BaseURL,
		CommissionPercent: cfg.Stripe.CommissionPercent,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	membershipService, err := memberships.NewService(memberships.ServiceParams{
		Repo:        membershipsRepo,
		Communities: communitiesRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create membership service", err)
		os.Exit(1)
	}

	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		Memberships:  membershipsRepo,
		StripeClient: billing.NewStripeSubscriptionClient(stripeClient),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	webhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, cfg.Stripe.WebhookEventTTL, "stripe-webhook")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook guard", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			authService,
			communitiesRepo,
			checkoutService,
			membershipService,
			stripeClient,
			webhookService,
			webhookGuard,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
