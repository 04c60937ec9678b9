package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/learnloop/learnloop-backend/api/controllers"
	webhookcontrollers "github.com/learnloop/learnloop-backend/api/controllers/webhooks"
	"github.com/learnloop/learnloop-backend/api/middleware"
	"github.com/learnloop/learnloop-backend/internal/auth"
	stripewebhook "github.com/learnloop/learnloop-backend/internal/webhooks/stripe"
	"github.com/learnloop/learnloop-backend/pkg/config"
	"github.com/learnloop/learnloop-backend/pkg/logger"
	"github.com/learnloop/learnloop-backend/pkg/redis"
	"github.com/learnloop/learnloop-backend/pkg/stripe"
)

// NewRouter wires middleware, controllers, and health checks into the chi mux.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger controllers.Pinger,
	redisClient *redis.Client,
	authService auth.Service,
	communitiesRepo controllers.CommunityFinder,
	checkoutService controllers.CheckoutService,
	membershipService controllers.MembershipService,
	stripeClient *stripe.Client,
	webhookService webhookcontrollers.StripeWebhookService,
	webhookGuard *stripewebhook.IdempotencyGuard,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	checkoutPolicy := middleware.NewCheckoutRateLimitPolicy(
		"checkout",
		cfg.RateLimit.CheckoutWindow,
		cfg.RateLimit.CheckoutIPLimit,
		cfg.RateLimit.CheckoutUserLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": dbPinger,
			"redis":    redisClient,
		}))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", controllers.AuthRegister(authService, logg))
		r.Post("/auth/login", controllers.AuthLogin(authService, logg))

		r.Post("/webhooks/stripe", webhookcontrollers.StripeWebhook(webhookService, stripeClient, webhookGuard, logg))

		r.Get("/communities/{slug}", controllers.GetCommunity(communitiesRepo, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.With(middleware.CheckoutRateLimit(checkoutPolicy, redisClient, logg)).
				Post("/checkout", controllers.Checkout(checkoutService, logg))

			r.Get("/memberships", controllers.ListMemberships(membershipService, logg))
			r.Get("/communities/{slug}/membership", controllers.GetMembershipStatus(membershipService, logg))
		})
	})

	return r
}
