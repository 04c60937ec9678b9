package checkout

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/learnloop/learnloop-backend/internal/billing"
	pkgerrors "github.com/learnloop/learnloop-backend/pkg/errors"
)

// DefaultCommissionPercent is the platform cut applied to partner-owned
// communities billed through a connected account.
const DefaultCommissionPercent = 5.0

type routeResolver interface {
	Resolve(ctx context.Context, communityID uuid.UUID) (*billing.Route, error)
}

type customerResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID) (string, error)
}

// Session is what the API returns to the caller: the hosted page to redirect to.
type Session struct {
	ID  string
	URL string
}

// ServiceParams groups dependencies for the checkout service.
type ServiceParams struct {
	Routes            routeResolver
	Customers         customerResolver
	Prices            billing.StripePriceClient
	Sessions          billing.StripeCheckoutClient
	SiteBaseURL       string
	CommissionPercent float64
}

// Service builds subscription-mode checkout sessions. It performs no local
// writes; membership rows only appear once the webhook reconciler runs.
type Service struct {
	routes            routeResolver
	customers         customerResolver
	prices            billing.StripePriceClient
	sessions          billing.StripeCheckoutClient
	siteBaseURL       string
	commissionPercent float64
}

// NewService builds a checkout service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Routes == nil {
		return nil, errors.New("route resolver is required")
	}
	if params.Customers == nil {
		return nil, errors.New("customer resolver is required")
	}
	if params.Prices == nil {
		return nil, errors.New("price client is required")
	}
	if params.Sessions == nil {
		return nil, errors.New("checkout client is required")
	}
	if strings.TrimSpace(params.SiteBaseURL) == "" {
		return nil, errors.New("site base url is required")
	}
	if _, err := url.Parse(params.SiteBaseURL); err != nil {
		return nil, fmt.Errorf("invalid site base url: %w", err)
	}

	pct := params.CommissionPercent
	if pct == 0 {
		pct = DefaultCommissionPercent
	}
	if pct < 0 || pct > 100 {
		return nil, fmt.Errorf("commission percent %v out of range", pct)
	}

	return &Service{
		routes:            params.Routes,
		customers:         params.Customers,
		prices:            params.Prices,
		sessions:          params.Sessions,
		siteBaseURL:       strings.TrimRight(params.SiteBaseURL, "/"),
		commissionPercent: pct,
	}, nil
}

// CreateSession resolves billing routing and the Stripe customer, then creates
// the hosted checkout session for the community.
func (s *Service) CreateSession(ctx context.Context, userID, communityID uuid.UUID) (*Session, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if communityID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "community id is required")
	}

	route, err := s.routes.Resolve(ctx, communityID)
	if err != nil {
		return nil, err
	}

	customerID, err := s.customers.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	params := billing.CheckoutSessionParams{
		CustomerID: customerID,
		PriceID:    route.PriceID,
		SuccessURL: s.returnURL(route.CommunitySlug, "success") + "&session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  s.returnURL(route.CommunitySlug, "cancelled"),
		SubscriptionMetadata: map[string]string{
			"user_id":      userID.String(),
			"community_id": communityID.String(),
		},
	}

	if route.Routed() {
		price, err := s.prices.Get(ctx, route.PriceID, route.ConnectedAccountID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch price")
		}
		if price.UnitAmount <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeConfiguration, "price has no unit amount")
		}
		fee := ApplicationFee(price.UnitAmount, s.commissionPercent)
		pct := s.commissionPercent
		params.ConnectedAccountID = route.ConnectedAccountID
		params.ApplicationFeePercent = &pct
		params.ApplicationFeeAmount = &fee
	}

	session, err := s.sessions.CreateSession(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout session")
	}
	if session == nil || session.URL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "stripe returned no checkout url")
	}
	return &Session{ID: session.ID, URL: session.URL}, nil
}

// ApplicationFee computes the platform cut in the price's smallest currency
// unit, rounded half away from zero.
func ApplicationFee(unitAmount int64, percent float64) int64 {
	return int64(math.Round(float64(unitAmount) * percent / 100))
}

func (s *Service) returnURL(slug, outcome string) string {
	return fmt.Sprintf("%s/community/%s?checkout=%s", s.siteBaseURL, url.PathEscape(slug), outcome)
}
