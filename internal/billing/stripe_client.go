package billing

import (
	"context"

	"github.com/stripe/stripe-go/v84"
	checkoutsession "github.com/stripe/stripe-go/v84/checkout/session"
	"github.com/stripe/stripe-go/v84/customer"
	"github.com/stripe/stripe-go/v84/price"
	"github.com/stripe/stripe-go/v84/subscription"

	pkgstripe "github.com/learnloop/learnloop-backend/pkg/stripe"
)

// Customer is the subset of a Stripe customer the platform cares about.
type Customer struct {
	ID      string
	Email   string
	Deleted bool
}

// CustomerParams describes a customer to create on the platform account.
type CustomerParams struct {
	Email    string
	Name     string
	Metadata map[string]string
}

// Price is the subset of a Stripe price needed for fee math.
type Price struct {
	ID         string
	UnitAmount int64
	Currency   string
}

// CheckoutSessionParams describes a subscription-mode hosted checkout session.
// ConnectedAccountID routes creation through a Connect account; the fee fields
// are only meaningful when it is set.
type CheckoutSessionParams struct {
	CustomerID            string
	PriceID               string
	SuccessURL            string
	CancelURL             string
	SubscriptionMetadata  map[string]string
	ConnectedAccountID    *string
	ApplicationFeePercent *float64
	ApplicationFeeAmount  *int64
}

// CheckoutSession carries the identifiers the caller needs after creation.
type CheckoutSession struct {
	ID  string
	URL string
}

// StripeCustomerClient exposes the customer operations required by the resolver.
type StripeCustomerClient interface {
	Create(ctx context.Context, params CustomerParams) (*Customer, error)
	Get(ctx context.Context, id string) (*Customer, error)
}

// StripePriceClient fetches prices, optionally scoped to a connected account.
type StripePriceClient interface {
	Get(ctx context.Context, id string, connectedAccountID *string) (*Price, error)
}

// StripeCheckoutClient creates hosted checkout sessions.
type StripeCheckoutClient interface {
	CreateSession(ctx context.Context, params CheckoutSessionParams) (*CheckoutSession, error)
}

// StripeSubscriptionClient exposes the subset of Stripe operations required by webhook reconciliation.
type StripeSubscriptionClient interface {
	Get(ctx context.Context, id string, params *stripe.SubscriptionParams) (*stripe.Subscription, error)
}

type customerClientWrapper struct{}

// NewStripeCustomerClient wraps the Stripe SDK so the customer resolver can be tested.
func NewStripeCustomerClient(api *pkgstripe.Client) StripeCustomerClient {
	if api == nil {
		return nil
	}
	return &customerClientWrapper{}
}

func (w *customerClientWrapper) Create(ctx context.Context, params CustomerParams) (*Customer, error) {
	sdkParams := &stripe.CustomerParams{
		Params: stripe.Params{Context: ctx},
		Email:  stripe.String(params.Email),
	}
	if params.Name != "" {
		sdkParams.Name = stripe.String(params.Name)
	}
	for k, v := range params.Metadata {
		sdkParams.AddMetadata(k, v)
	}
	created, err := customer.New(sdkParams)
	if err != nil {
		return nil, err
	}
	return customerFromStripe(created), nil
}

func (w *customerClientWrapper) Get(ctx context.Context, id string) (*Customer, error) {
	fetched, err := customer.Get(id, &stripe.CustomerParams{Params: stripe.Params{Context: ctx}})
	if err != nil {
		return nil, err
	}
	return customerFromStripe(fetched), nil
}

func customerFromStripe(c *stripe.Customer) *Customer {
	if c == nil {
		return nil
	}
	return &Customer{ID: c.ID, Email: c.Email, Deleted: c.Deleted}
}

type priceClientWrapper struct{}

// NewStripePriceClient wraps the Stripe SDK price API.
func NewStripePriceClient(api *pkgstripe.Client) StripePriceClient {
	if api == nil {
		return nil
	}
	return &priceClientWrapper{}
}

func (w *priceClientWrapper) Get(ctx context.Context, id string, connectedAccountID *string) (*Price, error) {
	sdkParams := &stripe.PriceParams{Params: stripe.Params{Context: ctx}}
	if connectedAccountID != nil && *connectedAccountID != "" {
		sdkParams.SetStripeAccount(*connectedAccountID)
	}
	fetched, err := price.Get(id, sdkParams)
	if err != nil {
		return nil, err
	}
	return &Price{ID: fetched.ID, UnitAmount: fetched.UnitAmount, Currency: string(fetched.Currency)}, nil
}

type checkoutClientWrapper struct{}

// NewStripeCheckoutClient wraps the Stripe SDK checkout session API.
func NewStripeCheckoutClient(api *pkgstripe.Client) StripeCheckoutClient {
	if api == nil {
		return nil
	}
	return &checkoutClientWrapper{}
}

func (w *checkoutClientWrapper) CreateSession(ctx context.Context, params CheckoutSessionParams) (*CheckoutSession, error) {
	sdkParams := &stripe.CheckoutSessionParams{
		Params:     stripe.Params{Context: ctx},
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer:   stripe.String(params.CustomerID),
		SuccessURL: stripe.String(params.SuccessURL),
		CancelURL:  stripe.String(params.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(params.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
	}

	if len(params.SubscriptionMetadata) > 0 || params.ApplicationFeePercent != nil {
		subData := &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: params.SubscriptionMetadata,
		}
		if params.ApplicationFeePercent != nil {
			subData.ApplicationFeePercent = stripe.Float64(*params.ApplicationFeePercent)
		}
		sdkParams.SubscriptionData = subData
	}

	if params.ConnectedAccountID != nil && *params.ConnectedAccountID != "" {
		sdkParams.SetStripeAccount(*params.ConnectedAccountID)
	}

	created, err := checkoutsession.New(sdkParams)
	if err != nil {
		return nil, err
	}
	return &CheckoutSession{ID: created.ID, URL: created.URL}, nil
}

type subscriptionClientWrapper struct{}

// NewStripeSubscriptionClient wraps the Stripe SDK subscription API.
func NewStripeSubscriptionClient(api *pkgstripe.Client) StripeSubscriptionClient {
	if api == nil {
		return nil
	}
	return &subscriptionClientWrapper{}
}

func (w *subscriptionClientWrapper) Get(ctx context.Context, id string, params *stripe.SubscriptionParams) (*stripe.Subscription, error) {
	if params == nil {
		params = &stripe.SubscriptionParams{}
	}
	params.Context = ctx
	return subscription.Get(id, params)
}
