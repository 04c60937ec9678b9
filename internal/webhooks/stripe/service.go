package stripewebhook

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/learnloop/learnloop-backend/internal/billing"
	"github.com/learnloop/learnloop-backend/pkg/db/models"
	"github.com/learnloop/learnloop-backend/pkg/enums"
	pkgerrors "github.com/learnloop/learnloop-backend/pkg/errors"
)

type membershipStore interface {
	Upsert(ctx context.Context, membership *models.Membership) error
	UpdateStatusBySubscriptionID(ctx context.Context, stripeSubscriptionID string, status string) (int64, error)
}

type ServiceParams struct {
	Memberships  membershipStore
	StripeClient billing.StripeSubscriptionClient
}

// Service reconciles Stripe subscription lifecycle events into membership
// rows. Activation happens only on paid invoices; the full subscription is
// refetched from Stripe rather than trusted from the event payload.
type Service struct {
	memberships membershipStore
	stripe      billing.StripeSubscriptionClient
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Memberships == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "membership repo required")
	}
	if params.StripeClient == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stripe client required")
	}
	return &Service{
		memberships: params.Memberships,
		stripe:      params.StripeClient,
	}, nil
}

func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypeInvoicePaymentSucceeded:
		return s.activateFromInvoice(ctx, event)
	case stripe.EventTypeCustomerSubscriptionUpdated,
		stripe.EventTypeCustomerSubscriptionDeleted:
		var stripeSub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &stripeSub); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode subscription event")
		}
		return s.syncStatus(ctx, &stripeSub)
	default:
		// checkout.session.completed and everything else is deliberately ignored.
		return nil
	}
}

// activateFromInvoice turns a paid invoice into an active membership. The
// invoice only carries a subscription reference, so the subscription is
// refetched to read its metadata and period end.
func (s *Service) activateFromInvoice(ctx context.Context, event *stripe.Event) error {
	subscriptionID := invoiceSubscriptionID(event)
	if subscriptionID == "" {
		return pkgerrors.New(pkgerrors.CodeData, "invoice event missing subscription id")
	}

	stripeSub, err := s.stripe.Get(ctx, subscriptionID, &stripe.SubscriptionParams{})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch stripe subscription")
	}

	userID, communityID, err := identityFromMetadata(stripeSub.Metadata)
	if err != nil {
		return err
	}

	membership := &models.Membership{
		ID:                   uuid.New(),
		UserID:               userID,
		CommunityID:          communityID,
		Status:               enums.MembershipStatusActive,
		StripeSubscriptionID: stripeSub.ID,
		CurrentPeriodEnd:     periodEnd(stripeSub),
	}
	if err := s.memberships.Upsert(ctx, membership); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upsert membership")
	}
	return nil
}

// syncStatus mirrors subscription status changes onto an existing membership.
// A subscription we have never activated is a no-op; activation is the
// invoice handler's job.
func (s *Service) syncStatus(ctx context.Context, stripeSub *stripe.Subscription) error {
	if stripeSub == nil || stripeSub.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "subscription is required")
	}

	status := enums.MembershipStatusActive
	switch stripeSub.Status {
	case stripe.SubscriptionStatusCanceled,
		stripe.SubscriptionStatusIncompleteExpired,
		stripe.SubscriptionStatusUnpaid:
		status = enums.MembershipStatusCanceled
	}

	if _, err := s.memberships.UpdateStatusBySubscriptionID(ctx, stripeSub.ID, string(status)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sync membership status")
	}
	return nil
}

// invoiceSubscriptionID digs the subscription reference out of the invoice
// payload. Newer API versions nest it under parent.subscription_details.
func invoiceSubscriptionID(event *stripe.Event) string {
	if id := event.GetObjectValue("subscription"); id != "" {
		return id
	}
	return event.GetObjectValue("parent", "subscription_details", "subscription")
}

// identityFromMetadata reads the user and community the checkout stamped onto
// the subscription. Absence means the subscription was created outside the
// checkout flow, which is a data defect rather than a transient failure.
func identityFromMetadata(metadata map[string]string) (uuid.UUID, uuid.UUID, error) {
	rawUser, ok := metadata["user_id"]
	if !ok || rawUser == "" {
		return uuid.Nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeData, "subscription metadata missing user_id")
	}
	rawCommunity, ok := metadata["community_id"]
	if !ok || rawCommunity == "" {
		return uuid.Nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeData, "subscription metadata missing community_id")
	}

	userID, err := uuid.Parse(rawUser)
	if err != nil {
		return uuid.Nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeData, err, "invalid user_id metadata")
	}
	communityID, err := uuid.Parse(rawCommunity)
	if err != nil {
		return uuid.Nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeData, err, "invalid community_id metadata")
	}
	return userID, communityID, nil
}

func periodEnd(sub *stripe.Subscription) time.Time {
	if sub.Items == nil || len(sub.Items.Data) == 0 {
		return time.Time{}
	}
	return time.Unix(sub.Items.Data[0].CurrentPeriodEnd, 0).UTC()
}
