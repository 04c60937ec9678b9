package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/learnloop/learnloop-backend/pkg/db/models"
	pkgerrors "github.com/learnloop/learnloop-backend/pkg/errors"
)

type profileCustomerStore interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	CreateForUser(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	SetStripeCustomerID(ctx context.Context, profileID uuid.UUID, customerID *string) error
}

type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// CustomerResolverParams groups dependencies for the customer resolver.
type CustomerResolverParams struct {
	Profiles profileCustomerStore
	Users    userFinder
	Stripe   StripeCustomerClient
}

// CustomerResolver lazily provisions one Stripe customer per local user. The
// mapping lives on the profile row; it is revalidated against Stripe so a
// deleted customer falls through to creation instead of poisoning checkout.
// Customers are always created on the platform account.
type CustomerResolver struct {
	profiles profileCustomerStore
	users    userFinder
	stripe   StripeCustomerClient
}

// NewCustomerResolver builds a customer resolver.
func NewCustomerResolver(params CustomerResolverParams) (*CustomerResolver, error) {
	if params.Profiles == nil {
		return nil, errors.New("profiles repo is required")
	}
	if params.Users == nil {
		return nil, errors.New("users repo is required")
	}
	if params.Stripe == nil {
		return nil, errors.New("stripe customer client is required")
	}
	return &CustomerResolver{
		profiles: params.Profiles,
		users:    params.Users,
		stripe:   params.Stripe,
	}, nil
}

// Resolve returns the Stripe customer id for the user, creating the customer
// and persisting the mapping on first use.
func (r *CustomerResolver) Resolve(ctx context.Context, userID uuid.UUID) (string, error) {
	if userID == uuid.Nil {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "user is required")
	}

	profile, err := r.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load profile")
		}
		profile, err = r.profiles.CreateForUser(ctx, userID)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create profile")
		}
	}

	if profile.StripeCustomerID != nil && *profile.StripeCustomerID != "" {
		existing, err := r.stripe.Get(ctx, *profile.StripeCustomerID)
		switch {
		case isMissingCustomer(err):
			if clearErr := r.profiles.SetStripeCustomerID(ctx, profile.ID, nil); clearErr != nil {
				return "", pkgerrors.Wrap(pkgerrors.CodeInternal, clearErr, "clear stale customer mapping")
			}
		case err != nil:
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch stripe customer")
		case existing.Deleted:
			if clearErr := r.profiles.SetStripeCustomerID(ctx, profile.ID, nil); clearErr != nil {
				return "", pkgerrors.Wrap(pkgerrors.CodeInternal, clearErr, "clear stale customer mapping")
			}
		default:
			return existing.ID, nil
		}
	}

	user, err := r.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}

	created, err := r.stripe.Create(ctx, CustomerParams{
		Email: user.Email,
		Name:  user.FullName,
		Metadata: map[string]string{
			"user_id": user.ID.String(),
		},
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stripe customer")
	}
	if created == nil || created.ID == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "stripe returned empty customer")
	}

	if err := r.profiles.SetStripeCustomerID(ctx, profile.ID, &created.ID); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("persist customer %s", created.ID))
	}
	return created.ID, nil
}

func isMissingCustomer(err error) bool {
	if err == nil {
		return false
	}
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return stripeErr.Code == stripe.ErrorCodeResourceMissing
	}
	return false
}
