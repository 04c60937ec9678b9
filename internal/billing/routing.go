package billing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/learnloop/learnloop-backend/pkg/db/models"
	pkgerrors "github.com/learnloop/learnloop-backend/pkg/errors"
)

// Route tells the checkout flow which price to charge and whether the money
// goes through a partner's connected account.
type Route struct {
	CommunityID        uuid.UUID
	CommunitySlug      string
	PriceID            string
	ConnectedAccountID *string
}

// Routed reports whether the session must be created on a connected account.
func (r *Route) Routed() bool {
	return r.ConnectedAccountID != nil && *r.ConnectedAccountID != ""
}

type communityFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Community, error)
}

type profileFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

// ResolverParams groups dependencies for the route resolver.
type ResolverParams struct {
	Communities communityFinder
	Profiles    profileFinder
}

// Resolver maps a community to its billing destination.
type Resolver struct {
	communities communityFinder
	profiles    profileFinder
}

// NewResolver builds a route resolver.
func NewResolver(params ResolverParams) (*Resolver, error) {
	if params.Communities == nil {
		return nil, errors.New("communities repo is required")
	}
	if params.Profiles == nil {
		return nil, errors.New("profiles repo is required")
	}
	return &Resolver{communities: params.Communities, profiles: params.Profiles}, nil
}

// Resolve returns the price and connected-account routing for a community.
// A partner profile without a connected account falls back to platform billing.
func (r *Resolver) Resolve(ctx context.Context, communityID uuid.UUID) (*Route, error) {
	community, err := r.communities.FindByID(ctx, communityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "community not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load community")
	}

	if community.StripePriceID == nil || *community.StripePriceID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "community has no price configured")
	}

	route := &Route{
		CommunityID:   community.ID,
		CommunitySlug: community.Slug,
		PriceID:       *community.StripePriceID,
	}

	if community.OwnerProfileID == nil {
		return route, nil
	}

	owner, err := r.profiles.FindByID(ctx, *community.OwnerProfileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Orphaned owner reference bills as platform-owned.
			return route, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load owner profile")
	}

	if owner.StripeConnectedAccountID != nil && *owner.StripeConnectedAccountID != "" {
		route.ConnectedAccountID = owner.StripeConnectedAccountID
	}
	return route, nil
}
