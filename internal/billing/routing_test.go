package billing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/learnloop/learnloop-backend/pkg/db/models"
	pkgerrors "github.com/learnloop/learnloop-backend/pkg/errors"
)

func TestResolver_PlatformOwnedCommunity(t *testing.T) {
	communityID := uuid.New()
	priceID := "price_123"
	resolver := newTestResolver(t, &models.Community{
		ID:            communityID,
		Slug:          "go-study-group",
		StripePriceID: &priceID,
	}, nil)

	route, err := resolver.Resolve(context.Background(), communityID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if route.PriceID != priceID {
		t.Fatalf("expected price %s, got %s", priceID, route.PriceID)
	}
	if route.Routed() {
		t.Fatalf("expected platform routing, got connected account %v", route.ConnectedAccountID)
	}
	if route.CommunitySlug != "go-study-group" {
		t.Fatalf("unexpected slug %q", route.CommunitySlug)
	}
}

func TestResolver_PartnerWithConnectedAccount(t *testing.T) {
	communityID := uuid.New()
	ownerID := uuid.New()
	priceID := "price_partner"
	acct := "acct_123"
	resolver := newTestResolver(t, &models.Community{
		ID:             communityID,
		Slug:           "design-lab",
		StripePriceID:  &priceID,
		OwnerProfileID: &ownerID,
	}, &models.Profile{ID: ownerID, StripeConnectedAccountID: &acct})

	route, err := resolver.Resolve(context.Background(), communityID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !route.Routed() {
		t.Fatal("expected connected-account routing")
	}
	if *route.ConnectedAccountID != acct {
		t.Fatalf("expected %s, got %s", acct, *route.ConnectedAccountID)
	}
}

func TestResolver_PartnerWithoutConnectedAccountFallsBackToPlatform(t *testing.T) {
	communityID := uuid.New()
	ownerID := uuid.New()
	priceID := "price_partner"
	resolver := newTestResolver(t, &models.Community{
		ID:             communityID,
		Slug:           "design-lab",
		StripePriceID:  &priceID,
		OwnerProfileID: &ownerID,
	}, &models.Profile{ID: ownerID})

	route, err := resolver.Resolve(context.Background(), communityID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if route.Routed() {
		t.Fatal("expected platform routing when owner has no connected account")
	}
}

func TestResolver_CommunityNotFound(t *testing.T) {
	resolver := newTestResolver(t, nil, nil)

	_, err := resolver.Resolve(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("expected error")
	}
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestResolver_MissingPriceIsNotFound(t *testing.T) {
	communityID := uuid.New()
	resolver := newTestResolver(t, &models.Community{ID: communityID, Slug: "free-corner"}, nil)

	_, err := resolver.Resolve(context.Background(), communityID)
	if err == nil {
		t.Fatal("expected error")
	}
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func newTestResolver(t *testing.T, community *models.Community, owner *models.Profile) *Resolver {
	t.Helper()
	resolver, err := NewResolver(ResolverParams{
		Communities: &stubCommunityFinder{community: community},
		Profiles:    &stubProfileFinder{profile: owner},
	})
	if err != nil {
		t.Fatalf("setup resolver: %v", err)
	}
	return resolver
}

type stubCommunityFinder struct {
	community *models.Community
}

func (s *stubCommunityFinder) FindByID(ctx context.Context, id uuid.UUID) (*models.Community, error) {
	if s.community == nil || s.community.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.community, nil
}

type stubProfileFinder struct {
	profile *models.Profile
}

func (s *stubProfileFinder) FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	if s.profile == nil || s.profile.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.profile, nil
}
