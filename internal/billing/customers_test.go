package billing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/learnloop/learnloop-backend/pkg/db/models"
	pkgerrors "github.com/learnloop/learnloop-backend/pkg/errors"
)

func TestCustomerResolver_ReturnsExistingMapping(t *testing.T) {
	userID := uuid.New()
	custID := "cus_existing"
	profiles := &stubProfileStore{
		profile: &models.Profile{ID: uuid.New(), UserID: userID, StripeCustomerID: &custID},
	}
	client := &stubCustomerClient{existing: &Customer{ID: custID}}
	resolver := newTestCustomerResolver(t, profiles, &stubUserFinder{}, client)

	got, err := resolver.Resolve(context.Background(), userID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != custID {
		t.Fatalf("expected %s, got %s", custID, got)
	}
	if client.creates != 0 {
		t.Fatalf("expected no customer creation, got %d", client.creates)
	}
}

func TestCustomerResolver_IdempotentAcrossCalls(t *testing.T) {
	userID := uuid.New()
	profiles := &stubProfileStore{
		profile: &models.Profile{ID: uuid.New(), UserID: userID},
	}
	client := &stubCustomerClient{createID: "cus_new"}
	user := &models.User{ID: userID, Email: "member@example.com", FullName: "Member"}
	resolver := newTestCustomerResolver(t, profiles, &stubUserFinder{user: user}, client)

	first, err := resolver.Resolve(context.Background(), userID)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	second, err := resolver.Resolve(context.Background(), userID)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if first != second {
		t.Fatalf("expected stable customer id, got %s then %s", first, second)
	}
	if client.creates != 1 {
		t.Fatalf("expected exactly one creation, got %d", client.creates)
	}
	if client.lastCreate.Metadata["user_id"] != userID.String() {
		t.Fatalf("expected user_id metadata, got %v", client.lastCreate.Metadata)
	}
}

func TestCustomerResolver_StaleMappingRecreates(t *testing.T) {
	userID := uuid.New()
	stale := "cus_gone"
	profiles := &stubProfileStore{
		profile: &models.Profile{ID: uuid.New(), UserID: userID, StripeCustomerID: &stale},
	}
	client := &stubCustomerClient{
		getErr:   &stripe.Error{Code: stripe.ErrorCodeResourceMissing},
		createID: "cus_fresh",
	}
	user := &models.User{ID: userID, Email: "member@example.com"}
	resolver := newTestCustomerResolver(t, profiles, &stubUserFinder{user: user}, client)

	got, err := resolver.Resolve(context.Background(), userID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "cus_fresh" {
		t.Fatalf("expected fresh customer, got %s", got)
	}
	if !profiles.cleared {
		t.Fatal("expected stale mapping cleared")
	}
	if profiles.profile.StripeCustomerID == nil || *profiles.profile.StripeCustomerID != "cus_fresh" {
		t.Fatalf("expected mapping persisted, got %v", profiles.profile.StripeCustomerID)
	}
}

func TestCustomerResolver_DeletedCustomerRecreates(t *testing.T) {
	userID := uuid.New()
	stale := "cus_deleted"
	profiles := &stubProfileStore{
		profile: &models.Profile{ID: uuid.New(), UserID: userID, StripeCustomerID: &stale},
	}
	client := &stubCustomerClient{
		existing: &Customer{ID: stale, Deleted: true},
		createID: "cus_fresh",
	}
	user := &models.User{ID: userID, Email: "member@example.com"}
	resolver := newTestCustomerResolver(t, profiles, &stubUserFinder{user: user}, client)

	got, err := resolver.Resolve(context.Background(), userID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "cus_fresh" {
		t.Fatalf("expected fresh customer, got %s", got)
	}
}

func TestCustomerResolver_CreatesProfileWhenMissing(t *testing.T) {
	userID := uuid.New()
	profiles := &stubProfileStore{}
	client := &stubCustomerClient{createID: "cus_new"}
	user := &models.User{ID: userID, Email: "member@example.com"}
	resolver := newTestCustomerResolver(t, profiles, &stubUserFinder{user: user}, client)

	if _, err := resolver.Resolve(context.Background(), userID); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if profiles.profile == nil {
		t.Fatal("expected profile row created")
	}
}

func TestCustomerResolver_UpstreamFailureIsDependencyError(t *testing.T) {
	userID := uuid.New()
	stale := "cus_x"
	profiles := &stubProfileStore{
		profile: &models.Profile{ID: uuid.New(), UserID: userID, StripeCustomerID: &stale},
	}
	client := &stubCustomerClient{getErr: &stripe.Error{Code: stripe.ErrorCodeRateLimit}}
	resolver := newTestCustomerResolver(t, profiles, &stubUserFinder{}, client)

	_, err := resolver.Resolve(context.Background(), userID)
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func newTestCustomerResolver(t *testing.T, profiles *stubProfileStore, users *stubUserFinder, client *stubCustomerClient) *CustomerResolver {
	t.Helper()
	resolver, err := NewCustomerResolver(CustomerResolverParams{
		Profiles: profiles,
		Users:    users,
		Stripe:   client,
	})
	if err != nil {
		t.Fatalf("setup resolver: %v", err)
	}
	return resolver
}

type stubProfileStore struct {
	profile *models.Profile
	cleared bool
}

func (s *stubProfileStore) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	if s.profile == nil || s.profile.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.profile, nil
}

func (s *stubProfileStore) CreateForUser(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	s.profile = &models.Profile{ID: uuid.New(), UserID: userID}
	return s.profile, nil
}

func (s *stubProfileStore) SetStripeCustomerID(ctx context.Context, profileID uuid.UUID, customerID *string) error {
	if customerID == nil {
		s.cleared = true
	}
	s.profile.StripeCustomerID = customerID
	return nil
}

type stubUserFinder struct {
	user *models.User
}

func (s *stubUserFinder) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

type stubCustomerClient struct {
	existing   *Customer
	getErr     error
	createID   string
	creates    int
	lastCreate CustomerParams
}

func (s *stubCustomerClient) Create(ctx context.Context, params CustomerParams) (*Customer, error) {
	s.creates++
	s.lastCreate = params
	s.existing = &Customer{ID: s.createID, Email: params.Email}
	s.getErr = nil
	return s.existing, nil
}

func (s *stubCustomerClient) Get(ctx context.Context, id string) (*Customer, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	if s.existing != nil && s.existing.ID == id {
		return s.existing, nil
	}
	return nil, &stripe.Error{Code: stripe.ErrorCodeResourceMissing}
}
