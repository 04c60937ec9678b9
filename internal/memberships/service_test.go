package memberships

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/learnloop/learnloop-backend/pkg/db/models"
	"github.com/learnloop/learnloop-backend/pkg/enums"
	pkgerrors "github.com/learnloop/learnloop-backend/pkg/errors"
)

func TestStatusForCommunity_NotYetMember(t *testing.T) {
	community := &models.Community{ID: uuid.New(), Slug: "go-study-group"}
	svc := newTestMembershipService(t, &stubMembershipStore{}, &stubCommunityBySlug{community: community})

	dto, err := svc.StatusForCommunity(context.Background(), uuid.New(), "go-study-group")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if dto.IsMember {
		t.Fatal("expected not a member before reconciliation")
	}
	if dto.Status != nil {
		t.Fatalf("expected no status, got %v", *dto.Status)
	}
	if dto.CommunityID != community.ID {
		t.Fatalf("unexpected community id %s", dto.CommunityID)
	}
}

func TestStatusForCommunity_ActiveMember(t *testing.T) {
	userID := uuid.New()
	community := &models.Community{ID: uuid.New(), Slug: "go-study-group"}
	store := &stubMembershipStore{
		membership: &models.Membership{
			UserID:           userID,
			CommunityID:      community.ID,
			Status:           enums.MembershipStatusActive,
			CurrentPeriodEnd: time.Now().Add(30 * 24 * time.Hour),
		},
	}
	svc := newTestMembershipService(t, store, &stubCommunityBySlug{community: community})

	dto, err := svc.StatusForCommunity(context.Background(), userID, "go-study-group")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !dto.IsMember {
		t.Fatal("expected active member")
	}
	if dto.Status == nil || *dto.Status != enums.MembershipStatusActive {
		t.Fatalf("unexpected status %v", dto.Status)
	}
}

func TestStatusForCommunity_CanceledIsNotMember(t *testing.T) {
	userID := uuid.New()
	community := &models.Community{ID: uuid.New(), Slug: "go-study-group"}
	store := &stubMembershipStore{
		membership: &models.Membership{
			UserID:      userID,
			CommunityID: community.ID,
			Status:      enums.MembershipStatusCanceled,
		},
	}
	svc := newTestMembershipService(t, store, &stubCommunityBySlug{community: community})

	dto, err := svc.StatusForCommunity(context.Background(), userID, "go-study-group")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if dto.IsMember {
		t.Fatal("canceled membership should not count as member")
	}
}

func TestStatusForCommunity_UnknownSlug(t *testing.T) {
	svc := newTestMembershipService(t, &stubMembershipStore{}, &stubCommunityBySlug{})

	_, err := svc.StatusForCommunity(context.Background(), uuid.New(), "nope")
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListForUser_RequiresAuthentication(t *testing.T) {
	svc := newTestMembershipService(t, &stubMembershipStore{}, &stubCommunityBySlug{})

	_, err := svc.ListForUser(context.Background(), uuid.Nil)
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func newTestMembershipService(t *testing.T, store *stubMembershipStore, communities *stubCommunityBySlug) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: store, Communities: communities})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}
	return svc
}

type stubMembershipStore struct {
	membership *models.Membership
	list       []MembershipWithCommunity
}

func (s *stubMembershipStore) GetByUserAndCommunity(ctx context.Context, userID, communityID uuid.UUID) (*models.Membership, error) {
	if s.membership == nil || s.membership.UserID != userID || s.membership.CommunityID != communityID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.membership, nil
}

func (s *stubMembershipStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]MembershipWithCommunity, error) {
	return s.list, nil
}

type stubCommunityBySlug struct {
	community *models.Community
}

func (s *stubCommunityBySlug) FindBySlug(ctx context.Context, slug string) (*models.Community, error) {
	if s.community == nil || s.community.Slug != slug {
		return nil, gorm.ErrRecordNotFound
	}
	return s.community, nil
}
