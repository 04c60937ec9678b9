package memberships

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/learnloop/learnloop-backend/pkg/db/models"
	"github.com/learnloop/learnloop-backend/pkg/enums"
	pkgerrors "github.com/learnloop/learnloop-backend/pkg/errors"
)

type membershipStore interface {
	GetByUserAndCommunity(ctx context.Context, userID, communityID uuid.UUID) (*models.Membership, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]MembershipWithCommunity, error)
}

type communityFinder interface {
	FindBySlug(ctx context.Context, slug string) (*models.Community, error)
}

// ServiceParams groups dependencies for the membership read service.
type ServiceParams struct {
	Repo        membershipStore
	Communities communityFinder
}

// Service answers membership questions for the UI. Writes happen elsewhere.
type Service struct {
	repo        membershipStore
	communities communityFinder
}

// NewService builds a membership service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("membership repo is required")
	}
	if params.Communities == nil {
		return nil, errors.New("communities repo is required")
	}
	return &Service{repo: params.Repo, communities: params.Communities}, nil
}

// ListForUser returns the caller's memberships with community metadata.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]MembershipWithCommunity, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list memberships")
	}
	return list, nil
}

// StatusForCommunity reports whether the user belongs to the community behind
// the slug. A checkout that has not been reconciled yet reads as not a member.
func (s *Service) StatusForCommunity(ctx context.Context, userID uuid.UUID, slug string) (*MembershipStatusDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	community, err := s.communities.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "community not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load community")
	}

	dto := &MembershipStatusDTO{
		CommunityID:   community.ID,
		CommunitySlug: community.Slug,
	}

	membership, err := s.repo.GetByUserAndCommunity(ctx, userID, community.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load membership")
	}

	status := membership.Status
	periodEnd := membership.CurrentPeriodEnd
	dto.IsMember = status == enums.MembershipStatusActive
	dto.Status = &status
	dto.CurrentPeriodEnd = &periodEnd
	return dto, nil
}
